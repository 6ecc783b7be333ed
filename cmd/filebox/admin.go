package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"filebox/internal/config"
	"filebox/internal/server"
	"filebox/internal/store"
)

type seedAccount struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type seedFile struct {
	Accounts []seedAccount `yaml:"accounts"`
}

func newAdminCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}

	cmd.AddCommand(newAdminSeedCmd(cfg))
	return cmd
}

// newAdminSeedCmd creates accounts from a YAML manifest. Existing
// accounts are skipped, so re-running a manifest is safe.
func newAdminSeedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <accounts.yaml>",
		Short: "Create accounts from a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil || cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var manifest seedFile
			if err := yaml.Unmarshal(raw, &manifest); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if len(manifest.Accounts) == 0 {
				return fmt.Errorf("%s contains no accounts", args[0])
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			accounts := server.NewAccountService(st)
			created, skipped := 0, 0
			for _, entry := range manifest.Accounts {
				account, err := accounts.Register(cmd.Context(), entry.Email, entry.Password, time.Now().UTC())
				if err != nil {
					if err.Error() == "Already exist" {
						skipped++
						continue
					}
					return fmt.Errorf("seed %s: %w", entry.Email, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", account.Email, account.ID)
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d account(s), skipped %d existing\n", created, skipped)
			return nil
		},
	}
}
