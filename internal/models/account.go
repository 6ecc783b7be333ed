package models

import "time"

// Account is a registered user of the service. The secret hash never
// leaves the process; JSON views carry only id and email.
type Account struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
