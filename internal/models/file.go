package models

import (
	"fmt"
	"strings"
	"time"
)

// FileKind describes what a file record is: a folder, an opaque file,
// or an image that gets thumbnail variants.
type FileKind string

const (
	FileKindFolder FileKind = "folder"
	FileKindFile   FileKind = "file"
	FileKindImage  FileKind = "image"
)

// RootParentID is the canonical parent id of records at the top of an
// owner's hierarchy.
const RootParentID = "0"

var validFileKinds = map[FileKind]struct{}{
	FileKindFolder: {},
	FileKindFile:   {},
	FileKindImage:  {},
}

// FileRecord is one node in the file/folder hierarchy. ParentID is
// RootParentID or the id of an existing folder record. StoragePath is
// the internal blob location and is stripped from every JSON view;
// folders never have one.
type FileRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"userId"`
	Name        string    `json:"name"`
	Kind        string    `json:"type"`
	ParentID    string    `json:"parentId"`
	IsPublic    bool      `json:"isPublic"`
	StoragePath string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsFolder reports whether the record is a folder.
func (f *FileRecord) IsFolder() bool {
	return f != nil && f.Kind == string(FileKindFolder)
}

// IsImage reports whether the record is an image.
func (f *FileRecord) IsImage() bool {
	return f != nil && f.Kind == string(FileKindImage)
}

func ParseFileKind(raw string) (FileKind, error) {
	value := FileKind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := validFileKinds[value]; !ok {
		return "", fmt.Errorf("Missing type")
	}
	return value, nil
}

// NormalizeParentID maps the empty string to the canonical root id.
func NormalizeParentID(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return RootParentID
	}
	return value
}
