package server

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var fileIDRegex = regexp.MustCompile(`^fl-[0-9a-z]{8}$`)

const fallbackContentType = "application/octet-stream"

func validateFileID(id string) bool {
	return fileIDRegex.MatchString(id)
}

var allowedThumbnailWidths = map[int]struct{}{
	500: {},
	250: {},
	100: {},
}

// parseThumbnailWidth parses the optional size query parameter. Zero
// means the original content.
func parseThumbnailWidth(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	width, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequestCode(fmt.Errorf("invalid size"), ErrCodeInvalidQuery)
	}
	if _, ok := allowedThumbnailWidths[width]; !ok {
		return 0, badRequestCode(fmt.Errorf("invalid size"), ErrCodeInvalidQuery)
	}
	return width, nil
}

// contentTypeForName derives a content type from a file name extension.
func contentTypeForName(name string) string {
	ext := filepath.Ext(strings.TrimSpace(name))
	if ext == "" {
		return fallbackContentType
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		return fallbackContentType
	}
	return contentType
}
