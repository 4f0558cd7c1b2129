package util

import (
	"errors"
	"strings"
)

const maxFileNameLen = 200

// SanitizeFileName removes path separators and rejects traversal patterns.
// Phone cameras produce long names, so anything past maxFileNameLen is cut.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameLen {
		s = s[len(s)-maxFileNameLen:]
	}
	return s, nil
}
