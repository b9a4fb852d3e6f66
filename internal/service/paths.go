package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"docwave/internal/storage"
)

var resolveOutputDir = storage.ResolveOutputDir

// sanitizeFileStem reduces a title to a safe file name stem.
func sanitizeFileStem(title string) string {
	stem := strings.TrimSpace(title)
	if stem == "" {
		stem = "untitled"
	}

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), "_")
	if cleaned == "" {
		cleaned = "untitled"
	}
	if len(cleaned) > 80 {
		cleaned = cleaned[:80]
	}
	return strings.ToLower(cleaned)
}

// resolveOutputPath places a render artifact in the output directory.
func resolveOutputPath(title, extension string) (string, error) {
	dir, err := resolveOutputDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s", sanitizeFileStem(title), extension)), nil
}
