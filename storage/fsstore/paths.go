package fsstore

import (
	"path/filepath"
	"strings"
)

const (
	rawDirName      = "raw"
	logsDirName     = "ingestion_logs"
	manifestName    = "manifest.json"
	contentSuffix   = ".content"
	metadataSuffix  = ".metadata"
	recordSuffix    = ".record"
	maxSanitizedLen = 128
)

// sanitizeName maps an arbitrary identifier to a filesystem-safe name.
// Alphanumerics, '-' and '_' pass through; everything else becomes '_'.
// Path separators and traversal sequences cannot survive this mapping.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" {
		s = "_"
	}
	if len(s) > maxSanitizedLen {
		s = s[:maxSanitizedLen]
	}
	return s
}

// splitExt separates a filename into its stem and extension.
func splitExt(filename string) (stem, ext string) {
	ext = filepath.Ext(filename)
	stem = strings.TrimSuffix(filepath.Base(filename), ext)
	return stem, ext
}

// metadataFilename derives the metadata sidecar name for a stored file.
func metadataFilename(storedFilename string) string {
	ext := filepath.Ext(storedFilename)
	return strings.TrimSuffix(storedFilename, ext) + metadataSuffix
}
