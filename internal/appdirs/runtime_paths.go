package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	JobRootName    = "jobs"
	RenderRootName = "renders"
	assetCacheName = "assets"
)

func JobRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), JobRootName)
}

func JobDirFor(paths Paths, jobID string) string {
	return filepath.Join(JobRootFor(paths), jobID)
}

func RenderRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), RenderRootName)
}

func AssetCacheFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), assetCacheName)
}

func normalizeOutputDir(outputDir string) string {
	cleaned := strings.TrimSpace(outputDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
