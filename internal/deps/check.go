package deps

import (
	"fmt"
	"strings"

	"docwave/internal/storage"
	"docwave/log"

	"go.uber.org/zap"
)

// CheckDependency resolves every external tool, stores the resolved
// paths for later exec calls, and fails when a must-have tool is
// missing. pdfInput promotes the PDF rasterizer to must.
func CheckDependency(pdfInput bool) error {
	EnsureManagedDependencyPaths()

	states := ResolveDependencyInventory(pdfInput)

	var missingMust []string
	for _, state := range states {
		if state.Status == DependencyStatusOK {
			setStoragePathForDependency(state.ID, state.ResolvedPath)
			continue
		}
		if state.Tier == DependencyTierMust {
			missingMust = append(missingMust, state.Name)
		}
	}

	report := FormatDependencyReport(states)
	if len(missingMust) > 0 {
		log.GetLogger().Error("required external tools are missing", zap.String("report", report))
		return fmt.Errorf("missing required tools: %s", strings.Join(missingMust, ", "))
	}

	log.GetLogger().Debug("external tool inventory resolved", zap.String("report", report))
	return nil
}

func setStoragePathForDependency(dependencyID, path string) {
	switch normalizeDependencyID(dependencyID) {
	case DependencyIDFFmpeg:
		storage.FfmpegPath = path
	case DependencyIDFFprobe:
		storage.FfprobePath = path
	case DependencyIDPdftoppm:
		storage.PdftoppmPath = path
	case DependencyIDPdftotext:
		storage.PdftotextPath = path
	case DependencyIDPdfimages:
		storage.PdfimagesPath = path
	}
}

func getStoragePathForDependency(dependencyID string) string {
	switch normalizeDependencyID(dependencyID) {
	case DependencyIDFFmpeg:
		return storage.FfmpegPath
	case DependencyIDFFprobe:
		return storage.FfprobePath
	case DependencyIDPdftoppm:
		return storage.PdftoppmPath
	case DependencyIDPdftotext:
		return storage.PdftotextPath
	case DependencyIDPdfimages:
		return storage.PdfimagesPath
	default:
		return ""
	}
}
