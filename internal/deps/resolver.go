package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"docwave/internal/storage"
)

type DependencyTier string

const (
	DependencyTierMust     DependencyTier = "must"
	DependencyTierShould   DependencyTier = "should"
	DependencyTierOptional DependencyTier = "optional"
)

type DependencyStatus string

const (
	DependencyStatusOK      DependencyStatus = "ok"
	DependencyStatusMissing DependencyStatus = "missing"
	DependencyStatusError   DependencyStatus = "error"
)

type DependencySource string

const (
	DependencySourceStorage  DependencySource = "storage"
	DependencySourceLookPath DependencySource = "lookpath"
)

type DependencySpec struct {
	ID          string
	Name        string
	Command     string
	Tier        DependencyTier
	StoragePath string
	Hint        string
}

type DependencyState struct {
	DependencySpec
	ResolvedPath string
	Status       DependencyStatus
	Source       DependencySource
	Error        string
}

type PathResolver struct {
	LookPath func(file string) (string, error)
	AbsPath  func(path string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
}

func NewPathResolver() PathResolver {
	return PathResolver{
		LookPath: exec.LookPath,
		AbsPath:  filepath.Abs,
		Stat:     os.Stat,
	}
}

func (r PathResolver) Resolve(spec DependencySpec) DependencyState {
	state := DependencyState{DependencySpec: spec}
	configured := strings.TrimSpace(spec.StoragePath)

	if configured != "" {
		state.Source = DependencySourceStorage
		resolvedPath, err := r.resolveConfiguredPath(configured)
		if err == nil {
			state.Status = DependencyStatusOK
			state.ResolvedPath = resolvedPath
			return state
		}

		if absPath, absErr := r.AbsPath(configured); absErr == nil {
			state.ResolvedPath = absPath
		} else {
			state.ResolvedPath = configured
		}
		state.Error = err.Error()
		if isMissingPathError(err) {
			state.Status = DependencyStatusMissing
		} else {
			state.Status = DependencyStatusError
		}
		return state
	}

	state.Source = DependencySourceLookPath
	resolvedPath, err := r.LookPath(spec.Command)
	if err == nil {
		state.Status = DependencyStatusOK
		state.ResolvedPath = resolvedPath
		return state
	}

	state.Error = err.Error()
	if isMissingPathError(err) {
		state.Status = DependencyStatusMissing
		return state
	}
	state.Status = DependencyStatusError
	return state
}

func (r PathResolver) resolveConfiguredPath(configuredPath string) (string, error) {
	if resolvedPath, err := r.LookPath(configuredPath); err == nil {
		return resolvedPath, nil
	}

	absPath, err := r.AbsPath(configuredPath)
	if err != nil {
		return "", err
	}
	if _, err = r.Stat(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

func ResolveDependencyStates(specs []DependencySpec, resolver PathResolver) []DependencyState {
	resolved := make([]DependencyState, 0, len(specs))
	for _, spec := range specs {
		resolved = append(resolved, resolver.Resolve(spec))
	}
	return resolved
}

func ResolveDependencyInventory(pdfInput bool) []DependencyState {
	specs := BuildDependencyInventory(pdfInput)
	return ResolveDependencyStates(specs, NewPathResolver())
}

func BuildDependencyInventory(pdfInput bool) []DependencySpec {
	pdftoppmTier := DependencyTierOptional
	pdftoppmHint := "Only needed when the input document is a PDF."
	if pdfInput {
		pdftoppmTier = DependencyTierMust
		pdftoppmHint = "Current input is a PDF; this binary rasterizes its pages."
	}

	return []DependencySpec{
		{
			ID:          "ffmpeg",
			Name:        "ffmpeg",
			Command:     "ffmpeg",
			Tier:        DependencyTierMust,
			StoragePath: storage.FfmpegPath,
			Hint:        "Required for frame encoding and audio mixing.",
		},
		{
			ID:          "ffprobe",
			Name:        "ffprobe",
			Command:     "ffprobe",
			Tier:        DependencyTierMust,
			StoragePath: storage.FfprobePath,
			Hint:        "Required for media duration detection.",
		},
		{
			ID:          "pdftoppm",
			Name:        "pdftoppm",
			Command:     "pdftoppm",
			Tier:        pdftoppmTier,
			StoragePath: storage.PdftoppmPath,
			Hint:        pdftoppmHint,
		},
		{
			ID:          "pdftotext",
			Name:        "pdftotext",
			Command:     "pdftotext",
			Tier:        DependencyTierOptional,
			StoragePath: storage.PdftotextPath,
			Hint:        "Improves PDF narration; page text is empty without it.",
		},
		{
			ID:          "pdfimages",
			Name:        "pdfimages",
			Command:     "pdfimages",
			Tier:        DependencyTierOptional,
			StoragePath: storage.PdfimagesPath,
			Hint:        "Extracts embedded figures; only full page renders without it.",
		},
	}
}

func FormatDependencyReport(states []DependencyState) string {
	if len(states) == 0 {
		return "No dependencies to diagnose."
	}

	var builder strings.Builder
	builder.WriteString("Dependency status")

	for _, state := range states {
		resolvedPath := strings.TrimSpace(state.ResolvedPath)
		if resolvedPath == "" {
			resolvedPath = "unknown"
		}

		source := strings.TrimSpace(string(state.Source))
		if source == "" {
			source = "n/a"
		}

		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("- %s [%s]: %s | path=%s | source=%s", state.Name, strings.ToUpper(string(state.Tier)), state.Status, resolvedPath, source))
		if state.Error != "" {
			builder.WriteString("\n")
			builder.WriteString("  error: ")
			builder.WriteString(state.Error)
		}
		if state.Hint != "" {
			builder.WriteString("\n")
			builder.WriteString("  hint: ")
			builder.WriteString(state.Hint)
		}
	}

	return builder.String()
}

func isMissingPathError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return true
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if errors.Is(pathErr.Err, os.ErrNotExist) {
			return true
		}
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		if errors.Is(execErr.Err, exec.ErrNotFound) {
			return true
		}
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "cannot find")
}
