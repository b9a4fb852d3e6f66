package storage

import (
	"os"
	"path/filepath"

	"docwave/internal/appdirs"

	"github.com/google/uuid"
)

var appDirsResolver = appdirs.Resolve

// Workspace is the private scratch area of a single pipeline run. Each
// run gets its own directory so concurrent runs never share files.
type Workspace struct {
	ID        string
	Root      string
	AudioDir  string
	ImagesDir string
}

// NewWorkspace allocates a scratch directory under the app job root.
// Falls back to the system temp dir when app paths cannot be resolved.
func NewWorkspace() (*Workspace, error) {
	id := uuid.New().String()
	root := filepath.Join(os.TempDir(), "docwave_"+id)
	if paths, err := appDirsResolver(); err == nil {
		root = appdirs.JobDirFor(paths, id)
	}

	ws := &Workspace{
		ID:        id,
		Root:      root,
		AudioDir:  filepath.Join(root, "audio"),
		ImagesDir: filepath.Join(root, "images"),
	}
	for _, dir := range []string{ws.Root, ws.AudioDir, ws.ImagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// Cleanup removes the whole workspace. Callers keep the directory on
// failed runs so intermediates stay available for diagnosis.
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Root)
}

// ResolveOutputDir returns the directory final renders are written to,
// creating it when missing.
func ResolveOutputDir() (string, error) {
	paths, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	dir := appdirs.RenderRootFor(paths)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
