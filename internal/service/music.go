package service

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"docwave/internal/storage"
	"docwave/log"
	"docwave/pkg/errors"
)

// musicFetcher downloads remote background music. Swappable for tests.
var musicFetcher = func(ctx context.Context, musicURL, outputPath string) error {
	resp, err := resty.New().R().
		SetContext(ctx).
		SetOutput(outputPath).
		Get(musicURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return errors.New(errors.CodeFileNotFound, "music download returned "+resp.Status())
	}
	return nil
}

// resolveMusic returns a local path for the background music. An
// http(s) URL is downloaded into the workspace; anything else is
// treated as a local file and passed through untouched.
func resolveMusic(ctx context.Context, ws *storage.Workspace, musicPath string) (string, error) {
	if !strings.HasPrefix(musicPath, "http://") && !strings.HasPrefix(musicPath, "https://") {
		return musicPath, nil
	}

	ext := ".mp3"
	if parsed, err := url.Parse(musicPath); err == nil {
		if e := strings.ToLower(path.Ext(parsed.Path)); e == ".mp3" || e == ".wav" || e == ".m4a" || e == ".ogg" {
			ext = e
		}
	}

	localPath := filepath.Join(ws.Root, "music"+ext)
	if err := musicFetcher(ctx, musicPath, localPath); err != nil {
		return "", errors.Wrap(errors.CodeFileNotFound, "fetch background music", err)
	}

	log.GetLogger().Info("background music downloaded",
		zap.String("url", musicPath),
		zap.String("path", localPath))
	return localPath, nil
}
