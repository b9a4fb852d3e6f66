package service

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docwave/config"
	"docwave/internal/composer"
	"docwave/internal/content"
	"docwave/internal/exporter"
	"docwave/internal/storage"
	"docwave/internal/types"
	"docwave/log"
	"docwave/pkg/errors"
)

// exportTimeline drives the encoder. Swappable for tests.
var exportTimeline = func(ctx context.Context, videoCfg config.Video, workers int, tl *composer.Timeline, outputPath string) error {
	return exporter.NewExporter(videoCfg, workers).Export(ctx, tl, outputPath)
}

// GenerateVideo runs the full video pipeline on extracted content:
// classify the image pool, plan the script, synthesize voiceover and
// AI backgrounds in parallel, compose the timeline, export. Returns
// the final video path.
func (s *Service) GenerateVideo(ctx context.Context, input *content.ContentInput, musicPath string, progress ProgressFunc) (string, error) {
	if input == nil || len(input.Sections) == 0 {
		return "", errors.New(errors.CodeEmptyDocument, "no content to build a video from")
	}

	ws, err := storage.NewWorkspace()
	if err != nil {
		return "", errors.Wrap(errors.CodeWorkspaceError, "create workspace", err)
	}
	success := false
	defer func() {
		if success {
			if cleanupErr := ws.Cleanup(); cleanupErr != nil {
				log.GetLogger().Warn("workspace cleanup failed", zap.Error(cleanupErr))
			}
		} else {
			log.GetLogger().Info("workspace retained for diagnosis", zap.String("path", ws.Root))
		}
	}()

	musicPath, err = resolveMusic(ctx, ws, musicPath)
	if err != nil {
		return "", err
	}

	report(progress, "classifying images", 0.05)
	pool := lo.Map(input.AllImages, func(ci content.ContentImage, _ int) image.Image {
		return ci.Image
	})
	classified, err := input.WithClassifications(s.classifier.ClassifyImages(ctx, pool, s.cfg.Llm.Model))
	if err != nil {
		return "", err
	}

	report(progress, "planning script", 0.15)
	script, err := s.planner.GenerateScript(ctx, classified, s.cfg.Llm.Model)
	if err != nil {
		return "", err
	}

	report(progress, "synthesizing voiceover and backgrounds", 0.35)
	audioPaths, backgrounds, err := s.synthesizeSceneAssets(ctx, script, ws)
	if err != nil {
		return "", err
	}

	report(progress, "composing timeline", 0.65)
	timeline, err := composer.NewComposer(s.cfg.Video).Compose(script, classified, audioPaths, backgrounds, musicPath)
	if err != nil {
		return "", err
	}

	outputPath, err := resolveOutputPath(script.Title, "mp4")
	if err != nil {
		return "", err
	}

	report(progress, "exporting video", 0.8)
	if err = exportTimeline(ctx, s.cfg.Video, s.cfg.App.Workers, timeline, outputPath); err != nil {
		return "", err
	}

	success = true
	report(progress, "complete", 1.0)
	log.GetLogger().Info("video generated",
		zap.String("output", outputPath),
		zap.Int("scenes", len(script.Scenes)),
		zap.Float64("duration", timeline.Duration))
	return outputPath, nil
}

// synthesizeSceneAssets runs voiceover synthesis and background image
// generation concurrently. The two stages call different services and
// share no data. A failed voiceover is fatal (audio drives timing); a
// failed background only degrades its scene to the next asset tier.
func (s *Service) synthesizeSceneAssets(ctx context.Context, script *types.VideoScript, ws *storage.Workspace) ([]string, map[int]string, error) {
	audioPaths := make([]string, len(script.Scenes))
	backgrounds := make(map[int]string, len(script.Scenes))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for i, scene := range script.Scenes {
			if scene.Narration == "" {
				continue
			}
			path := filepath.Join(ws.AudioDir, fmt.Sprintf("scene_%03d_voice.mp3", scene.SceneNumber))
			if err := s.tts.SynthesizeSpeech(gctx, s.cfg.Tts, scene.Narration, path); err != nil {
				return err
			}
			audioPaths[i] = path
		}
		return nil
	})

	g.Go(func() error {
		for _, scene := range script.Scenes {
			if !scene.GenerateBackground || scene.BackgroundPrompt == "" {
				continue
			}
			path := filepath.Join(ws.ImagesDir, fmt.Sprintf("scene_%03d_bg.png", scene.SceneNumber))
			if err := s.imager.GenerateBackground(gctx, s.cfg.ImageGen, scene.BackgroundPrompt, path); err != nil {
				log.GetLogger().Warn("background generation failed, scene falls back",
					zap.Int("scene", scene.SceneNumber),
					zap.Error(err))
				continue
			}
			backgrounds[scene.SceneNumber] = path
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return audioPaths, backgrounds, nil
}
