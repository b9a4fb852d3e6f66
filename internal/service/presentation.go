package service

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docwave/internal/composer"
	"docwave/internal/content"
	"docwave/internal/storage"
	"docwave/log"
	"docwave/pkg/deck"
	"docwave/pkg/errors"
)

const (
	slideImageWorkers = 4
	slideAudioWorkers = 8
)

// PresentationResult reports what the presentation pipeline produced.
type PresentationResult struct {
	Title      string
	SlideCount int
	VideoPath  string
	PDFPath    string
}

// GeneratePresentation runs the slide-deck variant: plan 7-12 slides,
// render each as an AI image, synthesize per-slide narration, then
// write an MP4 and/or a PDF handout.
func (s *Service) GeneratePresentation(ctx context.Context, input *content.ContentInput, musicPath string,
	makeVideo, makePDF bool, progress ProgressFunc) (*PresentationResult, error) {

	if input == nil || len(input.Sections) == 0 {
		return nil, errors.New(errors.CodeEmptyDocument, "no content to build a presentation from")
	}
	if !makeVideo && !makePDF {
		return nil, errors.New(errors.CodeInvalidParams, "nothing to produce: video and PDF both disabled")
	}

	ws, err := storage.NewWorkspace()
	if err != nil {
		return nil, errors.Wrap(errors.CodeWorkspaceError, "create workspace", err)
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
		return nil, err
	}

	report(progress, "planning slides", 0.1)
	deckPlan, err := s.planner.GenerateSlideDeck(ctx, input, s.cfg.Llm.Model)
	if err != nil {
		return nil, err
	}

	report(progress, "rendering slide images", 0.25)
	slidePaths := make([]string, len(deckPlan.Slides))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(slideImageWorkers)
	for i, slide := range deckPlan.Slides {
		i, slide := i, slide
		g.Go(func() error {
			path := filepath.Join(ws.ImagesDir, fmt.Sprintf("slide_%03d.png", slide.SlideNumber))
			if err := s.imager.GenerateSlideImage(gctx, s.cfg.ImageGen, deckPlan.Title, slide, path); err != nil {
				return err
			}
			slidePaths[i] = path
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	report(progress, "synthesizing narration", 0.55)
	audioPaths := make([]string, len(deckPlan.Slides))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(slideAudioWorkers)
	for i, slide := range deckPlan.Slides {
		if slide.Narration == "" {
			continue
		}
		i, slide := i, slide
		g.Go(func() error {
			path := filepath.Join(ws.AudioDir, fmt.Sprintf("slide_%03d_voice.mp3", slide.SlideNumber))
			if err := s.tts.SynthesizeSpeech(gctx, s.cfg.Tts, slide.Narration, path); err != nil {
				return err
			}
			audioPaths[i] = path
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	result := &PresentationResult{Title: deckPlan.Title, SlideCount: len(deckPlan.Slides)}

	if makePDF {
		report(progress, "writing PDF handout", 0.7)
		pdfPath, pathErr := resolveOutputPath(deckPlan.Title, "pdf")
		if pathErr != nil {
			return nil, pathErr
		}
		if err = deck.WritePDF(slidePaths, pdfPath); err != nil {
			return nil, err
		}
		result.PDFPath = pdfPath
	}

	if makeVideo {
		report(progress, "composing slide video", 0.8)
		timeline, composeErr := composer.NewComposer(s.cfg.Video).ComposeSlides(deckPlan, slidePaths, audioPaths, musicPath)
		if composeErr != nil {
			return nil, composeErr
		}

		videoPath, pathErr := resolveOutputPath(deckPlan.Title, "mp4")
		if pathErr != nil {
			return nil, pathErr
		}
		if err = exportTimeline(ctx, s.cfg.Video, s.cfg.App.Workers, timeline, videoPath); err != nil {
			return nil, err
		}
		result.VideoPath = videoPath
	}

	success = true
	report(progress, "complete", 1.0)
	log.GetLogger().Info("presentation generated",
		zap.String("title", deckPlan.Title),
		zap.Int("slides", result.SlideCount),
		zap.String("video", result.VideoPath),
		zap.String("pdf", result.PDFPath))
	return result, nil
}
