package service

import (
	"context"
	"image"

	"docwave/config"
	"docwave/internal/content"
	"docwave/internal/types"
	"docwave/pkg/openai"
)

// Planner plans videos and slide decks from classified content.
type Planner interface {
	GenerateScript(ctx context.Context, input *content.ContentInput, model string) (*types.VideoScript, error)
	GenerateSlideDeck(ctx context.Context, input *content.ContentInput, model string) (*types.SlideDeck, error)
}

// Classifier tags the image pool. It never fails: unclassifiable
// images come back with safe defaults.
type Classifier interface {
	ClassifyImages(ctx context.Context, images []image.Image, model string) []types.Classification
}

// SpeechSynthesizer renders narration text to an audio file.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, ttsCfg config.Tts, text, outputPath string) error
}

// ImageGenerator renders backgrounds and slide images.
type ImageGenerator interface {
	GenerateBackground(ctx context.Context, imgCfg config.ImageGen, prompt, outputPath string) error
	GenerateSlideImage(ctx context.Context, imgCfg config.ImageGen, deckTitle string, slide types.Slide, outputPath string) error
}

// Service orchestrates the full pipeline: classification, planning,
// synthesis, composition and export.
type Service struct {
	cfg *config.Config

	planner    Planner
	classifier Classifier
	tts        SpeechSynthesizer
	imager     ImageGenerator
}

func NewService() *Service {
	proxy := config.Conf.App.ParsedProxy
	llmClient := openai.NewClient(config.Conf.Llm.BaseUrl, config.Conf.Llm.ApiKey, proxy)
	ttsClient := openai.NewClient(config.Conf.Tts.BaseUrl, config.Conf.Tts.ApiKey, proxy)
	imageClient := openai.NewClient(config.Conf.ImageGen.BaseUrl, config.Conf.ImageGen.ApiKey, proxy)

	return &Service{
		cfg:        &config.Conf,
		planner:    llmClient,
		classifier: llmClient,
		tts:        ttsClient,
		imager:     imageClient,
	}
}

// ProgressFunc receives coarse pipeline milestones. May be nil.
type ProgressFunc func(step string, fraction float64)

func report(progress ProgressFunc, step string, fraction float64) {
	if progress != nil {
		progress(step, fraction)
	}
}
