package openai

import (
	"context"
	"io"
	"os"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docwave/config"
	"docwave/log"
	"docwave/pkg/errors"
)

// SynthesizeSpeech renders one narration text to an mp3 file. Audio
// duration downstream is ground truth for scene timing, so a failed
// synthesis is fatal to the run.
func (c *Client) SynthesizeSpeech(ctx context.Context, ttsCfg config.Tts, text, outputPath string) error {
	if text == "" {
		return errors.New(errors.CodeInvalidParams, "narration text is empty")
	}

	var resp openai.RawResponse
	err := withRetry(ctx, "speech synthesis", func() error {
		var apiErr error
		resp, apiErr = c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(ttsCfg.Model),
			Voice:          openai.SpeechVoice(ttsCfg.Voice),
			Input:          text,
			ResponseFormat: openai.SpeechResponseFormatMp3,
			Speed:          ttsCfg.Speed,
		})
		return apiErr
	})
	if err != nil {
		return errors.Wrap(errors.CodeTTSFailed, "speech synthesis failed", err)
	}
	defer resp.Close()

	file, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "create speech file", err)
	}
	defer file.Close()

	if _, err = io.Copy(file, resp); err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "write speech file", err)
	}

	log.GetLogger().Debug("speech synthesized",
		zap.String("voice", ttsCfg.Voice),
		zap.String("output", outputPath))
	return nil
}
