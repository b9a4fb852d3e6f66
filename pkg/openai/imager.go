package openai

import (
	"context"
	"encoding/base64"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docwave/config"
	"docwave/internal/types"
	"docwave/log"
	"docwave/pkg/errors"
)

// GenerateBackground renders one scene background image to outputPath.
// The configured style prefix is prepended so every backdrop stays
// atmospheric and text-free regardless of the planner's prompt.
func (c *Client) GenerateBackground(ctx context.Context, imgCfg config.ImageGen, prompt, outputPath string) error {
	enhanced := types.BackgroundPromptPrefix + prompt

	var resp openai.ImageResponse
	err := withRetry(ctx, "background generation", func() error {
		var apiErr error
		resp, apiErr = c.client.CreateImage(ctx, openai.ImageRequest{
			Model:          imgCfg.Model,
			Prompt:         enhanced,
			Size:           imgCfg.Size,
			N:              1,
			ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		})
		return apiErr
	})
	if err != nil {
		return errors.Wrap(errors.CodeImageGenFailed, "background generation failed", err)
	}
	if len(resp.Data) == 0 {
		return errors.New(errors.CodeImageGenFailed, "image API returned no data")
	}

	if err = writeImageResponse(ctx, resp.Data[0], outputPath); err != nil {
		return err
	}

	log.GetLogger().Debug("background generated",
		zap.String("output", outputPath),
		zap.String("prompt", prompt))
	return nil
}

// writeImageResponse persists one generated image, preferring inline
// base64 data over a download URL.
func writeImageResponse(ctx context.Context, data openai.ImageResponseDataInner, outputPath string) error {
	switch {
	case data.B64JSON != "":
		raw, err := base64.StdEncoding.DecodeString(data.B64JSON)
		if err != nil {
			return errors.Wrap(errors.CodeImageGenFailed, "decode generated image", err)
		}
		if err = os.WriteFile(outputPath, raw, 0o644); err != nil {
			return errors.Wrap(errors.CodeFileWriteError, "write generated image", err)
		}
		return nil
	case data.URL != "":
		// some gateways answer with a URL even when b64 was requested
		return downloadImage(ctx, data.URL, outputPath)
	default:
		return errors.New(errors.CodeImageGenFailed, "image API returned neither data nor URL")
	}
}

func downloadImage(ctx context.Context, url, outputPath string) error {
	resp, err := resty.New().R().
		SetContext(ctx).
		SetOutput(outputPath).
		Get(url)
	if err != nil {
		return errors.Wrap(errors.CodeImageFetchFailed, "generated image download failed", err)
	}
	if resp.IsError() {
		return errors.New(errors.CodeImageFetchFailed, "generated image download failed: "+resp.Status())
	}
	return nil
}
