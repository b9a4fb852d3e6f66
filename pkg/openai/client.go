// Package openai wraps the OpenAI-compatible APIs the pipeline calls:
// script and slide planning, image classification, speech synthesis
// and background image generation.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"net/http"
	"net/url"
	"time"

	"github.com/sashabaranov/go-openai"
	xdraw "golang.org/x/image/draw"
	"go.uber.org/zap"

	"docwave/log"
)

const (
	retryAttempts = 3
	retryBaseWait = 2 * time.Second

	// thumbnails sent as vision input are capped to save tokens
	visionThumbnailEdge = 512
)

// api is the slice of the OpenAI client the pipeline uses.
type api interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

type Client struct {
	client api
}

func NewClient(baseUrl, apiKey string, proxy *url.URL) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	transport := &http.Transport{}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	// no client timeout: planning calls on large inputs can run long
	cfg.HTTPClient = &http.Client{Transport: transport}

	return &Client{client: openai.NewClientWithConfig(cfg)}
}

// withRetry runs fn up to retryAttempts times with linear backoff.
func withRetry(ctx context.Context, label string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.GetLogger().Warn("api call failed",
			zap.String("call", label),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBaseWait * time.Duration(attempt)):
		}
	}
	return err
}

// imageToDataURL downsizes an image and encodes it as a JPEG data URL
// for vision input.
func imageToDataURL(img image.Image, maxEdge int) (string, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxEdge || h > maxEdge {
		scale := float64(maxEdge) / float64(w)
		if h > w {
			scale = float64(maxEdge) / float64(h)
		}
		scaled := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Over, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
