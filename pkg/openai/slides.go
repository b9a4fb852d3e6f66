package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docwave/config"
	"docwave/internal/content"
	"docwave/internal/types"
	"docwave/log"
	"docwave/pkg/errors"
	"docwave/pkg/util"
)

// GenerateSlideDeck plans the presentation variant: 7-12 slides in the
// corporate-white style.
func (c *Client) GenerateSlideDeck(ctx context.Context, input *content.ContentInput, model string) (*types.SlideDeck, error) {
	sections := make([]sectionSummary, 0, len(input.Sections))
	for _, section := range input.Sections {
		text := section.Text
		if len(text) > sectionTextLimit {
			text = text[:sectionTextLimit]
		}
		sections = append(sections, sectionSummary{
			Section:    section.SectionNumber,
			Text:       text,
			HasImages:  section.HasSignificantImages,
			ImageCount: len(section.Images),
			HasText:    section.HasSignificantText,
		})
	}
	sectionsJSON, _ := json.MarshalIndent(sections, "", "  ")

	prompt := fmt.Sprintf(types.SlidePlannerPrompt, input.Title, input.SourceType, string(sectionsJSON))

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, "slide planning", func() error {
		var apiErr error
		resp, apiErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Temperature: 0.7,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		return apiErr
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeScriptFailed, "slide planning call failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(errors.CodeScriptFailed, "slide planner returned no choices")
	}

	deck, err := parseSlideDeckResponse(resp.Choices[0].Message.Content, input.Title)
	if err != nil {
		return nil, err
	}

	log.GetLogger().Info("slide deck planned",
		zap.String("title", deck.Title),
		zap.Int("slides", len(deck.Slides)))
	return deck, nil
}

func parseSlideDeckResponse(raw, fallbackTitle string) (*types.SlideDeck, error) {
	var deck types.SlideDeck
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(raw)), &deck); err != nil {
		log.GetLogger().Error("slide deck response is not valid JSON",
			zap.String("response", raw), zap.Error(err))
		return nil, errors.Wrap(errors.CodeScriptUnparsable, "slide deck response is not valid JSON", err)
	}
	if len(deck.Slides) == 0 {
		return nil, errors.New(errors.CodeScriptFailed, "slide planner returned no slides")
	}

	if deck.Title == "" {
		deck.Title = fallbackTitle
	}
	if deck.Theme == "" {
		deck.Theme = "corporate-white"
	}
	for i := range deck.Slides {
		slide := &deck.Slides[i]
		if slide.SlideNumber == 0 {
			slide.SlideNumber = i + 1
		}
		if slide.SlideType == "" {
			slide.SlideType = "content"
		}
		if slide.AccentColor == "" {
			slide.AccentColor = "#1B2A4A"
		}
	}
	return &deck, nil
}

// GenerateSlideImage renders one slide as an image via the image API.
func (c *Client) GenerateSlideImage(ctx context.Context, imgCfg config.ImageGen, deckTitle string, slide types.Slide, outputPath string) error {
	prompt := buildSlideImagePrompt(deckTitle, slide)

	var resp openai.ImageResponse
	err := withRetry(ctx, "slide image generation", func() error {
		var apiErr error
		resp, apiErr = c.client.CreateImage(ctx, openai.ImageRequest{
			Model:          imgCfg.Model,
			Prompt:         prompt,
			Size:           imgCfg.Size,
			N:              1,
			ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		})
		return apiErr
	})
	if err != nil {
		return errors.Wrap(errors.CodeImageGenFailed, "slide image generation failed", err)
	}
	if len(resp.Data) == 0 {
		return errors.New(errors.CodeImageGenFailed, "image API returned no data")
	}
	return writeImageResponse(ctx, resp.Data[0], outputPath)
}

func buildSlideImagePrompt(deckTitle string, slide types.Slide) string {
	bodySection := ""
	if slide.Body != "" {
		bodySection = "\n- Body text: " + slide.Body
	}
	bulletSection := ""
	if len(slide.Bullets) > 0 {
		bulletSection = "\n- Bullet points: " + strings.Join(slide.Bullets, "; ")
	}
	return fmt.Sprintf(types.SlideImagePrompt,
		deckTitle, slide.SlideType, slide.Headline,
		bodySection, bulletSection, slide.AccentColor, slide.VisualDescription)
}
