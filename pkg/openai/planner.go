package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docwave/internal/content"
	"docwave/internal/types"
	"docwave/log"
	"docwave/pkg/errors"
	"docwave/pkg/util"
)

// sectionSummary is the per-section digest sent to the planner.
type sectionSummary struct {
	Section    int    `json:"section"`
	Text       string `json:"text"`
	HasImages  bool   `json:"has_images"`
	ImageCount int    `json:"image_count"`
	HasText    bool   `json:"has_text"`
}

// inventoryEntry describes one pool image for the planner, including
// classifier metadata when present.
type inventoryEntry struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Source string `json:"source"`
	Size   string `json:"size"`

	Classification       string  `json:"classification,omitempty"`
	Description          string  `json:"description,omitempty"`
	HasData              bool    `json:"has_data,omitempty"`
	IsComparison         bool    `json:"is_comparison,omitempty"`
	VisualComplexity     string  `json:"visual_complexity,omitempty"`
	SuggestedHoldSeconds float64 `json:"suggested_hold_seconds,omitempty"`
}

const sectionTextLimit = 2000

// GenerateScript plans the video: it sends section digests, the
// classified image inventory and thumbnail previews of every pool
// image, and parses the returned scene list.
func (c *Client) GenerateScript(ctx context.Context, input *content.ContentInput, model string) (*types.VideoScript, error) {
	prompt := buildPlannerPrompt(input)

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
	}
	for i, ci := range input.AllImages {
		dataURL, err := imageToDataURL(ci.Image, visionThumbnailEdge)
		if err != nil {
			log.GetLogger().Warn("could not encode image for planner",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailLow,
			},
		})
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, "script planning", func() error {
		var apiErr error
		resp, apiErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Temperature: 0.7,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, MultiContent: parts},
			},
		})
		return apiErr
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeScriptFailed, "script planning call failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(errors.CodeScriptFailed, "script planner returned no choices")
	}

	script, err := parseScriptResponse(resp.Choices[0].Message.Content, input.Title)
	if err != nil {
		return nil, err
	}

	log.GetLogger().Info("video script planned",
		zap.String("title", script.Title),
		zap.Int("scenes", len(script.Scenes)))
	return script, nil
}

func buildPlannerPrompt(input *content.ContentInput) string {
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

	inventory := make([]inventoryEntry, 0, len(input.AllImages))
	for i, ci := range input.AllImages {
		entry := inventoryEntry{
			Index:  i,
			Label:  ci.Label,
			Source: ci.Source,
			Size:   fmt.Sprintf("%dx%d", ci.Width, ci.Height),
		}
		if ci.Classified() {
			class := ci.Classification()
			entry.Classification = class.Classification
			entry.Description = class.Description
			entry.HasData = class.HasData
			entry.IsComparison = class.IsComparison
			entry.VisualComplexity = class.VisualComplexity
			entry.SuggestedHoldSeconds = class.SuggestedHoldSeconds
		}
		inventory = append(inventory, entry)
	}

	sectionsJSON, _ := json.MarshalIndent(sections, "", "  ")
	inventoryJSON, _ := json.MarshalIndent(inventory, "", "  ")

	return fmt.Sprintf(types.ScriptPlannerPrompt,
		input.Title, input.SourceType, input.TotalSections(), input.ImageCount(),
		string(sectionsJSON), string(inventoryJSON))
}

// parseScriptResponse extracts the JSON payload and fills the defaults
// the model is allowed to omit.
func parseScriptResponse(raw, fallbackTitle string) (*types.VideoScript, error) {
	jsonStr := util.ExtractJsonFromText(raw)

	var script types.VideoScript
	if err := json.Unmarshal([]byte(jsonStr), &script); err != nil {
		log.GetLogger().Error("script response is not valid JSON",
			zap.String("response", raw), zap.Error(err))
		return nil, errors.Wrap(errors.CodeScriptUnparsable, "script response is not valid JSON", err)
	}
	if len(script.Scenes) == 0 {
		return nil, errors.New(errors.CodeNoScenes, "planner returned no scenes")
	}

	if script.Title == "" {
		script.Title = fallbackTitle
	}
	if script.IntroText == "" {
		script.IntroText = script.Title
	}
	if script.OutroText == "" {
		script.OutroText = "Thank you for watching"
	}
	if script.OverallMood == "" {
		script.OverallMood = "professional"
	}
	for i := range script.Scenes {
		scene := &script.Scenes[i]
		if scene.Mood == "" {
			scene.Mood = "professional"
		}
		if scene.DurationHint <= 0 {
			scene.DurationHint = 8.0
		}
		if scene.LayoutMode == "" {
			scene.LayoutMode = string(types.LayoutSingle)
		}
	}
	script.TotalNarration = script.JoinNarration()

	return &script, nil
}
