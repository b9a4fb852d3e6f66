package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docwave/internal/types"
	"docwave/log"
	"docwave/pkg/util"
)

const classifyBatchSize = 8

// ClassifyImages classifies the whole image pool in batches. It never
// fails: a batch that errors or comes back malformed yields safe photo
// defaults so composition can proceed.
func (c *Client) ClassifyImages(ctx context.Context, images []image.Image, model string) []types.Classification {
	results := make([]types.Classification, 0, len(images))
	for start := 0; start < len(images); start += classifyBatchSize {
		end := start + classifyBatchSize
		if end > len(images) {
			end = len(images)
		}
		results = append(results, c.classifyBatch(ctx, images[start:end], start, model)...)
	}

	log.GetLogger().Info("image pool classified",
		zap.Int("images", len(images)),
		zap.Int("batches", (len(images)+classifyBatchSize-1)/classifyBatchSize))
	return results
}

func (c *Client) classifyBatch(ctx context.Context, batch []image.Image, batchStart int, model string) []types.Classification {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf(types.ImageClassifierPrompt, len(batch), batchStart),
		},
	}
	for i, img := range batch {
		dataURL, err := imageToDataURL(img, visionThumbnailEdge)
		if err != nil {
			log.GetLogger().Warn("could not encode image for classification",
				zap.Int("index", batchStart+i), zap.Error(err))
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
	err := withRetry(ctx, "image classification", func() error {
		var apiErr error
		resp, apiErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Temperature: 0.2,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, MultiContent: parts},
			},
		})
		return apiErr
	})
	if err != nil || len(resp.Choices) == 0 {
		log.GetLogger().Warn("classification batch failed, using defaults",
			zap.Int("batch_start", batchStart), zap.Error(err))
		return defaultBatch(len(batch))
	}

	return parseClassificationBatch(resp.Choices[0].Message.Content, batchStart, len(batch))
}

// parseClassificationBatch maps indexed results back onto batch
// positions, filling gaps with defaults. Indices are accepted either
// global (batchStart+i) or batch-local.
func parseClassificationBatch(raw string, batchStart, batchLen int) []types.Classification {
	var parsed types.BatchClassificationResult
	if err := json.Unmarshal([]byte(util.ExtractJsonFromText(raw)), &parsed); err != nil {
		log.GetLogger().Warn("classification response is not valid JSON",
			zap.Int("batch_start", batchStart), zap.Error(err))
		return defaultBatch(batchLen)
	}

	byIndex := make(map[int]types.Classification, len(parsed.Classifications))
	for _, entry := range parsed.Classifications {
		byIndex[entry.Index] = entry.Classification
	}

	results := make([]types.Classification, batchLen)
	for i := 0; i < batchLen; i++ {
		if class, ok := byIndex[batchStart+i]; ok {
			results[i] = class
		} else if class, ok := byIndex[i]; ok {
			results[i] = class
		} else {
			results[i] = types.DefaultClassification()
		}
	}
	return results
}

func defaultBatch(n int) []types.Classification {
	batch := make([]types.Classification, n)
	for i := range batch {
		batch[i] = types.DefaultClassification()
	}
	return batch
}
