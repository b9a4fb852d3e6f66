package content

import (
	"fmt"
	"image"
	"strings"

	"docwave/pkg/errors"
	"docwave/pkg/pdf"
)

// Short fragments get merged with their neighbor so a stray heading
// never becomes its own scene.
const minParagraphChars = 50

// FromTextAndImages builds a ContentInput from raw text plus uploaded
// images. Text splits into sections on blank lines; images spread
// evenly across sections with the remainder going to the last one.
func FromTextAndImages(title, text string, images []image.Image, labels []string) *ContentInput {
	pool := make([]ContentImage, 0, len(images))
	for i, img := range images {
		label := fmt.Sprintf("Image %d", i+1)
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		ci := NewRawImage(img, label, "uploaded").Unclassified()
		ci.PoolIndex = i
		pool = append(pool, ci)
	}

	paragraphs := splitParagraphs(text)

	perSection := len(pool) / len(paragraphs)
	if perSection < 1 {
		perSection = 1
	}

	sections := make([]ContentSection, 0, len(paragraphs))
	imgIdx := 0
	for i, para := range paragraphs {
		end := imgIdx + perSection
		if i == len(paragraphs)-1 {
			end = len(pool)
		}
		if end > len(pool) {
			end = len(pool)
		}
		sectionImages := pool[imgIdx:end]
		imgIdx = end

		sections = append(sections, ContentSection{
			SectionNumber:        i + 1,
			Text:                 para,
			Images:               sectionImages,
			HasSignificantText:   len(para) > 20,
			HasSignificantImages: len(sectionImages) > 0,
		})
	}

	if title == "" {
		title = "Untitled Video"
	}
	return &ContentInput{
		Title:      title,
		Sections:   sections,
		AllImages:  pool,
		SourceType: "text_images",
	}
}

func splitParagraphs(text string) []string {
	var raw []string
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			raw = append(raw, trimmed)
		}
	}

	var paragraphs []string
	buffer := ""
	for _, p := range raw {
		if len(buffer)+len(p) < minParagraphChars {
			if buffer == "" {
				buffer = p
			} else {
				buffer = buffer + "\n\n" + p
			}
			continue
		}
		if buffer != "" {
			paragraphs = append(paragraphs, buffer)
		}
		buffer = p
	}
	if buffer != "" {
		paragraphs = append(paragraphs, buffer)
	}

	if len(paragraphs) == 0 {
		if strings.TrimSpace(text) != "" {
			paragraphs = []string{text}
		} else {
			paragraphs = []string{""}
		}
	}
	return paragraphs
}

// FromPDF converts an extracted PDF into the unified model. Embedded
// figures come first within a page, then the full page render, and
// the global pool preserves page order.
func FromPDF(doc *pdf.Document) (*ContentInput, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, errors.New(errors.CodeEmptyDocument, "PDF produced no pages")
	}

	input := &ContentInput{
		Title:      doc.Title,
		SourceType: "pdf",
	}

	for _, page := range doc.Pages {
		var sectionImages []ContentImage

		for i, figure := range page.Figures {
			label := fmt.Sprintf("Page %d image %d", page.PageNumber, i+1)
			source := fmt.Sprintf("pdf_extracted_page_%d", page.PageNumber)
			ci := NewRawImage(figure, label, source).Unclassified()
			ci.PoolIndex = len(input.AllImages)
			input.AllImages = append(input.AllImages, ci)
			sectionImages = append(sectionImages, ci)
		}

		if page.Render != nil {
			label := fmt.Sprintf("Page %d render", page.PageNumber)
			source := fmt.Sprintf("pdf_page_%d", page.PageNumber)
			ci := NewRawImage(page.Render, label, source).Unclassified()
			ci.PoolIndex = len(input.AllImages)
			input.AllImages = append(input.AllImages, ci)
			sectionImages = append(sectionImages, ci)
		}

		input.Sections = append(input.Sections, ContentSection{
			SectionNumber:        page.PageNumber,
			Text:                 page.Text,
			Images:               sectionImages,
			HasSignificantText:   page.HasSignificantText,
			HasSignificantImages: page.HasSignificantImages,
		})
	}

	return input, nil
}
