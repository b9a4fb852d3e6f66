// Package content holds the unified input model shared by all
// pipelines. PDF extraction and raw text+images both build a
// ContentInput so scripting and composition never care where the
// material came from.
package content

import (
	"fmt"
	"image"

	"docwave/internal/types"
)

// RawImage is one extracted or uploaded image before classification.
// Immutable once built.
type RawImage struct {
	Image  image.Image
	Label  string
	Source string
	Width  int
	Height int
}

// NewRawImage wraps an image with its label and source tag.
func NewRawImage(img image.Image, label, source string) RawImage {
	bounds := img.Bounds()
	return RawImage{
		Image:  img,
		Label:  label,
		Source: source,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
}

// ContentImage pairs a RawImage with an optional classification. The
// pair is built functionally: classification never mutates an image
// observed elsewhere.
type ContentImage struct {
	RawImage

	// PoolIndex is the position in ContentInput.AllImages. Scene
	// scripts reference images by this index.
	PoolIndex int

	class      types.Classification
	classified bool
}

// Unclassified wraps a RawImage with no classification yet.
func (r RawImage) Unclassified() ContentImage {
	return ContentImage{RawImage: r}
}

// WithClassification returns a classified copy.
func (r RawImage) WithClassification(c types.Classification) ContentImage {
	return ContentImage{RawImage: r, class: c, classified: true}
}

// Classified reports whether a classifier result has been applied.
func (ci ContentImage) Classified() bool { return ci.classified }

// Classification returns the applied classifier result. Zero value
// when unclassified; callers should treat such images as generic.
func (ci ContentImage) Classification() types.Classification { return ci.class }

// Class returns the normalized semantic tag, empty when unclassified.
func (ci ContentImage) Class() types.ImageClass {
	if !ci.classified {
		return types.ClassUnknown
	}
	return ci.class.Class()
}

// IsDataVisual reports charts, diagrams and tables, which benefit
// from slow zoom and longer holds.
func (ci ContentImage) IsDataVisual() bool { return ci.Class().IsDataVisual() }

// IsFullBleed reports photos and decorative images, which look best
// full-frame.
func (ci ContentImage) IsFullBleed() bool { return ci.Class().IsFullBleed() }

// IsLogo reports brand marks, which become watermarks instead of
// scene visuals.
func (ci ContentImage) IsLogo() bool { return ci.Class().IsLogo() }

// HoldSeconds returns the classifier's suggested display time, or the
// default when unclassified.
func (ci ContentImage) HoldSeconds() float64 {
	if !ci.classified {
		return types.DefaultClassification().SuggestedHoldSeconds
	}
	return ci.class.SuggestedHoldSeconds
}

// ContentSection is one logical unit of source material, mapping to
// one or more scenes.
type ContentSection struct {
	SectionNumber        int
	Text                 string
	Images               []ContentImage
	HasSignificantText   bool
	HasSignificantImages bool
}

// ContentInput is the complete material for one video or deck.
// Section images also appear in AllImages; scene scripts address
// images by AllImages position.
type ContentInput struct {
	Title      string
	Sections   []ContentSection
	AllImages  []ContentImage
	SourceType string
}

// HasImages reports whether any image is available.
func (c *ContentInput) HasImages() bool { return len(c.AllImages) > 0 }

// ImageCount returns the size of the global image pool.
func (c *ContentInput) ImageCount() int { return len(c.AllImages) }

// TotalSections returns the number of content sections.
func (c *ContentInput) TotalSections() int { return len(c.Sections) }

// WithClassifications returns a copy of the input whose pool and
// section images carry classifier results. classes must be indexed by
// pool position and cover the whole pool.
func (c *ContentInput) WithClassifications(classes []types.Classification) (*ContentInput, error) {
	if len(classes) != len(c.AllImages) {
		return nil, fmt.Errorf("classification count %d does not match image pool size %d",
			len(classes), len(c.AllImages))
	}

	classified := &ContentInput{
		Title:      c.Title,
		SourceType: c.SourceType,
		AllImages:  make([]ContentImage, len(c.AllImages)),
		Sections:   make([]ContentSection, len(c.Sections)),
	}
	for i, ci := range c.AllImages {
		next := ci.RawImage.WithClassification(classes[i])
		next.PoolIndex = ci.PoolIndex
		classified.AllImages[i] = next
	}
	for i, section := range c.Sections {
		images := make([]ContentImage, len(section.Images))
		for j, ci := range section.Images {
			images[j] = classified.AllImages[ci.PoolIndex]
		}
		section.Images = images
		classified.Sections[i] = section
	}
	return classified, nil
}
