package types

import "strings"

// SceneScript is the planner's description of one narrated video unit.
// DurationHint is advisory; the composer derives the real duration from
// the narration audio.
type SceneScript struct {
	SceneNumber        int     `json:"scene_number"`
	Narration          string  `json:"narration"`
	VisualDescription  string  `json:"visual_description"`
	Mood               string  `json:"mood"`
	SourcePages        []int   `json:"source_pages"`
	DurationHint       float64 `json:"duration_hint"`
	GenerateBackground bool    `json:"generate_background"`
	BackgroundPrompt   string  `json:"background_prompt"`
	UseUploadedImages  []int   `json:"use_uploaded_images"`
	LayoutMode         string  `json:"layout_mode"`
}

// Layout returns the normalized layout mode for dispatch.
func (s SceneScript) Layout() LayoutMode {
	return ParseLayoutMode(s.LayoutMode)
}

// VideoScript is the complete plan for one video. Produced once by the
// planner and read-only afterwards.
type VideoScript struct {
	Title          string        `json:"title"`
	OverallMood    string        `json:"overall_mood"`
	IntroText      string        `json:"intro_text"`
	OutroText      string        `json:"outro_text"`
	Scenes         []SceneScript `json:"scenes"`
	TotalNarration string        `json:"-"`
}

// JoinNarration concatenates per-scene narration with natural pauses.
func (v VideoScript) JoinNarration() string {
	parts := make([]string, 0, len(v.Scenes))
	for _, scene := range v.Scenes {
		parts = append(parts, scene.Narration)
	}
	return strings.Join(parts, " ... ")
}

// Classification is the result of classifying a single image.
type Classification struct {
	Classification       string  `json:"classification"`
	Description          string  `json:"description"`
	HasData              bool    `json:"has_data"`
	IsComparison         bool    `json:"is_comparison"`
	VisualComplexity     string  `json:"visual_complexity"`
	SuggestedHoldSeconds float64 `json:"suggested_hold_seconds"`
}

// Class returns the normalized semantic tag.
func (c Classification) Class() ImageClass {
	return ParseImageClass(c.Classification)
}

// DefaultClassification is the safe fallback used when a classifier
// batch fails: generic photo, no composition restrictions.
func DefaultClassification() Classification {
	return Classification{
		Classification:       string(ClassPhoto),
		Description:          "Classification unavailable",
		VisualComplexity:     string(ComplexityMedium),
		SuggestedHoldSeconds: 5.0,
	}
}

// IndexedClassification is one entry of the classifier's batch answer.
type IndexedClassification struct {
	Index int `json:"index"`
	Classification
}

// BatchClassificationResult is the JSON envelope the classifier returns.
type BatchClassificationResult struct {
	Classifications []IndexedClassification `json:"classifications"`
}

// Slide is the presentation variant's planning unit.
type Slide struct {
	SlideNumber       int      `json:"slide_number"`
	SlideType         string   `json:"slide_type"`
	Headline          string   `json:"headline"`
	Body              string   `json:"body"`
	Bullets           []string `json:"bullets"`
	Narration         string   `json:"narration"`
	VisualDescription string   `json:"visual_description"`
	AccentColor       string   `json:"accent_color"`
}

// SlideDeck is the full slide plan.
type SlideDeck struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Theme    string  `json:"theme"`
	Slides   []Slide `json:"slides"`
}
