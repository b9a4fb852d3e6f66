package composer

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docwave/config"
	"docwave/internal/content"
	"docwave/internal/types"
	"docwave/log"
	apperrors "docwave/pkg/errors"
)

func TestMain(m *testing.M) {
	log.InitLogger()
	os.Exit(m.Run())
}

func testComposer() *Composer {
	comp := NewComposer(config.Video{Width: 160, Height: 90, Fps: 30})
	comp.probeDuration = func(path string) (float64, error) { return 4.0, nil }
	return comp
}

func colorImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func classifiedImage(idx int, class string) content.ContentImage {
	ci := content.NewRawImage(colorImage(200, 150, color.RGBA{R: 120, G: 120, B: 120, A: 255}),
		"img", "uploaded").
		WithClassification(types.Classification{Classification: class, VisualComplexity: "medium", SuggestedHoldSeconds: 5})
	ci.PoolIndex = idx
	return ci
}

func poolInput(images ...content.ContentImage) *content.ContentInput {
	return &content.ContentInput{
		Title:      "t",
		AllImages:  images,
		SourceType: "text_images",
		Sections: []content.ContentSection{
			{SectionNumber: 1, Text: "section", Images: images},
		},
	}
}

func writeAudioStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voice.mp3")
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
	return path
}

func TestSceneDurationFromAudio(t *testing.T) {
	comp := testComposer()
	input := poolInput(classifiedImage(0, "photo"))
	scene := types.SceneScript{SceneNumber: 1, Narration: "Look at this scene right here.",
		UseUploadedImages: []int{0}, DurationHint: 9.0, LayoutMode: "single"}

	audio := writeAudioStub(t)

	tests := []struct {
		name     string
		audio    string
		probed   float64
		expected float64
	}{
		{"audio plus padding", audio, 6.0, 6.5},
		{"audio floored at minimum", audio, 1.0, 4.0},
		{"hint when no audio", "", 0, 9.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp.probeDuration = func(string) (float64, error) { return tt.probed, nil }
			clip, err := comp.buildSceneClip(scene, input, tt.audio, "", nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, clip.Duration, 1e-9)
		})
	}

	t.Run("short hint floored at minimum", func(t *testing.T) {
		shortScene := scene
		shortScene.DurationHint = 1.5
		clip, err := comp.buildSceneClip(shortScene, input, "", "", nil)
		require.NoError(t, err)
		assert.Equal(t, MinSceneDuration, clip.Duration)
	})
}

func TestMissingNarrationFileIsFatal(t *testing.T) {
	comp := testComposer()
	input := poolInput(classifiedImage(0, "photo"))
	scene := types.SceneScript{SceneNumber: 1, Narration: "Spoken.",
		UseUploadedImages: []int{0}, DurationHint: 9.0, LayoutMode: "single"}

	_, err := comp.buildSceneClip(scene, input,
		filepath.Join(t.TempDir(), "gone.mp3"), "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeFileNotFound))
}

func TestEffectiveLayout(t *testing.T) {
	tests := []struct {
		requested types.LayoutMode
		count     int
		want      types.LayoutMode
	}{
		{types.LayoutSplitScreen, 1, types.LayoutSingle},
		{types.LayoutSplitScreen, 2, types.LayoutSplitScreen},
		{types.LayoutCarousel, 1, types.LayoutSingle},
		{types.LayoutCarousel, 3, types.LayoutCarousel},
		{types.LayoutPictureInPicture, 1, types.LayoutPictureInPicture},
		{types.LayoutSingle, 5, types.LayoutSingle},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EffectiveLayout(tt.requested, tt.count),
			"layout %s with %d visuals", tt.requested, tt.count)
	}
}

func TestGatherAssetPriority(t *testing.T) {
	assigned := classifiedImage(0, "chart")
	sectionOnly := classifiedImage(1, "photo")
	input := &content.ContentInput{
		AllImages: []content.ContentImage{assigned, sectionOnly},
		Sections: []content.ContentSection{
			{SectionNumber: 1, Images: []content.ContentImage{sectionOnly}},
		},
	}
	scene := types.SceneScript{SceneNumber: 1, UseUploadedImages: []int{0}, SourcePages: []int{1}}

	visuals := Gather(scene, input, "", 160, 90)

	// section fallback must not fire when assigned images exist
	require.Len(t, visuals, 1)
	assert.Equal(t, 0, visuals[0].PoolIndex)
}

func TestGatherLogoExclusion(t *testing.T) {
	logo := classifiedImage(0, "logo")
	photo := classifiedImage(1, "photo")
	input := poolInput(logo, photo)
	scene := types.SceneScript{SceneNumber: 1, UseUploadedImages: []int{0, 1}}

	visuals := Gather(scene, input, "", 160, 90)
	require.Len(t, visuals, 1)
	assert.False(t, visuals[0].IsLogo())

	logos := GatherLogos(input)
	require.Len(t, logos, 1)
	assert.True(t, logos[0].IsLogo())
}

func TestGatherSectionFallbackAndGradient(t *testing.T) {
	sectionImg := classifiedImage(0, "photo")
	input := &content.ContentInput{
		AllImages: []content.ContentImage{sectionImg},
		Sections: []content.ContentSection{
			{SectionNumber: 1, Images: []content.ContentImage{sectionImg}},
		},
	}

	// nothing assigned: fall back to section images
	scene := types.SceneScript{SceneNumber: 1, SourcePages: []int{1}}
	visuals := Gather(scene, input, "", 160, 90)
	require.Len(t, visuals, 1)
	assert.Equal(t, "uploaded", visuals[0].Source)

	// nothing anywhere: synthesized gradient
	empty := &content.ContentInput{}
	visuals = Gather(types.SceneScript{SceneNumber: 2}, empty, "", 160, 90)
	require.Len(t, visuals, 1)
	assert.Equal(t, "generated", visuals[0].Source)
	assert.Equal(t, types.ClassDecorative, visuals[0].Class())
}

func TestGatherAIBackground(t *testing.T) {
	bgPath := filepath.Join(t.TempDir(), "bg.png")
	file, err := os.Create(bgPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, colorImage(320, 180, color.RGBA{B: 200, A: 255})))
	require.NoError(t, file.Close())

	input := poolInput(classifiedImage(0, "chart"))
	scene := types.SceneScript{SceneNumber: 1, UseUploadedImages: []int{0}}

	visuals := Gather(scene, input, bgPath, 160, 90)
	require.Len(t, visuals, 2)
	assert.Equal(t, "ai_generated", visuals[1].Source)
	assert.Equal(t, types.ClassPhoto, visuals[1].Class())

	// unreadable path degrades without error
	visuals = Gather(scene, input, filepath.Join(t.TempDir(), "missing.png"), 160, 90)
	assert.Len(t, visuals, 1)
}

func TestTransitionAsymmetry(t *testing.T) {
	comp := testComposer()
	input := poolInput(classifiedImage(0, "photo"))
	script := &types.VideoScript{
		Title:     "Demo",
		IntroText: "Welcome",
		OutroText: "Goodbye",
		Scenes: []types.SceneScript{
			{SceneNumber: 1, Narration: "First scene narration goes here.", UseUploadedImages: []int{0}, DurationHint: 4},
			{SceneNumber: 2, Narration: "Second scene narration goes here.", UseUploadedImages: []int{0}, DurationHint: 4},
		},
	}

	timeline, err := comp.Compose(script, input, nil, nil, "")
	require.NoError(t, err)
	require.Len(t, timeline.Clips, 4) // intro + 2 scenes + outro

	for i, clip := range timeline.Clips {
		assert.True(t, clip.FadeIn, "clip %d must fade in", i)
		if i == len(timeline.Clips)-1 {
			assert.True(t, clip.FadeOut, "final clip must fade out")
		} else {
			assert.False(t, clip.FadeOut, "clip %d must not fade out", i)
		}
	}

	assert.InDelta(t, IntroDuration+4+4+OutroDuration, timeline.Duration, 1e-9)
}

func TestTimelineFadeFromBlack(t *testing.T) {
	comp := testComposer()
	input := poolInput(classifiedImage(0, "photo"))
	script := &types.VideoScript{
		Title:  "Demo",
		Scenes: []types.SceneScript{{SceneNumber: 1, UseUploadedImages: []int{0}, DurationHint: 4}},
	}
	timeline, err := comp.Compose(script, input, nil, nil, "")
	require.NoError(t, err)

	first := timeline.FrameAt(0)
	r, g, b, _ := first.At(80, 45).RGBA()
	assert.Zero(t, r>>8)
	assert.Zero(t, g>>8)
	assert.Zero(t, b>>8)

	mid := timeline.FrameAt(timeline.Duration / 2)
	require.NotNil(t, mid)
	assert.Equal(t, 160, mid.Bounds().Dx())
}

func TestComposeRejectsEmptyScript(t *testing.T) {
	comp := testComposer()
	_, err := comp.Compose(&types.VideoScript{}, &content.ContentInput{}, nil, nil, "")
	require.Error(t, err)
}

func TestTableSceneNeverAnimates(t *testing.T) {
	comp := testComposer()
	table := classifiedImage(0, "table")
	input := poolInput(table)
	// empty narration: no overlay, so frames must match exactly
	scene := types.SceneScript{SceneNumber: 3, UseUploadedImages: []int{0},
		DurationHint: 6, LayoutMode: "single"}

	clip, err := comp.buildSceneClip(scene, input, "", "", nil)
	require.NoError(t, err)

	frameStart := clip.FrameAt(0)
	frameMid := clip.FrameAt(clip.Duration / 2)
	assert.Equal(t, frameStart.Pix, frameMid.Pix)
}

func TestPurePhotoSuppressesLowerThird(t *testing.T) {
	comp := testComposer()
	photo := classifiedImage(0, "photo")
	input := poolInput(photo)

	narrated := types.SceneScript{SceneNumber: 4, UseUploadedImages: []int{0},
		Narration: "This photo speaks for itself entirely.", DurationHint: 5, LayoutMode: "single"}
	silent := narrated
	silent.Narration = ""

	narratedClip, err := comp.buildSceneClip(narrated, input, "", "", nil)
	require.NoError(t, err)
	silentClip, err := comp.buildSceneClip(silent, input, "", "", nil)
	require.NoError(t, err)

	// same pixels mid-scene: the text overlay never rendered
	assert.Equal(t, silentClip.FrameAt(2.5).Pix, narratedClip.FrameAt(2.5).Pix)
}

func TestChartSceneRendersCallout(t *testing.T) {
	comp := testComposer()
	chart := classifiedImage(0, "chart")
	input := poolInput(chart)

	scene := types.SceneScript{SceneNumber: 5, UseUploadedImages: []int{0},
		Narration: "Revenue grew by forty five percent.", DurationHint: 5, LayoutMode: "single"}
	silent := scene
	silent.Narration = ""

	withCallout, err := comp.buildSceneClip(scene, input, "", "", nil)
	require.NoError(t, err)
	without, err := comp.buildSceneClip(silent, input, "", "", nil)
	require.NoError(t, err)

	assert.NotEqual(t, without.FrameAt(2.5).Pix, withCallout.FrameAt(2.5).Pix)
}

func TestCarouselRendersFullScene(t *testing.T) {
	comp := testComposer()
	images := []content.ContentImage{
		classifiedImage(0, "photo"),
		classifiedImage(1, "photo"),
		classifiedImage(2, "photo"),
	}
	input := poolInput(images...)
	scene := types.SceneScript{SceneNumber: 6, UseUploadedImages: []int{0, 1, 2},
		DurationHint: 4, LayoutMode: "carousel"}

	clip, err := comp.buildSceneClip(scene, input, "", "", nil)
	require.NoError(t, err)

	// every sampled instant renders a full frame, including the end
	for _, at := range []float64{0, 1.33, 1.34, 2.66, clip.Duration} {
		frame := clip.FrameAt(at)
		require.NotNil(t, frame)
		assert.Equal(t, 160, frame.Bounds().Dx())
	}
}

func TestPictureInPictureVisualSelection(t *testing.T) {
	photo := &preparedVisual{ci: classifiedImage(0, "photo")}
	chart := &preparedVisual{ci: classifiedImage(1, "chart")}

	background, inset := pickPiPVisuals([]*preparedVisual{chart, photo})
	assert.Same(t, photo, background)
	assert.Same(t, chart, inset)

	// no data visual: first non-background becomes the inset
	photo2 := &preparedVisual{ci: classifiedImage(2, "photo")}
	background, inset = pickPiPVisuals([]*preparedVisual{photo, photo2})
	assert.Same(t, photo, background)
	assert.Same(t, photo2, inset)

	// single visual degrades to background only
	background, inset = pickPiPVisuals([]*preparedVisual{chart})
	assert.Same(t, chart, background)
	assert.Nil(t, inset)
}

func TestExtractKeyPhrase(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first meaningful sentence", "Hi. Revenue grew fast this year. More text.", "Revenue grew fast this year"},
		{"ellipsis treated as period", "One two three... and four five six", "One two three"},
		{"truncates to max words", "a b c d e f g h i j k l m n o", "a b c d e f g h i j k l"},
		{"fallback to leading words", "so it", "so it"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractKeyPhrase(tt.text, 12))
		})
	}
}

func TestKenBurnsProfilesDeterministic(t *testing.T) {
	comp := testComposer()
	input := poolInput(classifiedImage(0, "photo"))
	scene := types.SceneScript{SceneNumber: 7, UseUploadedImages: []int{0},
		Narration: "Something to look at here.", DurationHint: 5, LayoutMode: "single"}

	clipA, err := comp.buildSceneClip(scene, input, "", "", nil)
	require.NoError(t, err)
	clipB, err := comp.buildSceneClip(scene, input, "", "", nil)
	require.NoError(t, err)

	assert.Equal(t, clipA.FrameAt(2.0).Pix, clipB.FrameAt(2.0).Pix)
}

func TestAudioPlacements(t *testing.T) {
	clips := []*Clip{
		{Duration: 3.5},
		{Duration: 5.0, AudioPath: "/tmp/a.mp3"},
		{Duration: 6.0, AudioPath: "/tmp/b.mp3"},
		{Duration: 3.0},
	}
	tl := &Timeline{Clips: clips}

	placements := tl.AudioPlacements()
	require.Len(t, placements, 2)
	assert.InDelta(t, 3.5, placements[0].Offset, 1e-9)
	assert.InDelta(t, 8.5, placements[1].Offset, 1e-9)
}

func writeSlidePNG(t *testing.T, name string, c color.RGBA) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, colorImage(320, 180, c)))
	require.NoError(t, file.Close())
	return path
}

func TestComposeSlidesDurations(t *testing.T) {
	comp := testComposer()
	comp.probeDuration = func(string) (float64, error) { return 6.0, nil }

	deck := &types.SlideDeck{
		Title: "Deck",
		Slides: []types.Slide{
			{SlideNumber: 1, Headline: "Narrated", Narration: "Spoken."},
			{SlideNumber: 2, Headline: "Silent"},
		},
	}
	slidePaths := []string{
		writeSlidePNG(t, "s1.png", color.RGBA{R: 200, A: 255}),
		writeSlidePNG(t, "s2.png", color.RGBA{G: 200, A: 255}),
	}
	audioPaths := []string{writeAudioStub(t), ""}

	tl, err := comp.ComposeSlides(deck, slidePaths, audioPaths, "")
	require.NoError(t, err)
	require.Len(t, tl.Clips, 2)

	assert.InDelta(t, 7.0, tl.Clips[0].Duration, 1e-9)
	assert.InDelta(t, MinSlideDuration, tl.Clips[1].Duration, 1e-9)
	assert.InDelta(t, 10.0, tl.Duration, 1e-9)
	assert.True(t, tl.Clips[0].FadeIn)
	assert.False(t, tl.Clips[0].FadeOut)
	assert.True(t, tl.Clips[1].FadeOut)

	placements := tl.AudioPlacements()
	require.Len(t, placements, 1)
	assert.InDelta(t, 0.0, placements[0].Offset, 1e-9)

	// slides hold a static frame
	frameStart := tl.Clips[0].FrameAt(0)
	frameLate := tl.Clips[0].FrameAt(6.5)
	assert.Equal(t, frameStart.Pix, frameLate.Pix)
}

func TestComposeSlidesMissingNarrationFile(t *testing.T) {
	comp := testComposer()

	deck := &types.SlideDeck{Slides: []types.Slide{{SlideNumber: 1, Headline: "Only"}}}
	slidePaths := []string{writeSlidePNG(t, "s1.png", color.RGBA{B: 200, A: 255})}
	audioPaths := []string{filepath.Join(t.TempDir(), "gone.mp3")}

	tl, err := comp.ComposeSlides(deck, slidePaths, audioPaths, "")
	require.NoError(t, err)
	require.Len(t, tl.Clips, 1)
	assert.InDelta(t, MinSlideDuration, tl.Clips[0].Duration, 1e-9)
	assert.Empty(t, tl.AudioPlacements())
}

func TestComposeSlidesRejectsMismatchedImages(t *testing.T) {
	comp := testComposer()

	deck := &types.SlideDeck{Slides: []types.Slide{{SlideNumber: 1}, {SlideNumber: 2}}}
	_, err := comp.ComposeSlides(deck, []string{"only_one.png"}, nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidParams))

	_, err = comp.ComposeSlides(&types.SlideDeck{}, nil, nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeNoScenes))
}
