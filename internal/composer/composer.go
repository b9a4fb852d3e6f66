// Package composer turns a planned script plus classified content
// into a lazily rendered timeline: per-scene frame generators with
// Ken Burns motion, layout composition, overlays and transitions.
package composer

import (
	"image"

	"go.uber.org/zap"

	"docwave/config"
	"docwave/internal/content"
	"docwave/internal/types"
	"docwave/log"
	"docwave/pkg/errors"
	"docwave/pkg/util"
)

const (
	MinSceneDuration   = 4.0
	TransitionDuration = 1.0

	IntroDuration = 3.5
	OutroDuration = 3.0

	KBPanMax                  = 0.08
	CarouselCrossfadeDuration = 0.6
)

// Clip is one lazily evaluated scene: a time-to-frame function, a
// fixed duration, and an optional narration track. Fade flags are set
// by the sequencer and honored when the timeline renders.
type Clip struct {
	Duration  float64
	AudioPath string
	FadeIn    bool
	FadeOut   bool

	frameAt func(t float64) *image.RGBA
}

// NewClip wraps a frame generator with a fixed duration and an
// optional narration track.
func NewClip(duration float64, audioPath string, frameAt func(t float64) *image.RGBA) *Clip {
	return &Clip{Duration: duration, AudioPath: audioPath, frameAt: frameAt}
}

// FrameAt renders the clip frame at local time t, without boundary
// fades (those belong to the timeline).
func (c *Clip) FrameAt(t float64) *image.RGBA {
	return c.frameAt(t)
}

// AudioPlacement positions one narration clip on the final timeline.
type AudioPlacement struct {
	Path   string
	Offset float64
}

// Timeline is the assembled video: ordered clips, total duration and
// the audio mixdown plan.
type Timeline struct {
	Clips     []*Clip
	Duration  float64
	MusicPath string

	Width  int
	Height int
	Fps    int
}

// FrameAt renders the global frame at time t, applying the leading
// fade-in (and trailing fade-out on the final clip).
func (tl *Timeline) FrameAt(t float64) *image.RGBA {
	offset := 0.0
	for _, clip := range tl.Clips {
		if t < offset+clip.Duration || clip == tl.Clips[len(tl.Clips)-1] {
			local := t - offset
			if local < 0 {
				local = 0
			}
			if local > clip.Duration {
				local = clip.Duration
			}
			frame := clip.FrameAt(local)

			factor := 1.0
			if clip.FadeIn && local < TransitionDuration {
				factor = local / TransitionDuration
			}
			if clip.FadeOut && local > clip.Duration-TransitionDuration {
				out := (clip.Duration - local) / TransitionDuration
				if out < factor {
					factor = out
				}
			}
			if factor < 1.0 {
				frame = scaleBrightness(frame, factor)
			}
			return frame
		}
		offset += clip.Duration
	}
	return nil
}

// AudioPlacements returns each clip's narration path with its start
// offset on the timeline.
func (tl *Timeline) AudioPlacements() []AudioPlacement {
	var placements []AudioPlacement
	offset := 0.0
	for _, clip := range tl.Clips {
		if clip.AudioPath != "" {
			placements = append(placements, AudioPlacement{Path: clip.AudioPath, Offset: offset})
		}
		offset += clip.Duration
	}
	return placements
}

// TotalFrames returns the frame count at the timeline's frame rate.
func (tl *Timeline) TotalFrames() int {
	return int(tl.Duration * float64(tl.Fps))
}

// scaleBrightness linearly dims a frame toward black, used for the
// fade-from-black and fade-to-black boundaries.
func scaleBrightness(frame *image.RGBA, factor float64) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	for i := 0; i < len(frame.Pix); i += 4 {
		out.Pix[i] = uint8(float64(frame.Pix[i]) * factor)
		out.Pix[i+1] = uint8(float64(frame.Pix[i+1]) * factor)
		out.Pix[i+2] = uint8(float64(frame.Pix[i+2]) * factor)
		out.Pix[i+3] = 0xff
	}
	return out
}

// Composer builds scene clips and assembles the timeline. All sizing
// comes from an explicit config value captured at construction.
type Composer struct {
	width  int
	height int
	fps    int

	probeDuration func(path string) (float64, error)
}

// ProbeDuration resolves narration durations via ffprobe. Swappable
// for tests that compose without external tools.
var ProbeDuration = util.ProbeDuration

// NewComposer captures the video settings for one composition run.
func NewComposer(videoCfg config.Video) *Composer {
	return &Composer{
		width:  videoCfg.Width,
		height: videoCfg.Height,
		fps:    videoCfg.Fps,
		probeDuration: func(path string) (float64, error) {
			return ProbeDuration(path)
		},
	}
}

// Compose builds every scene clip, wraps them with intro/outro cards
// and transition fades, and returns the full timeline.
// audioPaths aligns with script.Scenes by position; aiBackgrounds is
// keyed by scene number.
func (c *Composer) Compose(script *types.VideoScript, input *content.ContentInput,
	audioPaths []string, aiBackgrounds map[int]string, musicPath string) (*Timeline, error) {

	if len(script.Scenes) == 0 {
		return nil, errors.New(errors.CodeNoScenes, "script contains no scenes")
	}

	logos := GatherLogos(input)

	clips := make([]*Clip, 0, len(script.Scenes)+2)

	introText := script.IntroText
	if introText == "" {
		introText = script.Title
	}
	clips = append(clips, c.buildTitleCard(introText, IntroDuration))

	for i, scene := range script.Scenes {
		audioPath := ""
		if i < len(audioPaths) {
			audioPath = audioPaths[i]
		}
		clip, err := c.buildSceneClip(scene, input, audioPath, aiBackgrounds[scene.SceneNumber], logos)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
		log.GetLogger().Debug("scene clip built",
			zap.Int("scene", scene.SceneNumber),
			zap.Float64("duration", clip.Duration),
			zap.String("layout", string(scene.Layout())))
	}

	outroText := script.OutroText
	if outroText == "" {
		outroText = "Thank you for watching"
	}
	clips = append(clips, c.buildTitleCard(outroText, OutroDuration))

	return c.assemble(clips, musicPath), nil
}

// assemble applies the boundary fade rule and sums durations. The
// first clip fades in from black; the last clip fades in and out; all
// interior clips fade in only, their tail covered by the next clip's
// leading fade.
func (c *Composer) assemble(clips []*Clip, musicPath string) *Timeline {
	total := 0.0
	for i, clip := range clips {
		clip.FadeIn = true
		clip.FadeOut = i == len(clips)-1
		total += clip.Duration
	}
	return &Timeline{
		Clips:     clips,
		Duration:  total,
		MusicPath: musicPath,
		Width:     c.width,
		Height:    c.height,
		Fps:       c.fps,
	}
}
