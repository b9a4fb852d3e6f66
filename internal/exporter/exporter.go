// Package exporter drives ffmpeg: it probes encoder availability,
// streams rendered frames into the encoder's stdin, and places
// narration and music on the output with a filter graph.
package exporter

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"docwave/config"
	"docwave/internal/composer"
	"docwave/internal/storage"
	"docwave/log"
	"docwave/pkg/errors"
)

const (
	encoderProbeTimeout = 5 * time.Second
	stderrTruncateLimit = 500

	audioBitrate = "192k"
)

// encoderProber lists ffmpeg's compiled-in encoders. Swappable for tests.
var encoderProber = func(ctx context.Context) ([]byte, error) {
	return exec.CommandContext(ctx, storage.FfmpegPath, "-hide_banner", "-encoders").CombinedOutput()
}

// runEncoder executes one ffmpeg invocation, feeding frames (may be
// nil) into stdin and returning the combined output. Swappable for tests.
var runEncoder = func(ctx context.Context, args []string, frames io.Reader) ([]byte, error) {
	cmd := exec.CommandContext(ctx, storage.FfmpegPath, args...)
	cmd.Stdin = frames
	return cmd.CombinedOutput()
}

// Exporter encodes a composed timeline into an MP4 file. Each call
// re-probes the encoder list; hardware availability can change
// between runs.
type Exporter struct {
	video   config.Video
	workers int
}

func NewExporter(videoCfg config.Video, workers int) *Exporter {
	return &Exporter{video: videoCfg, workers: workers}
}

// Export renders the timeline into outputPath. GPU-capable hosts get
// a two-pass encode: a cheap libx264 intermediate decoupling frame
// generation from the quality encode, then an NVENC re-encode. Hosts
// without the GPU encoder get a single quality libx264 pass.
func (e *Exporter) Export(ctx context.Context, tl *composer.Timeline, outputPath string) error {
	if storage.FfmpegPath == "" {
		return errors.New(errors.CodeEncoderProbe, "ffmpeg binary is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "create output directory", err)
	}

	if e.detectGPUEncoder(ctx) {
		return e.exportGPU(ctx, tl, outputPath)
	}
	return e.exportCPU(ctx, tl, outputPath)
}

// detectGPUEncoder probes the encoder list for the configured GPU
// codec. Probe failures are not fatal, only a reason to take the CPU
// path.
func (e *Exporter) detectGPUEncoder(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, encoderProbeTimeout)
	defer cancel()

	output, err := encoderProber(probeCtx)
	if err != nil {
		log.GetLogger().Warn("encoder probe failed, using CPU encoder", zap.Error(err))
		return false
	}
	return hasEncoder(string(output), e.video.GpuEncoder)
}

func hasEncoder(encoderList, name string) bool {
	return name != "" && strings.Contains(encoderList, name)
}

func (e *Exporter) exportCPU(ctx context.Context, tl *composer.Timeline, outputPath string) error {
	log.GetLogger().Info("exporting with CPU encoder",
		zap.String("codec", "libx264"),
		zap.String("output", outputPath))

	args := e.rawFrameInputArgs()
	args = append(args, audioArgs(tl, e.video.MusicVolume)...)
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", strconv.Itoa(e.video.Crf),
		"-pix_fmt", "yuv420p",
		"-threads", strconv.Itoa(e.workers),
		"-movflags", "+faststart",
		outputPath,
	)
	return e.streamFrames(ctx, tl, args)
}

func (e *Exporter) exportGPU(ctx context.Context, tl *composer.Timeline, outputPath string) error {
	intermediate := outputPath + ".intermediate.mp4"
	defer os.Remove(intermediate)

	log.GetLogger().Info("exporting with GPU encoder",
		zap.String("codec", e.video.GpuEncoder),
		zap.String("intermediate", intermediate),
		zap.String("output", outputPath))

	// pass 1: video only, tuned for render throughput
	args := e.rawFrameInputArgs()
	args = append(args,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-threads", strconv.Itoa(e.workers),
		intermediate,
	)
	if err := e.streamFrames(ctx, tl, args); err != nil {
		return err
	}

	// pass 2: quality re-encode plus the audio mixdown
	args = []string{"-y", "-i", intermediate}
	args = append(args, audioArgs(tl, e.video.MusicVolume)...)
	args = append(args,
		"-c:v", e.video.GpuEncoder,
		"-preset", e.video.NvencPreset,
		"-rc", "vbr",
		"-cq", "19",
		"-b:v", e.video.Bitrate,
		"-maxrate", e.video.Bitrate,
		"-bufsize", doubleRate(e.video.Bitrate),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outputPath,
	)
	output, err := runEncoder(ctx, args, nil)
	if err != nil {
		return encoderExitError(err, output)
	}
	return nil
}

// rawFrameInputArgs declares stdin as an rgb24 rawvideo stream at the
// configured geometry.
func (e *Exporter) rawFrameInputArgs() []string {
	return []string{
		"-y",
		"-f", "rawvideo",
		"-vcodec", "rawvideo",
		"-s", fmt.Sprintf("%dx%d", e.video.Width, e.video.Height),
		"-pix_fmt", "rgb24",
		"-r", strconv.Itoa(e.video.Fps),
		"-i", "pipe:0",
	}
}

// streamFrames renders the timeline frame by frame into the encoder's
// stdin. Rendering is strictly sequential; the encoder consumes frames
// in temporal order.
func (e *Exporter) streamFrames(ctx context.Context, tl *composer.Timeline, args []string) error {
	pr, pw := io.Pipe()

	go func() {
		defer pw.Close()
		buf := make([]byte, e.video.Width*e.video.Height*3)
		total := tl.TotalFrames()
		for i := 0; i < total; i++ {
			if ctx.Err() != nil {
				pw.CloseWithError(ctx.Err())
				return
			}
			frame := tl.FrameAt(float64(i) / float64(e.video.Fps))
			frameToRGB(frame, buf)
			if _, err := pw.Write(buf); err != nil {
				// encoder closed the pipe; its exit error surfaces below
				return
			}
		}
	}()

	output, err := runEncoder(ctx, args, pr)
	// unblock the renderer when the encoder exits without draining the pipe
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return encoderExitError(err, output)
	}

	log.GetLogger().Info("frame stream encoded",
		zap.Int("frames", tl.TotalFrames()),
		zap.Float64("duration", tl.Duration))
	return nil
}

// frameToRGB packs an RGBA frame into the rgb24 layout ffmpeg expects.
// buf must be width*height*3 bytes.
func frameToRGB(frame *image.RGBA, buf []byte) {
	src := frame.Pix
	for i, j := 0, 0; i < len(src); i, j = i+4, j+3 {
		buf[j] = src[i]
		buf[j+1] = src[i+1]
		buf[j+2] = src[i+2]
	}
}

// encoderExitError wraps a non-zero ffmpeg exit with its output,
// truncated to keep diagnostics readable.
func encoderExitError(err error, output []byte) error {
	detail := string(output)
	if len(detail) > stderrTruncateLimit {
		detail = detail[:stderrTruncateLimit]
	}
	return errors.WrapWithDetail(errors.CodeEncoderExit, "encoder exited with an error", detail, err)
}

// doubleRate doubles a bitrate string such as "12M" for the encoder's
// buffer size. Unparseable values pass through unchanged.
func doubleRate(rate string) string {
	if rate == "" {
		return rate
	}
	suffix := ""
	numeric := rate
	last := rate[len(rate)-1]
	if last < '0' || last > '9' {
		suffix = string(last)
		numeric = rate[:len(rate)-1]
	}
	value, err := strconv.Atoi(numeric)
	if err != nil {
		return rate
	}
	return strconv.Itoa(value*2) + suffix
}
