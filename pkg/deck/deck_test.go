package deck

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

	"docwave/log"
	apperrors "docwave/pkg/errors"
)

func TestMain(m *testing.M) {
	log.InitLogger()
	os.Exit(m.Run())
}

func writeSlidePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 160, 90))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 240, G: 240, B: 245, A: 255}), image.Point{}, draw.Src)

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, img))
	require.NoError(t, file.Close())
	return path
}

func TestWritePDF(t *testing.T) {
	dir := t.TempDir()
	slides := []string{
		writeSlidePNG(t, dir, "slide_001.png"),
		writeSlidePNG(t, dir, "slide_002.png"),
	}

	out := filepath.Join(dir, "deck.pdf")
	require.NoError(t, WritePDF(slides, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWritePDFEmpty(t *testing.T) {
	err := WritePDF(nil, filepath.Join(t.TempDir(), "deck.pdf"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidParams))
}

func TestWritePDFMissingSlide(t *testing.T) {
	err := WritePDF([]string{"/nonexistent/slide.png"}, filepath.Join(t.TempDir(), "deck.pdf"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeFileNotFound))
}
