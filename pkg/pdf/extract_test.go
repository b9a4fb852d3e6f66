package pdf

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docwave/internal/storage"
	"docwave/log"
	"docwave/pkg/errors"
)

func TestMain(m *testing.M) {
	log.InitLogger()
	os.Exit(m.Run())
}

func TestPageFileNumber(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/tmp/work/page-1.jpg", 1},
		{"/tmp/work/page-12.jpg", 12},
		{"/tmp/work/page-003.jpg", 3},
		{"/tmp/work/page.jpg", 0},
	}
	for _, tt := range tests {
		if got := pageFileNumber(tt.path); got != tt.want {
			t.Fatalf("pageFileNumber(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func fillImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, jpeg.Encode(file, fillImage(width, height, color.RGBA{R: 90, G: 90, B: 90, A: 255}), nil))
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, fillImage(width, height, color.RGBA{R: 200, G: 40, B: 40, A: 255})))
}

func stubTools(t *testing.T, runner func(bin string, args ...string) ([]byte, error)) {
	t.Helper()
	originalRunner := toolRunner
	originalPdftoppm := storage.PdftoppmPath
	originalPdftotext := storage.PdftotextPath
	originalPdfimages := storage.PdfimagesPath
	t.Cleanup(func() {
		toolRunner = originalRunner
		storage.PdftoppmPath = originalPdftoppm
		storage.PdftotextPath = originalPdftotext
		storage.PdfimagesPath = originalPdfimages
	})
	toolRunner = runner
	storage.PdftoppmPath = "pdftoppm"
	storage.PdftotextPath = "pdftotext"
	storage.PdfimagesPath = "pdfimages"
}

func TestExtract(t *testing.T) {
	workDir := t.TempDir()
	pdfPath := filepath.Join(workDir, "report.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644))

	stubTools(t, func(bin string, args ...string) ([]byte, error) {
		switch bin {
		case "pdftoppm":
			writeJPEG(t, filepath.Join(workDir, "page-1.jpg"), 200, 150)
			writeJPEG(t, filepath.Join(workDir, "page-2.jpg"), 200, 150)
		case "pdftotext":
			outPath := args[len(args)-1]
			require.NoError(t, os.WriteFile(outPath, []byte("Quarterly revenue grew by twelve percent.\n"), 0o644))
		case "pdfimages":
			// page 1 carries one keeper and one icon-sized reject
			writePNG(t, filepath.Join(workDir, "figure-1-000.png"), 1400, 900)
			writePNG(t, filepath.Join(workDir, "figure-1-001.png"), 30, 30)
		}
		return nil, nil
	})

	doc, err := Extract(pdfPath, workDir)
	require.NoError(t, err)

	assert.Equal(t, "report", doc.Title)
	assert.Equal(t, 2, doc.TotalPages)
	require.Len(t, doc.Pages, 2)

	first := doc.Pages[0]
	assert.Equal(t, 1, first.PageNumber)
	assert.Equal(t, "Quarterly revenue grew by twelve percent.", first.Text)
	assert.True(t, first.HasSignificantText)
	assert.True(t, first.HasSignificantImages)
	require.Len(t, first.Figures, 1)
	assert.Equal(t, 1400, first.Figures[0].Bounds().Dx())

	second := doc.Pages[1]
	assert.Equal(t, 2, second.PageNumber)
	assert.Empty(t, second.Figures)
	assert.False(t, second.HasSignificantImages)
}

func TestExtractSmallFigureUpscaled(t *testing.T) {
	workDir := t.TempDir()
	pdfPath := filepath.Join(workDir, "chart.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644))

	stubTools(t, func(bin string, args ...string) ([]byte, error) {
		switch bin {
		case "pdftoppm":
			writeJPEG(t, filepath.Join(workDir, "page-1.jpg"), 200, 150)
		case "pdfimages":
			writePNG(t, filepath.Join(workDir, "figure-1-000.png"), 320, 200)
		}
		return nil, nil
	})

	doc, err := Extract(pdfPath, workDir)
	require.NoError(t, err)
	require.Len(t, doc.Pages[0].Figures, 1)

	bounds := doc.Pages[0].Figures[0].Bounds()
	assert.Equal(t, 1280, bounds.Dx())
	assert.Equal(t, 800, bounds.Dy())
}

func TestExtractEmptyDocument(t *testing.T) {
	workDir := t.TempDir()
	pdfPath := filepath.Join(workDir, "blank.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644))

	stubTools(t, func(bin string, args ...string) ([]byte, error) {
		return nil, nil
	})

	_, err := Extract(pdfPath, workDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeEmptyDocument))
}

func TestExtractMissingFile(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope.pdf"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeFileNotFound))
}

func TestExtractMissingOptionalTools(t *testing.T) {
	workDir := t.TempDir()
	pdfPath := filepath.Join(workDir, "plain.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644))

	stubTools(t, func(bin string, args ...string) ([]byte, error) {
		if bin == "pdftoppm" {
			writeJPEG(t, filepath.Join(workDir, "page-1.jpg"), 200, 150)
		}
		return nil, nil
	})
	storage.PdftotextPath = ""
	storage.PdfimagesPath = ""

	doc, err := Extract(pdfPath, workDir)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Pages[0].Text)
	assert.Empty(t, doc.Pages[0].Figures)
	assert.False(t, doc.Pages[0].HasSignificantText)
}
