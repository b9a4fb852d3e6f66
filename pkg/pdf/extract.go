// Package pdf turns a PDF into per-page renders, embedded figures and
// plain text using the poppler command line tools.
package pdf

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"

	"docwave/internal/storage"
	"docwave/log"
	"docwave/pkg/errors"
)

const (
	rasterDPI = 200

	// Embedded figures smaller than this are icons and bullets, not
	// content worth featuring in a scene.
	minFigureEdge = 50

	// Small figures get upscaled so downstream crops stay sharp.
	minFigureWidth = 1280
)

// Page holds everything extracted from a single PDF page.
type Page struct {
	PageNumber           int
	Text                 string
	Render               image.Image
	Figures              []image.Image
	HasSignificantText   bool
	HasSignificantImages bool
}

// Document is the complete extracted PDF.
type Document struct {
	Title      string
	Pages      []Page
	TotalPages int
}

var toolRunner = func(bin string, args ...string) ([]byte, error) {
	return exec.Command(bin, args...).CombinedOutput()
}

// Extract rasterizes every page of pdfPath into workDir and collects
// per-page text and embedded figures when the optional poppler tools
// are available. It fails when the PDF yields no pages at all.
func Extract(pdfPath, workDir string) (*Document, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, errors.Wrap(errors.CodeFileNotFound, "PDF file not found", err)
	}

	renders, err := rasterizePages(pdfPath, workDir)
	if err != nil {
		return nil, err
	}
	if len(renders) == 0 {
		return nil, errors.New(errors.CodeEmptyDocument, "PDF produced no pages")
	}

	figuresByPage := extractFigures(pdfPath, workDir)

	doc := &Document{
		Title:      strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath)),
		TotalPages: len(renders),
	}
	for i, render := range renders {
		pageNumber := i + 1
		text := extractPageText(pdfPath, workDir, pageNumber)
		figures := figuresByPage[pageNumber]
		doc.Pages = append(doc.Pages, Page{
			PageNumber:           pageNumber,
			Text:                 text,
			Render:               render,
			Figures:              figures,
			HasSignificantText:   len(text) > 20,
			HasSignificantImages: len(figures) > 0,
		})
	}

	log.GetLogger().Info("PDF extracted",
		zap.String("path", pdfPath),
		zap.Int("pages", doc.TotalPages))
	return doc, nil
}

var pageFileNumberRe = regexp.MustCompile(`-(\d+)\.\w+$`)

func rasterizePages(pdfPath, workDir string) ([]image.Image, error) {
	prefix := filepath.Join(workDir, "page")
	args := []string{"-jpeg", "-r", strconv.Itoa(rasterDPI), pdfPath, prefix}
	if output, err := toolRunner(storage.PdftoppmPath, args...); err != nil {
		log.GetLogger().Error("pdftoppm failed",
			zap.String("path", pdfPath),
			zap.String("output", string(output)),
			zap.Error(err))
		return nil, errors.Wrap(errors.CodePDFExtractError, "failed to rasterize PDF pages", err)
	}

	matches, err := filepath.Glob(prefix + "-*.jpg")
	if err != nil {
		return nil, errors.Wrap(errors.CodePDFExtractError, "failed to list rasterized pages", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		return pageFileNumber(matches[i]) < pageFileNumber(matches[j])
	})

	renders := make([]image.Image, 0, len(matches))
	for _, match := range matches {
		img, err := decodeImageFile(match)
		if err != nil {
			return nil, err
		}
		renders = append(renders, img)
	}
	return renders, nil
}

func pageFileNumber(path string) int {
	groups := pageFileNumberRe.FindStringSubmatch(path)
	if len(groups) != 2 {
		return 0
	}
	n, _ := strconv.Atoi(groups[1])
	return n
}

// extractPageText pulls the plain text of a single page. Missing
// pdftotext degrades to empty narration sources, never an error.
func extractPageText(pdfPath, workDir string, pageNumber int) string {
	if storage.PdftotextPath == "" {
		return ""
	}

	outPath := filepath.Join(workDir, fmt.Sprintf("page_%03d.txt", pageNumber))
	pageArg := strconv.Itoa(pageNumber)
	args := []string{"-f", pageArg, "-l", pageArg, "-layout", pdfPath, outPath}
	if output, err := toolRunner(storage.PdftotextPath, args...); err != nil {
		log.GetLogger().Warn("pdftotext failed, page text will be empty",
			zap.Int("page", pageNumber),
			zap.String("output", string(output)),
			zap.Error(err))
		return ""
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// figureFileRe matches pdfimages -p output: prefix-PPP-NNN.png.
var figureFileRe = regexp.MustCompile(`-(\d+)-(\d+)\.png$`)

// extractFigures pulls embedded images grouped by page number. The
// pdfimages tool is optional; without it scenes rely on page renders.
func extractFigures(pdfPath, workDir string) map[int][]image.Image {
	figures := make(map[int][]image.Image)
	if storage.PdfimagesPath == "" {
		return figures
	}

	prefix := filepath.Join(workDir, "figure")
	args := []string{"-png", "-p", pdfPath, prefix}
	if output, err := toolRunner(storage.PdfimagesPath, args...); err != nil {
		log.GetLogger().Warn("pdfimages failed, falling back to page renders only",
			zap.String("output", string(output)),
			zap.Error(err))
		return figures
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return figures
	}
	sort.Strings(matches)

	for _, match := range matches {
		groups := figureFileRe.FindStringSubmatch(match)
		if len(groups) != 3 {
			continue
		}
		pageNumber, _ := strconv.Atoi(groups[1])
		img, err := decodeImageFile(match)
		if err != nil {
			log.GetLogger().Warn("skipping undecodable embedded figure",
				zap.String("file", match),
				zap.Error(err))
			continue
		}
		bounds := img.Bounds()
		if bounds.Dx() < minFigureEdge || bounds.Dy() < minFigureEdge {
			continue
		}
		figures[pageNumber] = append(figures[pageNumber], upscaleFigure(img))
	}
	return figures
}

// upscaleFigure enlarges small figures so later crops and insets do
// not pixelate.
func upscaleFigure(img image.Image) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() >= minFigureWidth {
		return img
	}
	scale := float64(minFigureWidth) / float64(bounds.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, minFigureWidth, int(float64(bounds.Dy())*scale)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

func decodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeImageDecode, "failed to open image file", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.WrapWithDetail(errors.CodeImageDecode, "failed to decode image", path, err)
	}
	return img, nil
}
