package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docwave/internal/content"
	"docwave/pkg/pdf"
)

// loadContent builds the pipeline input from the command line: either
// a PDF extraction or a text file with an optional image directory.
func loadContent(opts cliOptions) (*content.ContentInput, error) {
	if opts.pdfPath != "" {
		workDir, err := os.MkdirTemp("", "docwave_pdf_")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(workDir)

		doc, err := pdf.Extract(opts.pdfPath, workDir)
		if err != nil {
			return nil, err
		}
		if opts.title != "" {
			doc.Title = opts.title
		}
		return content.FromPDF(doc)
	}

	raw, err := os.ReadFile(opts.textPath)
	if err != nil {
		return nil, err
	}

	images, labels, err := loadImagesDir(opts.imagesDir)
	if err != nil {
		return nil, err
	}

	title := opts.title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(opts.textPath), filepath.Ext(opts.textPath))
	}
	return content.FromTextAndImages(title, string(raw), images, labels), nil
}

// loadImagesDir decodes every png/jpeg in dir, sorted by file name so
// pool indices are stable between runs.
func loadImagesDir(dir string) ([]image.Image, []string, error) {
	if dir == "" {
		return nil, nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var images []image.Image
	var labels []string
	for _, name := range names {
		file, openErr := os.Open(filepath.Join(dir, name))
		if openErr != nil {
			return nil, nil, openErr
		}
		img, _, decodeErr := image.Decode(file)
		file.Close()
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", name, decodeErr)
		}
		images = append(images, img)
		labels = append(labels, name)
	}
	return images, labels, nil
}
