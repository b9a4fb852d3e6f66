// Package deck assembles rendered slide images into a PDF handout.
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"docwave/log"
	"docwave/pkg/errors"
)

// 16:9 page geometry in millimeters, one full-bleed slide per page.
const (
	pageWidthMm  = 338.7
	pageHeightMm = 190.5
)

// WritePDF lays each slide image on its own landscape page. Slide
// order follows the input order.
func WritePDF(slideImagePaths []string, outputPath string) error {
	if len(slideImagePaths) == 0 {
		return errors.New(errors.CodeInvalidParams, "no slide images to write")
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: pageWidthMm, Ht: pageHeightMm},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, path := range slideImagePaths {
		if _, err := os.Stat(path); err != nil {
			return errors.Wrap(errors.CodeFileNotFound, fmt.Sprintf("slide image %s", path), err)
		}
		imageType := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
		if imageType == "JPEG" {
			imageType = "JPG"
		}

		pdf.AddPage()
		pdf.ImageOptions(path, 0, 0, pageWidthMm, pageHeightMm, false,
			gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return errors.Wrap(errors.CodeFileWriteError, "write slide deck PDF", err)
	}

	log.GetLogger().Info("slide deck PDF written",
		zap.Int("slides", len(slideImagePaths)),
		zap.String("output", outputPath))
	return nil
}
