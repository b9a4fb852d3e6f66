package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"docwave/config"
	"docwave/internal/deps"
	"docwave/internal/service"
	"docwave/log"
)

func main() {
	opts, handled, exitCode := parseFlags()
	if handled {
		os.Exit(exitCode)
	}

	log.InitLogger()
	defer log.GetLogger().Sync()

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("loading configuration failed", zap.Error(err))
		os.Exit(1)
	}
	if created {
		path, _ := config.ResolveConfigPath()
		fmt.Printf("A default configuration was written to %s.\nFill in llm.api_key and run again.\n", path)
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("configuration is invalid", zap.Error(err))
		os.Exit(1)
	}

	if opts.batchDir != "" {
		if opts.pdfPath != "" || opts.textPath != "" {
			fmt.Fprintln(os.Stderr, "-batch cannot be combined with -pdf or -text")
			os.Exit(2)
		}
		if err = deps.CheckDependency(true); err != nil {
			log.GetLogger().Error("external tools are missing", zap.Error(err))
			os.Exit(1)
		}
		os.Exit(runBatch(service.NewService(), opts))
	}

	if opts.pdfPath == "" && opts.textPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -pdf, -text or -batch (see -help)")
		os.Exit(2)
	}
	if opts.pdfPath != "" && opts.textPath != "" {
		fmt.Fprintln(os.Stderr, "pass either -pdf or -text, not both")
		os.Exit(2)
	}

	if err = deps.CheckDependency(opts.pdfPath != ""); err != nil {
		log.GetLogger().Error("external tools are missing", zap.Error(err))
		os.Exit(1)
	}

	input, err := loadContent(opts)
	if err != nil {
		log.GetLogger().Error("loading input content failed", zap.Error(err))
		os.Exit(1)
	}

	svc := service.NewService()
	ctx := context.Background()
	progress := printProgress

	switch opts.mode {
	case "video":
		videoPath, runErr := svc.GenerateVideo(ctx, input, opts.musicPath, progress)
		if runErr != nil {
			log.GetLogger().Error("video generation failed", zap.Error(runErr))
			os.Exit(1)
		}
		fmt.Printf("video written to %s\n", videoPath)

	case "presentation":
		result, runErr := svc.GeneratePresentation(ctx, input, opts.musicPath, !opts.noVideo, opts.deckPDF, progress)
		if runErr != nil {
			log.GetLogger().Error("presentation generation failed", zap.Error(runErr))
			os.Exit(1)
		}
		if result.VideoPath != "" {
			fmt.Printf("video written to %s\n", result.VideoPath)
		}
		if result.PDFPath != "" {
			fmt.Printf("PDF handout written to %s\n", result.PDFPath)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q: expected video or presentation\n", opts.mode)
		os.Exit(2)
	}
}

func printProgress(step string, fraction float64) {
	fmt.Printf("[%3.0f%%] %s\n", fraction*100, step)
}
