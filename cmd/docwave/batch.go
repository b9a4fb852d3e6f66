package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"docwave/internal/taskrunner"
	"docwave/log"
)

// collectBatchFiles lists the renderable documents in dir, sorted by name.
func collectBatchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".txt":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// runBatch renders a video per document and returns the process exit code.
func runBatch(gen taskrunner.Generator, opts cliOptions) int {
	files, err := collectBatchFiles(opts.batchDir)
	if err != nil {
		log.GetLogger().Error("reading batch directory failed", zap.Error(err))
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no PDF or text files found in %s\n", opts.batchDir)
		return 1
	}

	runner := taskrunner.New(gen, taskrunner.Config{
		QueueSize:   len(files),
		Concurrency: opts.batchWorkers,
	})

	loadFailures := int64(0)
	for _, file := range files {
		fileOpts := cliOptions{musicPath: opts.musicPath}
		if strings.EqualFold(filepath.Ext(file), ".pdf") {
			fileOpts.pdfPath = file
		} else {
			fileOpts.textPath = file
		}

		input, loadErr := loadContent(fileOpts)
		if loadErr != nil {
			loadFailures++
			log.GetLogger().Error("loading batch document failed",
				zap.String("file", file),
				zap.Error(loadErr))
			continue
		}

		name := filepath.Base(file)
		if submitErr := runner.Submit(taskrunner.Job{
			ID:        name,
			Input:     input,
			MusicPath: opts.musicPath,
			Progress: func(step string, fraction float64) {
				fmt.Printf("[%s] [%3.0f%%] %s\n", name, fraction*100, step)
			},
		}); submitErr != nil {
			loadFailures++
			log.GetLogger().Error("submitting batch document failed",
				zap.String("file", file),
				zap.Error(submitErr))
		}
	}

	succeeded, failed := runner.Drain()
	failed += loadFailures

	fmt.Printf("batch finished: %d succeeded, %d failed\n", succeeded, failed)
	if failed > 0 {
		return 1
	}
	return 0
}
