package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"docwave/internal/appdirs"
	"docwave/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cliOptions carries the parsed command line.
type cliOptions struct {
	pdfPath      string
	textPath     string
	imagesDir    string
	title        string
	musicPath    string
	mode         string
	deckPDF      bool
	noVideo      bool
	batchDir     string
	batchWorkers int
}

// parseFlags returns the run options, or handled=true with an exit
// code when the invocation only asked for version/diagnostics.
func parseFlags() (opts cliOptions, handled bool, exitCode int) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	showVersion := flags.Bool("version", false, "print version information")
	showDiagnose := flags.Bool("diagnose", false, "print runtime diagnostics")

	flags.StringVar(&opts.pdfPath, "pdf", "", "input PDF document")
	flags.StringVar(&opts.textPath, "text", "", "input plain text file")
	flags.StringVar(&opts.imagesDir, "images", "", "directory of images to attach (text input only)")
	flags.StringVar(&opts.title, "title", "", "title override (defaults to the input file name)")
	flags.StringVar(&opts.musicPath, "music", "", "background music file")
	flags.StringVar(&opts.mode, "mode", "video", "pipeline to run: video or presentation")
	flags.BoolVar(&opts.deckPDF, "deck-pdf", false, "presentation mode: also write a PDF handout")
	flags.BoolVar(&opts.noVideo, "no-video", false, "presentation mode: skip the MP4 render")
	flags.StringVar(&opts.batchDir, "batch", "", "render a video for every PDF and text file in a directory")
	flags.IntVar(&opts.batchWorkers, "batch-workers", 1, "batch mode: documents rendered in parallel")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return opts, true, 2
	}

	if *showVersion || *showDiagnose {
		if *showVersion {
			printVersion()
		}
		if *showDiagnose {
			if *showVersion {
				fmt.Println()
			}
			printDiagnose()
		}
		return opts, true, 0
	}

	return opts, false, 0
}

func printVersion() {
	fmt.Printf("version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
}

func printDiagnose() {
	fmt.Printf("runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("version: %s\n", version)
	fmt.Printf("commit: %s\n", commit)
	fmt.Printf("date: %s\n", date)

	if wd, err := os.Getwd(); err == nil {
		fmt.Printf("working_dir: %s\n", wd)
	} else {
		fmt.Printf("working_dir: <error: %v>\n", err)
	}

	if exePath, err := os.Executable(); err == nil {
		fmt.Printf("executable: %s\n", exePath)
	} else {
		fmt.Printf("executable: <error: %v>\n", err)
	}

	if paths, err := appdirs.Resolve(); err == nil {
		printPath("config", paths.ConfigFile)
		printPath("output", appdirs.RenderRootFor(paths))
		printPath("jobs", appdirs.JobRootFor(paths))
		printPath("cache", appdirs.AssetCacheFor(paths))
	} else {
		fmt.Printf("path.resolve: <error: %v>\n", err)
	}

	if logDir, err := log.ResolveLogDir(); err == nil {
		printPath("effective_log_dir", logDir)
	} else {
		fmt.Printf("path.effective_log_dir: <error: %v>\n", err)
	}

	for _, tool := range []string{"ffmpeg", "ffprobe", "pdftoppm", "pdftotext", "pdfimages"} {
		if toolPath, err := exec.LookPath(tool); err == nil {
			fmt.Printf("dependency.%s: found (%s)\n", tool, toolPath)
		} else {
			fmt.Printf("dependency.%s: missing (%v)\n", tool, err)
		}
	}
}

func printPath(name, value string) {
	if _, err := os.Stat(value); err == nil {
		fmt.Printf("path.%s: %s (exists)\n", name, value)
		return
	} else if os.IsNotExist(err) {
		fmt.Printf("path.%s: %s (missing)\n", name, value)
		return
	} else {
		fmt.Printf("path.%s: %s (error=%v)\n", name, value, err)
	}
}
