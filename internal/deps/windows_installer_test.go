package deps

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"docwave/internal/storage"
)

func TestInstallWindowsDependencyWithZipPackage(t *testing.T) {
	originalFfmpegPath := storage.FfmpegPath
	originalFfprobePath := storage.FfprobePath
	t.Cleanup(func() {
		storage.FfmpegPath = originalFfmpegPath
		storage.FfprobePath = originalFfprobePath
	})

	archiveBytes := mustBuildZipArchive(t, map[string][]byte{
		"ffmpeg-build/bin/ffmpeg.exe":  []byte("fake-ffmpeg-binary"),
		"ffmpeg-build/bin/ffprobe.exe": []byte("fake-ffprobe-binary"),
		"ffmpeg-build/doc/readme.txt":  []byte("not-needed"),
	})
	checksum := sha256Hex(archiveBytes)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/ffmpeg.zip" {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Content-Length", strconv.Itoa(len(archiveBytes)))
		_, _ = writer.Write(archiveBytes)
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	var progressStages []string
	err := installWindowsDependencyWithOptions(context.Background(), DependencyIDFFmpeg, windowsInstallerOptions{
		CacheDir:   cacheDir,
		HTTPClient: server.Client(),
		Packages: map[string]windowsPackageSpec{
			windowsPackageIDFFmpeg: {
				ID:      windowsPackageIDFFmpeg,
				Version: "test",
				URL:     server.URL + "/ffmpeg.zip",
				SHA256:  checksum,
				Format:  windowsPackageFormatZip,
				Tools: []windowsPackageTool{
					{ID: DependencyIDFFmpeg, Executable: "ffmpeg.exe"},
					{ID: DependencyIDFFprobe, Executable: "ffprobe.exe"},
				},
			},
		},
		ToolToPackage: map[string]string{
			DependencyIDFFmpeg:  windowsPackageIDFFmpeg,
			DependencyIDFFprobe: windowsPackageIDFFmpeg,
		},
		Progress: func(progress InstallProgress) {
			progressStages = append(progressStages, progress.Stage)
		},
	})
	if err != nil {
		t.Fatalf("installWindowsDependencyWithOptions() error = %v", err)
	}

	ffmpegPath := filepath.Join(cacheDir, "bin", "ffmpeg", "ffmpeg.exe")
	ffprobePath := filepath.Join(cacheDir, "bin", "ffprobe", "ffprobe.exe")

	ffmpegData, err := os.ReadFile(ffmpegPath)
	if err != nil {
		t.Fatalf("os.ReadFile(%q) error = %v", ffmpegPath, err)
	}
	ffprobeData, err := os.ReadFile(ffprobePath)
	if err != nil {
		t.Fatalf("os.ReadFile(%q) error = %v", ffprobePath, err)
	}

	if string(ffmpegData) != "fake-ffmpeg-binary" {
		t.Fatalf("ffmpeg content = %q, want %q", string(ffmpegData), "fake-ffmpeg-binary")
	}
	if string(ffprobeData) != "fake-ffprobe-binary" {
		t.Fatalf("ffprobe content = %q, want %q", string(ffprobeData), "fake-ffprobe-binary")
	}
	if storage.FfmpegPath != ffmpegPath {
		t.Fatalf("storage.FfmpegPath = %q, want %q", storage.FfmpegPath, ffmpegPath)
	}
	if storage.FfprobePath != ffprobePath {
		t.Fatalf("storage.FfprobePath = %q, want %q", storage.FfprobePath, ffprobePath)
	}

	if !containsProgressStage(progressStages, windowsInstallStageDownloading) {
		t.Fatalf("progress stages %v do not contain %q", progressStages, windowsInstallStageDownloading)
	}
	if !containsProgressStage(progressStages, windowsInstallStageDone) {
		t.Fatalf("progress stages %v do not contain %q", progressStages, windowsInstallStageDone)
	}
}

func TestInstallWindowsDependencyPopplerZip(t *testing.T) {
	originalPdftoppmPath := storage.PdftoppmPath
	originalPdftotextPath := storage.PdftotextPath
	t.Cleanup(func() {
		storage.PdftoppmPath = originalPdftoppmPath
		storage.PdftotextPath = originalPdftotextPath
	})

	archiveBytes := mustBuildZipArchive(t, map[string][]byte{
		"poppler/Library/bin/pdftoppm.exe":  []byte("fake-pdftoppm-binary"),
		"poppler/Library/bin/pdftotext.exe": []byte("fake-pdftotext-binary"),
		"poppler/share/readme.txt":          []byte("not-needed"),
	})
	checksum := sha256Hex(archiveBytes)

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/poppler.zip" {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Content-Length", strconv.Itoa(len(archiveBytes)))
		_, _ = writer.Write(archiveBytes)
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	err := installWindowsDependencyWithOptions(context.Background(), DependencyIDPdftoppm, windowsInstallerOptions{
		CacheDir:   cacheDir,
		HTTPClient: server.Client(),
		Packages: map[string]windowsPackageSpec{
			windowsPackageIDPoppler: {
				ID:      windowsPackageIDPoppler,
				Version: "test",
				URL:     server.URL + "/poppler.zip",
				SHA256:  checksum,
				Format:  windowsPackageFormatZip,
				Tools: []windowsPackageTool{
					{ID: DependencyIDPdftoppm, Executable: "pdftoppm.exe"},
					{ID: DependencyIDPdftotext, Executable: "pdftotext.exe"},
				},
			},
		},
		ToolToPackage: map[string]string{
			DependencyIDPdftoppm:  windowsPackageIDPoppler,
			DependencyIDPdftotext: windowsPackageIDPoppler,
		},
	})
	if err != nil {
		t.Fatalf("installWindowsDependencyWithOptions() error = %v", err)
	}

	pdftoppmPath := filepath.Join(cacheDir, "bin", "pdftoppm", "pdftoppm.exe")
	pdftotextPath := filepath.Join(cacheDir, "bin", "pdftotext", "pdftotext.exe")

	if storage.PdftoppmPath != pdftoppmPath {
		t.Fatalf("storage.PdftoppmPath = %q, want %q", storage.PdftoppmPath, pdftoppmPath)
	}
	if storage.PdftotextPath != pdftotextPath {
		t.Fatalf("storage.PdftotextPath = %q, want %q", storage.PdftotextPath, pdftotextPath)
	}

	pdftoppmData, err := os.ReadFile(pdftoppmPath)
	if err != nil {
		t.Fatalf("os.ReadFile(%q) error = %v", pdftoppmPath, err)
	}
	if string(pdftoppmData) != "fake-pdftoppm-binary" {
		t.Fatalf("pdftoppm content = %q, want %q", string(pdftoppmData), "fake-pdftoppm-binary")
	}
}

func TestInstallWindowsDependencyChecksumMismatch(t *testing.T) {
	archiveBytes := mustBuildZipArchive(t, map[string][]byte{
		"poppler/Library/bin/pdftoppm.exe": []byte("fake-binary"),
	})

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/poppler.zip" {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Content-Length", strconv.Itoa(len(archiveBytes)))
		_, _ = writer.Write(archiveBytes)
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	err := installWindowsDependencyWithOptions(context.Background(), DependencyIDPdftoppm, windowsInstallerOptions{
		CacheDir:   cacheDir,
		HTTPClient: server.Client(),
		Packages: map[string]windowsPackageSpec{
			windowsPackageIDPoppler: {
				ID:      windowsPackageIDPoppler,
				Version: "test",
				URL:     server.URL + "/poppler.zip",
				SHA256:  strings.Repeat("0", 64),
				Format:  windowsPackageFormatZip,
				Tools: []windowsPackageTool{
					{ID: DependencyIDPdftoppm, Executable: "pdftoppm.exe"},
				},
			},
		},
		ToolToPackage: map[string]string{
			DependencyIDPdftoppm: windowsPackageIDPoppler,
		},
	})
	if err == nil {
		t.Fatalf("installWindowsDependencyWithOptions() expected checksum error, got nil")
	}
	if !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("error = %q, want to contain %q", err.Error(), "checksum mismatch")
	}

	targetPath := filepath.Join(cacheDir, "bin", "pdftoppm", "pdftoppm.exe")
	if _, statErr := os.Stat(targetPath); !os.IsNotExist(statErr) {
		t.Fatalf("os.Stat(%q) error = %v, want not exists", targetPath, statErr)
	}
}

func TestInstallWindowsDependencyUnpinnedChecksumRecorded(t *testing.T) {
	originalPdftoppmPath := storage.PdftoppmPath
	t.Cleanup(func() {
		storage.PdftoppmPath = originalPdftoppmPath
	})

	archiveBytes := mustBuildZipArchive(t, map[string][]byte{
		"poppler/Library/bin/pdftoppm.exe": []byte("fake-pdftoppm-binary"),
	})

	servedBytes := archiveBytes
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/poppler.zip" {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Content-Length", strconv.Itoa(len(servedBytes)))
		_, _ = writer.Write(servedBytes)
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	options := windowsInstallerOptions{
		CacheDir:   cacheDir,
		HTTPClient: server.Client(),
		Packages: map[string]windowsPackageSpec{
			windowsPackageIDPoppler: {
				ID:      windowsPackageIDPoppler,
				Version: "test",
				URL:     server.URL + "/poppler.zip",
				SHA256:  "",
				Format:  windowsPackageFormatZip,
				Tools: []windowsPackageTool{
					{ID: DependencyIDPdftoppm, Executable: "pdftoppm.exe"},
				},
			},
		},
		ToolToPackage: map[string]string{
			DependencyIDPdftoppm: windowsPackageIDPoppler,
		},
	}

	if err := installWindowsDependencyWithOptions(context.Background(), DependencyIDPdftoppm, options); err != nil {
		t.Fatalf("installWindowsDependencyWithOptions() error = %v", err)
	}

	pinPath := filepath.Join(cacheDir, "bin", windowsPackageIDPoppler+"-test.sha256")
	recorded, err := os.ReadFile(pinPath)
	if err != nil {
		t.Fatalf("os.ReadFile(%q) error = %v", pinPath, err)
	}
	if got, want := strings.TrimSpace(string(recorded)), sha256Hex(archiveBytes); got != want {
		t.Fatalf("recorded checksum = %q, want %q", got, want)
	}

	// a tampered archive must be rejected on reinstall
	if err = os.RemoveAll(filepath.Join(cacheDir, "bin", "pdftoppm")); err != nil {
		t.Fatalf("os.RemoveAll() error = %v", err)
	}
	servedBytes = mustBuildZipArchive(t, map[string][]byte{
		"poppler/Library/bin/pdftoppm.exe": []byte("tampered-binary"),
	})

	err = installWindowsDependencyWithOptions(context.Background(), DependencyIDPdftoppm, options)
	if err == nil {
		t.Fatalf("installWindowsDependencyWithOptions() expected checksum error, got nil")
	}
	if !strings.Contains(err.Error(), "checksum mismatch") {
		t.Fatalf("error = %q, want to contain %q", err.Error(), "checksum mismatch")
	}
}

func mustBuildZipArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()

	var buffer bytes.Buffer
	zipWriter := zip.NewWriter(&buffer)

	for name, content := range files {
		entry, err := zipWriter.Create(name)
		if err != nil {
			t.Fatalf("zipWriter.Create(%q) error = %v", name, err)
		}
		if _, err = entry.Write(content); err != nil {
			t.Fatalf("entry.Write(%q) error = %v", name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		t.Fatalf("zipWriter.Close() error = %v", err)
	}

	return buffer.Bytes()
}

func sha256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func containsProgressStage(stages []string, target string) bool {
	for _, stage := range stages {
		if stage == target {
			return true
		}
	}
	return false
}
