package storage

// Resolved external tool paths. Filled by deps.CheckDependency at
// startup; empty string means the tool was not found.
var (
	FfmpegPath    string
	FfprobePath   string
	PdftoppmPath  string
	PdftotextPath string
	PdfimagesPath string
)
