// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent reporting.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeCanceled      = 1003

	// Content input errors (1100-1199)
	CodeEmptyDocument   = 1100
	CodePDFExtractError = 1101
	CodeImageDecode     = 1102
	CodeUnsupportedFile = 1103

	// Image classification errors (1200-1299)
	CodeClassifyFailed  = 1200
	CodeClassifyTimeout = 1201

	// Script planning errors (1300-1399)
	CodeScriptFailed     = 1300
	CodeScriptUnparsable = 1301
	CodeLLMQuotaExceeded = 1302

	// TTS errors (1400-1499)
	CodeTTSFailed        = 1400
	CodeTTSQuotaExceeded = 1401
	CodeVoiceNotFound    = 1402

	// Image generation errors (1500-1599)
	CodeImageGenFailed   = 1500
	CodeImageFetchFailed = 1501

	// Composition errors (1600-1699)
	CodeCompositionFailed = 1600
	CodeNoScenes          = 1601
	CodeFontLoadFailed    = 1602

	// Export errors (1700-1799)
	CodeExportFailed   = 1700
	CodeEncoderProbe   = 1701
	CodeEncoderExit    = 1702
	CodeAudioMixFailed = 1703

	// Storage errors (1800-1899)
	CodeFileNotFound   = 1800
	CodeFileWriteError = 1801
	CodeWorkspaceError = 1802
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")

	// Content input
	ErrEmptyDocument   = New(CodeEmptyDocument, "Document has no usable content")
	ErrPDFExtract      = New(CodePDFExtractError, "PDF extraction failed")
	ErrUnsupportedFile = New(CodeUnsupportedFile, "Unsupported input file")

	// Classification
	ErrClassifyFailed = New(CodeClassifyFailed, "Image classification failed")

	// Script planning
	ErrScriptFailed     = New(CodeScriptFailed, "Script planning failed")
	ErrScriptUnparsable = New(CodeScriptUnparsable, "Script response is not valid JSON")
	ErrLLMQuotaExceeded = New(CodeLLMQuotaExceeded, "LLM quota exceeded")

	// TTS
	ErrTTSFailed        = New(CodeTTSFailed, "TTS failed")
	ErrTTSQuotaExceeded = New(CodeTTSQuotaExceeded, "TTS quota exceeded")
	ErrVoiceNotFound    = New(CodeVoiceNotFound, "Voice not found")

	// Image generation
	ErrImageGenFailed   = New(CodeImageGenFailed, "Image generation failed")
	ErrImageFetchFailed = New(CodeImageFetchFailed, "Generated image download failed")

	// Composition
	ErrNoScenes       = New(CodeNoScenes, "Script contains no scenes")
	ErrFontLoadFailed = New(CodeFontLoadFailed, "No usable font found")

	// Export
	ErrExportFailed = New(CodeExportFailed, "Video export failed")
	ErrEncoderProbe = New(CodeEncoderProbe, "Encoder probe failed")

	// Storage
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
)
