// Package errors provides structured error handling for the chunking engine
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the broad category of an error
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeParse       ErrorType = "parse"
	ErrorTypeEnhancement ErrorType = "enhancement"
	ErrorTypePipeline    ErrorType = "pipeline"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeInternal    ErrorType = "internal"
)

// ErrorCode represents specific error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Chunking pipeline errors
	ErrCodeStructureParse    ErrorCode = "STRUCTURE_PARSE_ERROR"
	ErrCodeVisualEnhancement ErrorCode = "VISUAL_ENHANCEMENT_ERROR"
	ErrCodePipeline          ErrorCode = "PIPELINE_ERROR"

	// Configuration errors
	ErrCodeConfigError    ErrorCode = "CONFIG_ERROR"
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// File system errors
	ErrCodeFileError    ErrorCode = "FILE_ERROR"
	ErrCodeFileNotFound ErrorCode = "FILE_NOT_FOUND"

	// System errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ChunkingError represents a structured error in the chunking engine
type ChunkingError struct {
	Type       ErrorType              `json:"type"`
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	JobID      string                 `json:"job_id,omitempty"`
}

// Error implements the error interface
func (e *ChunkingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ChunkingError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ChunkingError) WithDetail(key string, value interface{}) *ChunkingError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithJobID adds a chunking job ID to the error
func (e *ChunkingError) WithJobID(jobID string) *ChunkingError {
	e.JobID = jobID
	return e
}

// WithStackTrace adds a stack trace to the error
func (e *ChunkingError) WithStackTrace() *ChunkingError {
	e.StackTrace = getStackTrace()
	return e
}

// NewChunkingError creates a new chunking error
func NewChunkingError(errType ErrorType, code ErrorCode, message string) *ChunkingError {
	return &ChunkingError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// NewChunkingErrorWithCause creates a new chunking error with a cause
func NewChunkingErrorWithCause(errType ErrorType, code ErrorCode, message string, cause error) *ChunkingError {
	return &ChunkingError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Validation error constructors
func NewValidationError(message string) *ChunkingError {
	return NewChunkingError(ErrorTypeValidation, ErrCodeValidation, message)
}

func NewInvalidInputError(message string) *ChunkingError {
	return NewChunkingError(ErrorTypeValidation, ErrCodeInvalidInput, message)
}

func NewMissingFieldError(field string) *ChunkingError {
	return NewChunkingError(ErrorTypeValidation, ErrCodeMissingField,
		fmt.Sprintf("missing required field: %s", field)).WithDetail("field", field)
}

func NewInvalidFormatError(field, expectedFormat string) *ChunkingError {
	return NewChunkingError(ErrorTypeValidation, ErrCodeInvalidFormat,
		fmt.Sprintf("invalid format for field %s, expected: %s", field, expectedFormat)).
		WithDetail("field", field).WithDetail("expected_format", expectedFormat)
}

// Pipeline error constructors

// NewStructureParseError reports a format-specific parse failure. The parser
// recovers by falling back to flat splitting, so this never reaches callers.
func NewStructureParseError(documentType string, cause error) *ChunkingError {
	return NewChunkingErrorWithCause(ErrorTypeParse, ErrCodeStructureParse,
		fmt.Sprintf("failed to parse %s document structure", documentType), cause).
		WithDetail("document_type", documentType)
}

// NewVisualEnhancementError reports malformed metadata on a single visual
// element. The affected visual is skipped; the pipeline continues.
func NewVisualEnhancementError(visualID string, cause error) *ChunkingError {
	return NewChunkingErrorWithCause(ErrorTypeEnhancement, ErrCodeVisualEnhancement,
		fmt.Sprintf("failed to evaluate visual element: %s", visualID), cause).
		WithDetail("visual_id", visualID)
}

// NewPipelineError reports an unexpected failure during splitting or
// aggregation. The whole chunking call fails; no partial chunk list is returned.
func NewPipelineError(stage string, cause error) *ChunkingError {
	return NewChunkingErrorWithCause(ErrorTypePipeline, ErrCodePipeline,
		fmt.Sprintf("chunking pipeline failed at stage: %s", stage), cause).
		WithDetail("stage", stage)
}

// Configuration error constructors
func NewConfigError(message string) *ChunkingError {
	return NewChunkingError(ErrorTypeValidation, ErrCodeConfigError, message)
}

func NewConfigNotFoundError(configPath string) *ChunkingError {
	return NewChunkingError(ErrorTypeNotFound, ErrCodeConfigNotFound,
		fmt.Sprintf("configuration file not found: %s", configPath)).WithDetail("config_path", configPath)
}

func NewConfigInvalidError(message string) *ChunkingError {
	return NewChunkingError(ErrorTypeValidation, ErrCodeConfigInvalid, message)
}

// File system error constructors
func NewFileError(message string) *ChunkingError {
	return NewChunkingError(ErrorTypeInternal, ErrCodeFileError, message)
}

func NewFileNotFoundError(filePath string) *ChunkingError {
	return NewChunkingError(ErrorTypeNotFound, ErrCodeFileNotFound,
		fmt.Sprintf("file not found: %s", filePath)).WithDetail("file_path", filePath)
}

// System error constructors
func NewInternalError(message string) *ChunkingError {
	return NewChunkingError(ErrorTypeInternal, ErrCodeInternal, message)
}

func NewInternalErrorWithCause(message string, cause error) *ChunkingError {
	return NewChunkingErrorWithCause(ErrorTypeInternal, ErrCodeInternal, message, cause)
}

// Helper functions
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var trace strings.Builder
	for {
		frame, more := frames.Next()
		if !more {
			break
		}
		trace.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
	}

	return trace.String()
}

// IsChunkingError checks if an error is a ChunkingError
func IsChunkingError(err error) bool {
	_, ok := err.(*ChunkingError)
	return ok
}

// GetChunkingError extracts a ChunkingError from an error
func GetChunkingError(err error) *ChunkingError {
	if chunkErr, ok := err.(*ChunkingError); ok {
		return chunkErr
	}
	return nil
}

// hasCode reports whether err is a ChunkingError carrying the given code
func hasCode(err error, code ErrorCode) bool {
	chunkErr := GetChunkingError(err)
	return chunkErr != nil && chunkErr.Code == code
}

// IsStructureParseError checks for a structure parse failure
func IsStructureParseError(err error) bool {
	return hasCode(err, ErrCodeStructureParse)
}

// IsVisualEnhancementError checks for a per-visual enhancement failure
func IsVisualEnhancementError(err error) bool {
	return hasCode(err, ErrCodeVisualEnhancement)
}

// IsPipelineError checks for a pipeline failure
func IsPipelineError(err error) bool {
	return hasCode(err, ErrCodePipeline)
}

// WrapError wraps an error as a ChunkingError
func WrapError(err error, errType ErrorType, code ErrorCode, message string) *ChunkingError {
	return NewChunkingErrorWithCause(errType, code, message, err)
}

// ErrorList represents a list of errors
type ErrorList struct {
	Errors []*ChunkingError `json:"errors"`
}

// Error implements the error interface
func (el *ErrorList) Error() string {
	var messages []string
	for _, err := range el.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Add adds an error to the list
func (el *ErrorList) Add(err *ChunkingError) {
	el.Errors = append(el.Errors, err)
}

// HasErrors returns true if there are errors
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// ToError returns the ErrorList as an error if it has errors, otherwise nil
func (el *ErrorList) ToError() error {
	if el.HasErrors() {
		return el
	}
	return nil
}

// NewErrorList creates a new error list
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*ChunkingError, 0),
	}
}

// Collect collects multiple errors into an ErrorList
func Collect(errors ...*ChunkingError) *ErrorList {
	el := NewErrorList()
	for _, err := range errors {
		if err != nil {
			el.Add(err)
		}
	}
	return el
}
