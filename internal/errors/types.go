package errors

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeFormat     ErrorType = "format"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// ProsemarkError is a structured error type with context.
type ProsemarkError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
	NodeID   string
	FilePath string
	Line     int
}

// Error implements the error interface.
func (e *ProsemarkError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.NodeID != "" {
		parts = append(parts, "node:"+e.NodeID)
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ProsemarkError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison on type and code, so sentinels such as
// NodeNotFound match any error built by ErrNodeNotFound.
func (e *ProsemarkError) Is(target error) bool {
	var t *ProsemarkError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ProsemarkError) WithContext(key string, value interface{}) *ProsemarkError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *ProsemarkError) WithLocation(filePath string, line int) *ProsemarkError {
	e.FilePath = filePath
	e.Line = line

	return e
}

// WithNode adds node context.
func (e *ProsemarkError) WithNode(nodeID string) *ProsemarkError {
	e.NodeID = nodeID

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *ProsemarkError {
	return &ProsemarkError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *ProsemarkError {
	return &ProsemarkError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *ProsemarkError {
	return &ProsemarkError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewFormatError creates an error for malformed project files.
func NewFormatError(code, message string, cause error) *ProsemarkError {
	return &ProsemarkError{
		Type:    ErrorTypeFormat,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ProsemarkError {
	return &ProsemarkError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ProsemarkError {
	return &ProsemarkError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsNotFound checks if an error reports a missing node or file.
func IsNotFound(err error) bool {
	var te *ProsemarkError
	if errors.As(err, &te) {
		return te.Type == ErrorTypeNotFound
	}

	return false
}

// IsValidation checks if an error is a validation failure.
func IsValidation(err error) bool {
	var te *ProsemarkError
	if errors.As(err, &te) {
		return te.Type == ErrorTypeValidation
	}

	return false
}

// IsConfigError checks if an error is configuration related.
func IsConfigError(err error) bool {
	var te *ProsemarkError
	if errors.As(err, &te) {
		return te.Type == ErrorTypeConfig
	}

	return false
}

// ErrorHandler records the structured details of errors that reach the
// command boundary. Commands print a short message for the user; the
// handler keeps type, code, node and location for --log-level debug.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err with every detail it carries.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var te *ProsemarkError
	if !errors.As(err, &te) {
		h.logger.Debug(ctx, "Unclassified error", "error", err.Error())
		return
	}

	fields := []interface{}{
		"error", err.Error(),
		"type", string(te.Type),
		"code", te.Code,
	}
	if te.NodeID != "" {
		fields = append(fields, "node", te.NodeID)
	}
	if te.FilePath != "" {
		fields = append(fields, "file", te.FilePath)
	}
	if te.Line > 0 {
		fields = append(fields, "line", te.Line)
	}
	for _, k := range slices.Sorted(maps.Keys(te.Context)) {
		fields = append(fields, k, te.Context[k])
	}

	h.logger.Debug(ctx, "Error details", fields...)
}

// Common error codes.
const (
	ErrCodeInvalidNodeID      = "ERR_INVALID_NODE_ID"
	ErrCodeNodeNotFound       = "ERR_NODE_NOT_FOUND"
	ErrCodeInvalidPath        = "ERR_INVALID_PATH"
	ErrCodePathTraversal      = "ERR_PATH_TRAVERSAL"
	ErrCodeBinderNotFound     = "ERR_BINDER_NOT_FOUND"
	ErrCodeBinderInvalid      = "ERR_BINDER_INVALID"
	ErrCodeNodeExists         = "ERR_NODE_EXISTS"
	ErrCodeFrontmatterInvalid = "ERR_FRONTMATTER_INVALID"
	ErrCodeFileRead           = "ERR_FILE_READ"
	ErrCodeFileWrite          = "ERR_FILE_WRITE"
	ErrCodeCompileFailed      = "ERR_COMPILE_FAILED"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// NodeNotFound matches, via errors.Is, every error produced by
// ErrNodeNotFound regardless of which node it names.
var NodeNotFound = &ProsemarkError{Type: ErrorTypeNotFound, Code: ErrCodeNodeNotFound}

// Helper functions for common errors

// ErrNodeNotFound creates a node not found error.
func ErrNodeNotFound(nodeID string) *ProsemarkError {
	return NewNotFoundError(ErrCodeNodeNotFound, "node not found").WithNode(nodeID)
}

// ErrInvalidNodeID creates a node identity validation error.
func ErrInvalidNodeID(value, reason string) *ProsemarkError {
	return NewValidationError(ErrCodeInvalidNodeID, reason).WithContext("value", value)
}

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *ProsemarkError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}

// ErrPathTraversal creates a path traversal validation error.
func ErrPathTraversal(path string) *ProsemarkError {
	return NewValidationError(ErrCodePathTraversal, "path traversal attempt: "+path)
}
