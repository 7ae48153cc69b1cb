package errors

import (
	"errors"
	"maps"
)

// Wrap wraps an error with additional context, creating a ProsemarkError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *ProsemarkError {
	if err == nil {
		return nil
	}

	// Keep node and location details from a wrapped ProsemarkError
	var te *ProsemarkError
	if errors.As(err, &te) {
		return &ProsemarkError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    te,
			Context:  maps.Clone(te.Context),
			NodeID:   te.NodeID,
			FilePath: te.FilePath,
			Line:     te.Line,
		}
	}

	return &ProsemarkError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps a filesystem error with the path it concerns.
func WrapIO(err error, code, message, path string) *ProsemarkError {
	pe := Wrap(err, ErrorTypeIO, code, message)
	if pe != nil {
		pe.FilePath = path
	}
	return pe
}

// WrapFormat wraps a parse error for a project file.
func WrapFormat(err error, code, message, path string) *ProsemarkError {
	pe := Wrap(err, ErrorTypeFormat, code, message)
	if pe != nil {
		pe.FilePath = path
	}
	return pe
}

// GetErrorContext extracts context from a ProsemarkError
func GetErrorContext(err error) map[string]interface{} {
	var te *ProsemarkError
	if errors.As(err, &te) {
		return te.Context
	}
	return nil
}

// GetErrorCode extracts the error code from a ProsemarkError
func GetErrorCode(err error) string {
	var te *ProsemarkError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
