package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/logging"
)

var (
	outputFormats = []string{"text", "json"}
	logFormats    = []string{"text", "json"}
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder
	for i, err := range vr.Errors {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(err.Field)
		builder.WriteString(": ")
		builder.WriteString(err.Message)
	}
	return builder.String()
}

func (vr *ValidationResult) add(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{
		Field:       field,
		Value:       value,
		Message:     msg,
		Suggestions: suggestions,
	})
}

// ValidateConfigWithDetails checks every section and reports all problems.
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{}

	if err := validatePath(config.Project.Path); err != nil {
		result.add("project.path", config.Project.Path, err.Error(),
			"Point --path at the directory holding _binder.md")
	}

	if config.WordCount.CacheSize < 0 {
		result.add("wordcount.cache_size", config.WordCount.CacheSize,
			fmt.Sprintf("cache size %d is negative", config.WordCount.CacheSize),
			"Use 0 to disable caching")
	}
	if !slices.Contains(outputFormats, config.WordCount.Format) {
		result.add("wordcount.format", config.WordCount.Format,
			fmt.Sprintf("unknown output format %q", config.WordCount.Format),
			"Available formats: "+strings.Join(outputFormats, ", "))
	}

	if config.Watch.Debounce <= 0 {
		result.add("watch.debounce", config.Watch.Debounce, "debounce must be positive",
			"Use a duration such as 300ms")
	}
	for _, ext := range config.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, `/\`) {
			result.add("watch.extensions", ext, fmt.Sprintf("invalid extension %q", ext),
				"Extensions start with a dot, for example .md")
		}
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		result.add("log.level", config.Log.Level, err.Error(),
			"Available levels: debug, info, warn, error")
	}
	if !slices.Contains(logFormats, config.Log.Format) {
		result.add("log.format", config.Log.Format,
			fmt.Sprintf("unknown log format %q", config.Log.Format),
			"Available formats: "+strings.Join(logFormats, ", "))
	}

	if config.Metrics.File != "" {
		if err := validatePath(config.Metrics.File); err != nil {
			result.add("metrics.file", config.Metrics.File, err.Error())
		} else if filepath.Ext(config.Metrics.File) != ".prom" {
			result.add("metrics.file", config.Metrics.File, "metrics file must end in .prom",
				"The node_exporter textfile collector only reads *.prom files")
		}
	}

	result.Valid = !result.HasErrors()
	return result
}

// validateConfig returns a config error describing every problem found.
func validateConfig(config *Config) error {
	result := ValidateConfigWithDetails(config)
	if result.Valid {
		return nil
	}

	err := errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid configuration: "+result.String())
	fields := make([]string, 0, len(result.Errors))
	for _, ve := range result.Errors {
		fields = append(fields, ve.Field)
	}
	return err.WithContext("fields", fields)
}

// validatePath rejects paths the filesystem cannot open. Relative paths,
// including ones that climb with .., are resolved against the working
// directory like any other CLI argument.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a NUL byte")
	}
	return nil
}
