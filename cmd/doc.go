// Package cmd provides the command-line interface for pmk.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - wc: Count words in the whole binder or in one subtree
//   - config: Show or validate the resolved configuration
//   - version: Show build information
//
// # Command Examples
//
//	// Count the whole manuscript
//	pmk wc
//
//	// Count one part, including empty nodes, as JSON
//	pmk wc 0192f0c1-2345-7123-8abc-def012345678 --include-empty --format json
//
//	// Keep a running count while drafting
//	pmk wc --watch --metrics-file /var/lib/node_exporter/pmk.prom
//
// # Configuration System
//
// Values are resolved from, highest priority first:
//  1. Command-line flags (--path, --format, --log-level, ...)
//  2. PMK_* environment variables (PMK_PROJECT_PATH, PMK_WORDCOUNT_FORMAT, ...)
//  3. A .env file in the working directory (never overrides the environment)
//  4. The configuration file: --config, PMK_CONFIG_FILE, or .prosemark.yml
//  5. Built-in defaults
//
// # Exit Codes
//
// Commands exit 0 on success and 1 on any failure. wc always prints a count
// on stdout, 0 when it fails, so that scripts can read a number either way.
package cmd
