package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Output formats shared by wc and version.
const (
	formatText = "text"
	formatJSON = "json"
)

// enumValue is a string flag restricted to a fixed set of values, so a typo
// fails at parse time with the allowed values in the message.
type enumValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(def string, allowed ...string) *enumValue {
	return &enumValue{value: def, allowed: allowed}
}

func (e *enumValue) String() string {
	return e.value
}

func (e *enumValue) Set(val string) error {
	val = strings.ToLower(strings.TrimSpace(val))
	for _, a := range e.allowed {
		if val == a {
			e.value = val
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(e.allowed, ", "))
}

func (e *enumValue) Type() string {
	return strings.Join(e.allowed, "|")
}

// addFormatFlag registers --format/-f as a text|json enum.
func addFormatFlag(cmd *cobra.Command) *enumValue {
	v := newEnumValue(formatText, formatText, formatJSON)
	cmd.Flags().VarP(v, "format", "f", "Output format (text, json)")
	return v
}
