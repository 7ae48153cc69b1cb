// Package types provides the value types shared across prosemark packages.
// Keeping them here avoids import cycles between the binder, the compiler,
// and the word count services.
package types

import (
	"strings"

	"github.com/google/uuid"

	"github.com/conneroisu/prosemark/internal/errors"
)

// NodeID identifies a node in a project. It is the canonical string form of a
// UUIDv7 and doubles as the node's file stem ({id}.md, {id}.notes.md).
type NodeID string

// ParseNodeID validates s as a UUIDv7 and returns it in canonical form.
func ParseNodeID(s string) (NodeID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.ErrInvalidNodeID(s, "node ID cannot be empty")
	}

	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", errors.ErrInvalidNodeID(s, "invalid UUID format")
	}

	if parsed.Version() != 7 {
		return "", errors.ErrInvalidNodeID(s, "node ID must be a UUIDv7").
			WithContext("version", int(parsed.Version()))
	}

	return NodeID(parsed.String()), nil
}

// MustParseNodeID is ParseNodeID for literals in tests and fixtures.
func MustParseNodeID(s string) NodeID {
	id, err := ParseNodeID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewNodeID generates a fresh time-ordered node identifier.
func NewNodeID() (NodeID, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeInternalError, "generate node ID", err)
	}
	return NodeID(u.String()), nil
}

// String returns the UUID string.
func (id NodeID) String() string {
	return string(id)
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ""
}

// DraftFile is the file holding the node's frontmatter and prose.
func (id NodeID) DraftFile() string {
	return string(id) + ".md"
}

// NotesFile is the companion notes file, never included in compilation.
func (id NodeID) NotesFile() string {
	return string(id) + ".notes.md"
}
