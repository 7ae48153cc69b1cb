package binder

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/types"
)

const filePerm = 0644

// BinderRepo loads and saves the binder of the project rooted at a directory.
type BinderRepo struct {
	root string
}

// NewBinderRepo creates a binder repository for the project at root.
func NewBinderRepo(root string) *BinderRepo {
	return &BinderRepo{root: root}
}

// Path is the binder file location.
func (r *BinderRepo) Path() string {
	return filepath.Join(r.root, FileName)
}

// Load reads and parses the binder. A missing file is a not-found error.
func (r *BinderRepo) Load(ctx context.Context) (*Binder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(errors.ErrCodeBinderNotFound, "binder not found").
				WithLocation(path, 0)
		}
		return nil, errors.WrapIO(err, errors.ErrCodeFileRead, "read binder", path)
	}

	b, err := Parse(string(data))
	if err != nil {
		return nil, errors.WrapFormat(err, errors.ErrCodeBinderInvalid, "parse binder", path)
	}

	return b, nil
}

// Save renders b and replaces the binder file atomically.
func (r *BinderRepo) Save(ctx context.Context, b *Binder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(r.Path(), b.Render())
}

// NodeRepo reads and creates node files in a project directory.
type NodeRepo struct {
	root string
	now  func() time.Time
}

// NewNodeRepo creates a node repository for the project at root.
func NewNodeRepo(root string) *NodeRepo {
	return &NodeRepo{root: root, now: time.Now}
}

// DraftPath is the location of a node's draft file.
func (r *NodeRepo) DraftPath(id types.NodeID) string {
	return filepath.Join(r.root, id.DraftFile())
}

// Exists reports whether the node's draft file is present.
func (r *NodeRepo) Exists(id types.NodeID) (bool, error) {
	_, err := os.Stat(r.DraftPath(id))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.WrapIO(err, errors.ErrCodeFileRead, "stat node", r.DraftPath(id)).
			WithNode(id.String())
	}
}

// Read returns the node's frontmatter and body. A missing draft file is
// reported as errors.NodeNotFound.
func (r *NodeRepo) Read(ctx context.Context, id types.NodeID) (Frontmatter, string, error) {
	if err := ctx.Err(); err != nil {
		return Frontmatter{}, "", err
	}

	path := r.DraftPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Frontmatter{}, "", errors.ErrNodeNotFound(id.String()).WithLocation(path, 0)
		}
		return Frontmatter{}, "", errors.WrapIO(err, errors.ErrCodeFileRead, "read node", path).
			WithNode(id.String())
	}

	fm, body, err := SplitFrontmatter(string(data))
	if err != nil {
		return Frontmatter{}, "", errors.WrapFormat(err, errors.ErrCodeFrontmatterInvalid, "parse node", path).
			WithNode(id.String())
	}

	return fm, body, nil
}

// ReadBody returns the node's prose without its frontmatter.
func (r *NodeRepo) ReadBody(ctx context.Context, id types.NodeID) (string, error) {
	_, body, err := r.Read(ctx, id)
	return body, err
}

// Create writes a new draft file with frontmatter and an empty notes file.
func (r *NodeRepo) Create(ctx context.Context, id types.NodeID, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	draft := r.DraftPath(id)
	notes := filepath.Join(r.root, id.NotesFile())
	for _, path := range []string{draft, notes} {
		if _, err := os.Stat(path); err == nil {
			return errors.NewValidationError(errors.ErrCodeNodeExists, "node files already exist").
				WithLocation(path, 0).
				WithNode(id.String())
		}
	}

	now := r.now().UTC().Format(time.RFC3339)
	content, err := JoinFrontmatter(Frontmatter{
		ID:      id.String(),
		Title:   title,
		Created: now,
		Updated: now,
	}, body)
	if err != nil {
		return err
	}

	if err := writeAtomic(draft, content); err != nil {
		return err
	}
	return writeAtomic(notes, "# Notes\n")
}

func writeAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeFileWrite, "create temp file", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return errors.WrapIO(err, errors.ErrCodeFileWrite, "write file", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO(err, errors.ErrCodeFileWrite, "close file", path)
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return errors.WrapIO(err, errors.ErrCodeFileWrite, "chmod file", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO(err, errors.ErrCodeFileWrite, "replace file", path)
	}
	return nil
}
