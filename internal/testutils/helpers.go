package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prosemark/internal/binder"
	"github.com/conneroisu/prosemark/internal/config"
	"github.com/conneroisu/prosemark/internal/types"
)

// Project is a throwaway prosemark project on disk.
type Project struct {
	t      *testing.T
	Dir    string
	Binder *binder.Binder
	Nodes  *binder.NodeRepo
}

// CreateTempProject creates an empty project with a managed binder.
func CreateTempProject(t *testing.T) *Project {
	t.Helper()

	dir := t.TempDir()
	p := &Project{
		t:      t,
		Dir:    dir,
		Binder: binder.New(),
		Nodes:  binder.NewNodeRepo(dir),
	}
	p.Save()

	return p
}

// AddNode creates a node file and lists it under parent, or at the root
// when parent is nil. The binder is written back immediately.
func (p *Project) AddNode(parent *binder.Item, title, body string) *binder.Item {
	p.t.Helper()

	id, err := types.NewNodeID()
	require.NoError(p.t, err)
	require.NoError(p.t, p.Nodes.Create(context.Background(), id, title, body))

	return p.attach(parent, &binder.Item{Title: title, NodeID: id})
}

// AddPlaceholder lists a title with no node file.
func (p *Project) AddPlaceholder(parent *binder.Item, title string) *binder.Item {
	p.t.Helper()
	return p.attach(parent, &binder.Item{Title: title})
}

// AddLooseNode creates a node file that the binder does not mention.
func (p *Project) AddLooseNode(title, body string) types.NodeID {
	p.t.Helper()

	id, err := types.NewNodeID()
	require.NoError(p.t, err)
	require.NoError(p.t, p.Nodes.Create(context.Background(), id, title, body))

	return id
}

// WriteBody replaces a node's draft file with raw content.
func (p *Project) WriteBody(id types.NodeID, content string) {
	p.t.Helper()
	require.NoError(p.t, os.WriteFile(p.Nodes.DraftPath(id), []byte(content), 0644))
}

// RemoveNodeFile deletes a node's draft file but leaves the binder alone.
func (p *Project) RemoveNodeFile(id types.NodeID) {
	p.t.Helper()
	require.NoError(p.t, os.Remove(p.Nodes.DraftPath(id)))
}

// Save writes the in-memory binder to disk.
func (p *Project) Save() {
	p.t.Helper()
	require.NoError(p.t, binder.NewBinderRepo(p.Dir).Save(context.Background(), p.Binder))
}

func (p *Project) attach(parent, item *binder.Item) *binder.Item {
	if parent == nil {
		p.Binder.Items = append(p.Binder.Items, item)
	} else {
		parent.Children = append(parent.Children, item)
	}
	p.Save()
	return item
}

// CreateTestConfig returns the default configuration pointed at projectDir.
func CreateTestConfig(projectDir string) *config.Config {
	cfg := config.Default()
	cfg.Project.Path = projectDir
	return cfg
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filepath.Base(filePath), timeout)
}
