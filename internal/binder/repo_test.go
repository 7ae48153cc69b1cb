package binder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/prosemark/internal/errors"
	"github.com/conneroisu/prosemark/internal/types"
)

func TestBinderRepo_LoadSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewBinderRepo(dir)

	_, err := repo.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, errors.ErrCodeBinderNotFound, errors.GetErrorCode(err))

	require.NoError(t, os.WriteFile(repo.Path(), []byte(sampleBinder), 0644))

	b, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, b.Roots(), 2)

	b.Items = append(b.Items, &Item{Title: "Epilogue"})
	require.NoError(t, repo.Save(ctx, b))

	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded.Roots(), 3)
	assert.True(t, reloaded.Roots()[2].IsPlaceholder())

	data, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Trailing text.")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestBinderRepo_LoadInvalid(t *testing.T) {
	dir := t.TempDir()
	repo := NewBinderRepo(dir)
	require.NoError(t, os.WriteFile(repo.Path(), []byte(BeginMarker+"\n"), 0644))

	_, err := repo.Load(context.Background())
	require.Error(t, err)

	var pe *errors.ProsemarkError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, repo.Path(), pe.FilePath)
	assert.Equal(t, errors.ErrorTypeFormat, pe.Type)
}

func TestBinderRepo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBinderRepo(t.TempDir()).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNodeRepo_CreateAndRead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewNodeRepo(dir)
	repo.now = func() time.Time { return time.Date(2025, 9, 20, 15, 30, 0, 0, time.UTC) }

	id := types.MustParseNodeID(chapter1)
	require.NoError(t, repo.Create(ctx, id, "Chapter 1", "It begins.\n"))

	exists, err := repo.Exists(id)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.FileExists(t, filepath.Join(dir, id.NotesFile()))

	fm, body, err := repo.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, chapter1, fm.ID)
	assert.Equal(t, "Chapter 1", fm.Title)
	assert.Equal(t, "2025-09-20T15:30:00Z", fm.Created)
	assert.Equal(t, fm.Created, fm.Updated)
	assert.Equal(t, "It begins.\n", body)

	body, err = repo.ReadBody(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "It begins.\n", body)

	err = repo.Create(ctx, id, "Again", "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNodeExists, errors.GetErrorCode(err))
}

func TestNodeRepo_Missing(t *testing.T) {
	repo := NewNodeRepo(t.TempDir())
	id := types.MustParseNodeID(chapter2)

	exists, err := repo.Exists(id)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.ReadBody(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NodeNotFound)

	var pe *errors.ProsemarkError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, chapter2, pe.NodeID)
}

func TestNodeRepo_BadFrontmatter(t *testing.T) {
	dir := t.TempDir()
	repo := NewNodeRepo(dir)
	id := types.MustParseNodeID(partTwo)
	require.NoError(t, os.WriteFile(repo.DraftPath(id), []byte("---\n- list\n---\nbody"), 0644))

	_, err := repo.ReadBody(context.Background(), id)
	require.Error(t, err)
	assert.False(t, errors.IsNotFound(err))

	var pe *errors.ProsemarkError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, repo.DraftPath(id), pe.FilePath)
	assert.Equal(t, partTwo, pe.NodeID)
}
