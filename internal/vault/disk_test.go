package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskReadWrite(t *testing.T) {
	d := NewDisk(nil)
	path := filepath.Join(t.TempDir(), "Work", "Tasks", "Note.md")

	assert.False(t, d.Exists(path))
	require.NoError(t, d.Write(path, []byte("body")), "parent folders created on demand")
	assert.True(t, d.Exists(path))

	got, err := d.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), got)
}

func TestDiskRemoveMissingIsFine(t *testing.T) {
	d := NewDisk(nil)
	path := filepath.Join(t.TempDir(), "gone.md")

	assert.NoError(t, d.Remove(path))

	require.NoError(t, d.Write(path, []byte("x")))
	require.NoError(t, d.Remove(path))
	assert.False(t, d.Exists(path))
}

func TestDiskRename(t *testing.T) {
	d := NewDisk(nil)
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "Old.md")
	newPath := filepath.Join(dir, "sub", "New.md")

	require.NoError(t, d.Write(oldPath, []byte("keep me")))
	require.NoError(t, d.Rename(oldPath, newPath))

	assert.False(t, d.Exists(oldPath))
	got, err := d.Read(newPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("keep me"), got)
}

func TestDiskList(t *testing.T) {
	d := NewDisk(nil)
	dir := t.TempDir()

	t.Run("missing dir is empty", func(t *testing.T) {
		got, err := d.List(filepath.Join(dir, "nope"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("markdown only, sorted, no subdirs", func(t *testing.T) {
		require.NoError(t, d.Write(filepath.Join(dir, "b.md"), nil))
		require.NoError(t, d.Write(filepath.Join(dir, "a.md"), nil))
		require.NoError(t, d.Write(filepath.Join(dir, "C.MD"), nil))
		require.NoError(t, d.Write(filepath.Join(dir, "notes.txt"), nil))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "folder.md"), 0o755))

		got, err := d.List(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "C.MD"),
			filepath.Join(dir, "a.md"),
			filepath.Join(dir, "b.md"),
		}, got)
	})
}

func TestDiskSubscribe(t *testing.T) {
	d := NewDisk(nil)
	dir := filepath.Join(t.TempDir(), "Tasks")

	events := make(chan Event, 16)
	cancel, err := d.Subscribe(dir, func(ev Event) { events <- ev })
	require.NoError(t, err, "subscribe creates the watched folder")
	defer cancel()

	notePath := filepath.Join(dir, "Watched.md")
	require.NoError(t, d.Write(notePath, []byte("v1")))
	waitForEvent(t, events, notePath, Created)

	require.NoError(t, d.Remove(notePath))
	waitForEvent(t, events, notePath, Removed)

	// Non-markdown files never reach the handler.
	require.NoError(t, d.Write(filepath.Join(dir, "scratch.txt"), []byte("x")))
	select {
	case ev := <-events:
		assert.True(t, isMarkdown(ev.Path), "unexpected event for %s", ev.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

// waitForEvent drains events until one matches path and type, failing after
// a generous timeout.
func waitForEvent(t *testing.T, events chan Event, path string, typ EventType) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Path == path && ev.Type == typ {
				return
			}
		case <-deadline:
			t.Fatalf("no %s event for %s", typ, path)
		}
	}
}
