// Package vault abstracts the note folder that plannersync shares with an
// Obsidian vault. The Disk implementation wraps the real filesystem plus a
// change watcher; the Memory implementation backs tests.
package vault

// EventType classifies a change seen inside a watched folder.
type EventType int

const (
	Created EventType = iota
	Changed
	Removed
)

func (t EventType) String() string {
	switch t {
	case Created:
		return "created"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Event is one observed change to a note file.
type Event struct {
	Type EventType
	Path string
}

// FileStore is the vault surface the sync layer works against. Paths are
// full paths as produced by notes.TaskFilePath. Only Markdown notes are
// listed and watched; everything else in the vault is out of scope.
type FileStore interface {
	Read(path string) ([]byte, error)
	// Write creates parent folders as needed and overwrites in place. Notes
	// are written directly rather than via rename so editors watching the
	// file keep their handle.
	Write(path string, data []byte) error
	// Remove deletes a note. A missing note is not an error.
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Exists(path string) bool
	// List returns the Markdown files directly inside dir, sorted by name.
	// A missing dir yields an empty list.
	List(dir string) ([]string, error)
	// Subscribe watches dir and invokes handler for every Markdown change
	// until the returned cancel func runs. Handlers may be called from a
	// watcher goroutine and must synchronize themselves.
	Subscribe(dir string, handler func(Event)) (cancel func(), err error)
}
