package vault

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Disk is the FileStore backed by the real vault folder.
type Disk struct {
	logger *log.Logger
}

func NewDisk(logger *log.Logger) *Disk {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Disk{logger: logger}
}

func (d *Disk) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (d *Disk) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (d *Disk) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Disk) Rename(oldPath, newPath string) error {
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return err
	}
	return os.Rename(oldPath, newPath)
}

func (d *Disk) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (d *Disk) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isMarkdown(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// Subscribe watches dir with fsnotify. The folder is created first so a
// watch can start before the first note exists.
func (d *Disk) Subscribe(dir string, handler func(Event)) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isMarkdown(ev.Name) {
					continue
				}
				switch {
				case ev.Has(fsnotify.Create):
					handler(Event{Type: Created, Path: ev.Name})
				case ev.Has(fsnotify.Write):
					handler(Event{Type: Changed, Path: ev.Name})
				case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
					handler(Event{Type: Removed, Path: ev.Name})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.logger.Warn("vault watcher error", "err", err)
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { _ = watcher.Close() }) }, nil
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}
