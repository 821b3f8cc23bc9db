package vault

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
)

// Memory is an in-memory FileStore for tests. Mutations emit the same
// events Disk would, and Emit injects raw watcher events on top.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
	subs  map[int]memorySub
	next  int
}

type memorySub struct {
	dir     string
	handler func(Event)
}

func NewMemory() *Memory {
	return &Memory{
		files: map[string][]byte{},
		subs:  map[int]memorySub{},
	}
}

func (m *Memory) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Write(path string, data []byte) error {
	m.mu.Lock()
	_, existed := m.files[path]
	m.files[path] = append([]byte(nil), data...)
	m.mu.Unlock()
	if existed {
		m.notify(Event{Type: Changed, Path: path})
	} else {
		m.notify(Event{Type: Created, Path: path})
	}
	return nil
}

func (m *Memory) Remove(path string) error {
	m.mu.Lock()
	_, ok := m.files[path]
	delete(m.files, path)
	m.mu.Unlock()
	if ok {
		m.notify(Event{Type: Removed, Path: path})
	}
	return nil
}

func (m *Memory) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	data, ok := m.files[oldPath]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("rename %s: %w", oldPath, fs.ErrNotExist)
	}
	delete(m.files, oldPath)
	m.files[newPath] = data
	m.mu.Unlock()
	m.notify(Event{Type: Removed, Path: oldPath}, Event{Type: Created, Path: newPath})
	return nil
}

func (m *Memory) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *Memory) List(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = filepath.Clean(dir)
	var out []string
	for p := range m.files {
		if filepath.Dir(p) == dir && isMarkdown(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Subscribe(dir string, handler func(Event)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	token := m.next
	m.subs[token] = memorySub{dir: filepath.Clean(dir), handler: handler}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, token)
	}, nil
}

// Emit delivers an event to matching subscribers without touching files.
func (m *Memory) Emit(ev Event) {
	m.notify(ev)
}

// notify runs matching handlers outside the lock, so handlers can call
// back into the store.
func (m *Memory) notify(evs ...Event) {
	for _, ev := range evs {
		dir := filepath.Dir(ev.Path)
		m.mu.Lock()
		var handlers []func(Event)
		for _, sub := range m.subs {
			if sub.dir == dir {
				handlers = append(handlers, sub.handler)
			}
		}
		m.mu.Unlock()
		for _, fn := range handlers {
			fn(ev)
		}
	}
}
