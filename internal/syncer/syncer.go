// Package syncer mirrors tasks between the store and their Markdown notes
// in the vault. Pushes write notes, pulls read them back, and a short
// per-task suppression window keeps the two directions from ping-ponging a
// single change forever.
package syncer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/amirbrooks/plannersync/internal/notes"
	"github.com/amirbrooks/plannersync/internal/store"
	"github.com/amirbrooks/plannersync/internal/task"
	"github.com/amirbrooks/plannersync/internal/vault"
)

// Defaults for Options left at zero.
const (
	DefaultWindow       = 2 * time.Second
	DefaultCreateDelay  = 500 * time.Millisecond
	DefaultScanCooldown = 5 * time.Minute
	DefaultFilePause    = 50 * time.Millisecond
)

// afterFunc schedules fn once d has elapsed and returns a stop func.
// Swapped out in tests to run callbacks inline.
var afterFunc = func(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Options tunes the coordinator. Zero durations fall back to the defaults
// above; Clock defaults to time.Now and exists so tests can pin time.
type Options struct {
	Window       time.Duration
	CreateDelay  time.Duration
	ScanCooldown time.Duration
	FilePause    time.Duration
	Logger       *log.Logger
	Clock        func() time.Time
}

// Coordinator owns the sync state for one vault: the suppression table, the
// per-project scan cooldowns and the note-path index used to resolve
// external deletions back to task ids.
type Coordinator struct {
	store    *store.TaskStore
	files    vault.FileStore
	basePath string

	window      time.Duration
	createDelay time.Duration
	cooldown    time.Duration
	pause       time.Duration
	logger      *log.Logger
	clock       func() time.Time

	mu         sync.Mutex
	suppressed map[string]time.Time
	lastScan   map[string]time.Time
	pathIndex  map[string]string
}

func New(st *store.TaskStore, files vault.FileStore, basePath string, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	createDelay := opts.CreateDelay
	if createDelay <= 0 {
		createDelay = DefaultCreateDelay
	}
	cooldown := opts.ScanCooldown
	if cooldown <= 0 {
		cooldown = DefaultScanCooldown
	}
	pause := opts.FilePause
	if pause < 0 {
		pause = DefaultFilePause
	}
	return &Coordinator{
		store:       st,
		files:       files,
		basePath:    basePath,
		window:      window,
		createDelay: createDelay,
		cooldown:    cooldown,
		pause:       pause,
		logger:      logger,
		clock:       clock,
		suppressed:  map[string]time.Time{},
		lastScan:    map[string]time.Time{},
		pathIndex:   map[string]string{},
	}
}

// isSuppressedLocked reports whether id sits inside an open suppression
// window, dropping the entry once it has expired.
func (c *Coordinator) isSuppressedLocked(id string, now time.Time) bool {
	expires, ok := c.suppressed[id]
	if !ok {
		return false
	}
	if now.Before(expires) {
		return true
	}
	delete(c.suppressed, id)
	return false
}

func (c *Coordinator) markLocked(id string, now time.Time) {
	c.suppressed[id] = now.Add(c.window)
}

// PushTask writes one task's note to the vault. A task inside its
// suppression window is skipped, otherwise the window is armed so the echo
// of this write does not pull straight back into the store.
func (c *Coordinator) PushTask(ctx context.Context, t task.Task, projectName string) error {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: task needs an id and a title", store.ErrInvalid)
	}
	now := c.clock()
	path := notes.TaskFilePath(c.basePath, projectName, t.Title)

	c.mu.Lock()
	if c.isSuppressedLocked(t.ID, now) {
		c.mu.Unlock()
		c.logger.Debug("push skipped, suppression window open", "task", t.ID)
		return nil
	}
	c.markLocked(t.ID, now)
	// A title change moves the canonical path; drop stale index entries so
	// a later delete of the old note cannot take the live task with it.
	for p, id := range c.pathIndex {
		if id == t.ID && p != path {
			delete(c.pathIndex, p)
		}
	}
	c.pathIndex[path] = t.ID
	c.mu.Unlock()

	body := notes.Encode(t, projectName, c.resolver(projectName))
	if err := c.files.Write(path, []byte(body)); err != nil {
		return fmt.Errorf("write note %s: %w", path, err)
	}
	c.logger.Debug("pushed task note", "task", t.ID, "path", path)
	return nil
}

// resolver renders dependency references against the project's own bucket.
func (c *Coordinator) resolver(projectName string) notes.Resolver {
	p, ok := c.store.ProjectByName(projectName)
	if !ok {
		return func(string) (task.Task, bool) { return task.Task{}, false }
	}
	byID := map[string]task.Task{}
	for _, t := range c.store.AllForProject(p.ID) {
		byID[t.ID] = t
	}
	return func(id string) (task.Task, bool) {
		t, ok := byID[id]
		return t, ok
	}
}

// PullFile reads one note and upserts its task into the project. Non-task
// notes and suppressed tasks are ignored; an unreadable note is logged and
// skipped so a folder scan survives one bad file.
func (c *Coordinator) PullFile(ctx context.Context, path, projectID string) error {
	data, err := c.files.Read(path)
	if err != nil {
		c.logger.Warn("note unreadable, skipping pull", "path", path, "err", err)
		return nil
	}
	t, ok := notes.Decode(string(data))
	if !ok {
		return nil
	}
	now := c.clock()

	c.mu.Lock()
	if c.isSuppressedLocked(t.ID, now) {
		c.mu.Unlock()
		c.logger.Debug("pull skipped, suppression window open", "task", t.ID, "path", path)
		return nil
	}
	c.markLocked(t.ID, now)
	c.pathIndex[path] = t.ID
	c.mu.Unlock()

	if err := c.store.AddToProject(ctx, t, projectID); err != nil {
		return fmt.Errorf("pull %s: %w", path, err)
	}
	c.logger.Debug("pulled task note", "task", t.ID, "path", path)
	return nil
}

// Watch subscribes to the project's note folder and feeds external edits
// back into the store until the returned cancel func runs. Created notes
// are pulled after a settle delay so the editor can finish writing; removed
// notes resolve through the path index, and a delete the index cannot
// resolve is a logged no-op.
func (c *Coordinator) Watch(ctx context.Context, projectID, projectName string) (func(), error) {
	dir := notes.ProjectFolder(c.basePath, projectName)
	done := make(chan struct{})
	unsubscribe, err := c.files.Subscribe(dir, func(ev vault.Event) {
		select {
		case <-done:
			return
		default:
		}
		switch ev.Type {
		case vault.Changed:
			if err := c.PullFile(ctx, ev.Path, projectID); err != nil {
				c.logger.Error("pull failed", "path", ev.Path, "err", err)
			}
		case vault.Created:
			path := ev.Path
			afterFunc(c.createDelay, func() {
				select {
				case <-done:
					return
				default:
				}
				if err := c.PullFile(ctx, path, projectID); err != nil {
					c.logger.Error("pull failed", "path", path, "err", err)
				}
			})
		case vault.Removed:
			c.handleRemoved(ctx, ev.Path)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	c.logger.Info("watching project folder", "dir", dir, "project", projectID)
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}, nil
}

func (c *Coordinator) handleRemoved(ctx context.Context, path string) {
	c.mu.Lock()
	id, ok := c.pathIndex[path]
	delete(c.pathIndex, path)
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("ignoring delete of unindexed note", "path", path)
		return
	}
	if err := c.store.Delete(ctx, id); err != nil {
		c.logger.Error("delete after note removal failed", "task", id, "err", err)
	}
}

// InitialSync pulls every note in the project folder, pausing briefly
// between files. Repeat scans inside the cooldown are skipped so wiring
// that calls this on every reconnect stays cheap.
func (c *Coordinator) InitialSync(ctx context.Context, projectID, projectName string) error {
	now := c.clock()
	c.mu.Lock()
	if last, ok := c.lastScan[projectID]; ok && now.Sub(last) < c.cooldown {
		c.mu.Unlock()
		c.logger.Debug("initial sync skipped, cooldown active", "project", projectID)
		return nil
	}
	c.lastScan[projectID] = now
	c.mu.Unlock()

	dir := notes.ProjectFolder(c.basePath, projectName)
	paths, err := c.files.List(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for i, path := range paths {
		if i > 0 && c.pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.pause):
			}
		}
		if err := c.PullFile(ctx, path, projectID); err != nil {
			c.logger.Error("pull failed during scan", "path", path, "err", err)
		}
	}
	c.logger.Info("initial sync complete", "project", projectID, "notes", len(paths))
	return nil
}

// RenameNote moves a task's note to the path its new title maps to, so a
// title change does not orphan the old file. A missing old note or an
// unchanged path is a no-op.
func (c *Coordinator) RenameNote(ctx context.Context, oldTitle, newTitle, projectName string) error {
	oldPath := notes.TaskFilePath(c.basePath, projectName, oldTitle)
	newPath := notes.TaskFilePath(c.basePath, projectName, newTitle)
	if oldPath == newPath || !c.files.Exists(oldPath) {
		return nil
	}
	if err := c.files.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename note: %w", err)
	}
	c.mu.Lock()
	if id, ok := c.pathIndex[oldPath]; ok {
		delete(c.pathIndex, oldPath)
		c.pathIndex[newPath] = id
	}
	c.mu.Unlock()
	c.logger.Debug("renamed note", "from", oldPath, "to", newPath)
	return nil
}
