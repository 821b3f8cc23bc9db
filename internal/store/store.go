package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/amirbrooks/plannersync/internal/task"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
	timeNow     = func() time.Time { return time.Now().UTC() }
)

// Options configures a TaskStore. Zero values fall back to the stock
// status/priority names and a discard logger.
type Options struct {
	Logger          *log.Logger
	DoneStatus      string
	DefaultStatus   string
	DefaultPriority string
}

// Patch is a partial task update. Nil fields are left untouched. Status and
// completed cross-derive: a patched status recomputes completed, a patched
// completed flag recomputes status, and when both are present the completed
// flag is applied last and wins.
type Patch struct {
	Title        *string
	Status       *string
	Completed    *bool
	ParentID     *string
	Collapsed    *bool
	Priority     *string
	StartDate    *string
	DueDate      *string
	Description  *string
	Tags         *[]string
	BucketID     *string
	Subtasks     *[]task.Subtask
	Dependencies *[]task.Dependency
	Links        *[]task.Link
}

type subscriber struct {
	token int
	fn    func()
}

// TaskStore is the single source of truth for tasks, grouped into one bucket
// per project. Bucket slice order is the user-visible order. Mutations save
// synchronously through the provider and then notify subscribers outside the
// lock; the in-memory state stays advanced even when the save fails, and the
// save error goes back to the caller.
type TaskStore struct {
	provider Provider
	logger   *log.Logger

	doneStatus      string
	defaultStatus   string
	defaultPriority string

	mu        sync.Mutex
	loaded    bool
	buckets   map[string][]task.Task
	projects  []task.Project
	active    string
	extra     map[string]any
	subs      []subscriber
	nextToken int
}

func New(provider Provider, opts Options) *TaskStore {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	done := strings.TrimSpace(opts.DoneStatus)
	if done == "" {
		done = task.StatusCompleted
	}
	def := strings.TrimSpace(opts.DefaultStatus)
	if def == "" {
		def = task.StatusNotStarted
	}
	pri := strings.TrimSpace(opts.DefaultPriority)
	if pri == "" {
		pri = task.PriorityMedium
	}
	return &TaskStore{
		provider:        provider,
		logger:          logger,
		doneStatus:      done,
		defaultStatus:   def,
		defaultPriority: pri,
		buckets:         map[string][]task.Task{},
		extra:           map[string]any{},
	}
}

// DoneStatus is the status string that means a task is complete.
func (s *TaskStore) DoneStatus() string { return s.doneStatus }

// Load reads the persisted blob, migrating a legacy single task list into a
// per-project bucket on the way. Always safe to call again.
func (s *TaskStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// EnsureLoaded loads on first use and is a no-op afterwards.
func (s *TaskStore) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoadedLocked(ctx)
}

func (s *TaskStore) IsLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *TaskStore) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

func (s *TaskStore) loadLocked(ctx context.Context) error {
	blob, err := s.provider.Load(ctx)
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if blob == nil {
		blob = map[string]any{}
	}

	buckets := map[string][]task.Task{}
	_, hasBuckets := blob[keyTasksByProject]
	if hasBuckets {
		if err := reencode(blob[keyTasksByProject], &buckets); err != nil {
			return fmt.Errorf("%w: tasksByProject: %v", ErrInvalid, err)
		}
		if buckets == nil {
			buckets = map[string][]task.Task{}
		}
	}

	var projects []task.Project
	if raw, ok := blob[keyProjects]; ok && raw != nil {
		if err := reencode(raw, &projects); err != nil {
			return fmt.Errorf("%w: projects: %v", ErrInvalid, err)
		}
	}

	dirty := false

	// A blob written before the registry existed has buckets but no project
	// entries; adopt the bucket keys so their tasks stay reachable.
	if len(projects) == 0 && len(buckets) > 0 {
		keys := make([]string, 0, len(buckets))
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			projects = append(projects, task.Project{ID: k, Name: k})
		}
		dirty = true
	}
	if len(projects) == 0 {
		projects = []task.Project{{ID: task.NewProjectID(), Name: "Personal"}}
		dirty = true
	}

	active := ""
	if v, ok := blob[keyActiveProject].(string); ok {
		active = strings.TrimSpace(v)
	}
	if active == "" || !projectListHas(projects, active) {
		active = projects[0].ID
		dirty = true
	}

	if rawLegacy, hasLegacy := blob[keyLegacyTasks]; hasLegacy {
		if !hasBuckets && rawLegacy != nil {
			var legacy []task.Task
			if err := reencode(rawLegacy, &legacy); err != nil {
				return fmt.Errorf("%w: legacy tasks: %v", ErrInvalid, err)
			}
			buckets[active] = legacy
			s.logger.Info("migrated legacy task list", "count", len(legacy), "project", active)
		}
		// The legacy key never survives a save.
		dirty = true
	}

	extra := map[string]any{}
	for k, v := range blob {
		if isOwnedKey(k) {
			continue
		}
		extra[k] = v
	}

	s.buckets = buckets
	s.projects = projects
	s.active = active
	s.extra = extra
	s.loaded = true

	if dirty {
		return s.saveLocked(ctx)
	}
	return nil
}

func (s *TaskStore) saveLocked(ctx context.Context) error {
	blob := make(map[string]any, len(s.extra)+3)
	for k, v := range s.extra {
		blob[k] = v
	}
	blob[keyTasksByProject] = s.buckets
	if len(s.projects) > 0 {
		blob[keyProjects] = s.projects
	}
	if s.active != "" {
		blob[keyActiveProject] = s.active
	}
	if err := s.provider.Save(ctx, blob); err != nil {
		s.logger.Error("persist failed", "err", err)
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

// commitLocked saves, releases the lock and notifies subscribers in
// subscription order. Callers must hold the lock and not touch state after.
// Subscribers are notified even when the save failed: the in-memory change
// already happened.
func (s *TaskStore) commitLocked(ctx context.Context) error {
	err := s.saveLocked(ctx)
	fns := make([]func(), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return err
}

// All returns the active project's tasks in display order.
func (s *TaskStore) All() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBucket(s.buckets[s.active])
}

// AllForProject returns one project's tasks; unknown projects yield an empty
// list, never an error.
func (s *TaskStore) AllForProject(projectID string) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBucket(s.buckets[projectID])
}

// Get looks a task up by id across all buckets.
func (s *TaskStore) Get(id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucketID, idx, ok := s.findLocked(id)
	if !ok {
		return task.Task{}, false
	}
	return s.buckets[bucketID][idx].Clone(), true
}

// Add appends a fresh root task to the active project.
func (s *TaskStore) Add(ctx context.Context, title string) (task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return task.Task{}, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return task.Task{}, err
	}
	now := timeNow()
	t := task.Task{
		ID:         task.NewTaskID(),
		Title:      title,
		Status:     s.defaultStatus,
		Priority:   s.defaultPriority,
		CreatedAt:  &now,
		ModifiedAt: &now,
	}
	s.buckets[s.active] = append(s.buckets[s.active], t)
	out := t.Clone()
	return out, s.commitLocked(ctx)
}

// Update applies a partial patch. An unknown id is a silent no-op: no error,
// no save, no change signal.
func (s *TaskStore) Update(ctx context.Context, id string, p Patch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	bucketID, idx, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	t := &s.buckets[bucketID][idx]
	s.applyPatch(t, p)
	now := timeNow()
	t.ModifiedAt = &now
	return s.commitLocked(ctx)
}

func (s *TaskStore) applyPatch(t *task.Task, p Patch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = task.NormalizePriority(*p.Priority)
	}
	if p.StartDate != nil {
		t.StartDate = strings.TrimSpace(*p.StartDate)
	}
	if p.DueDate != nil {
		t.DueDate = strings.TrimSpace(*p.DueDate)
	}
	if p.ParentID != nil {
		t.ParentID = strings.TrimSpace(*p.ParentID)
	}
	if p.BucketID != nil {
		t.BucketID = strings.TrimSpace(*p.BucketID)
	}
	if p.Collapsed != nil {
		t.Collapsed = *p.Collapsed
	}
	if p.Tags != nil {
		t.Tags = task.NormalizeTags(*p.Tags)
	}
	if p.Subtasks != nil {
		subs := append([]task.Subtask(nil), (*p.Subtasks)...)
		for i := range subs {
			subs[i].Title = strings.TrimSpace(subs[i].Title)
			if subs[i].ID == "" {
				subs[i].ID = task.NewSubtaskID()
			}
		}
		t.Subtasks = subs
	}
	if p.Dependencies != nil {
		t.Dependencies = append([]task.Dependency(nil), (*p.Dependencies)...)
	}
	if p.Links != nil {
		t.Links = append([]task.Link(nil), (*p.Links)...)
	}
	// Order matters: a patched completed flag is applied after status, so it
	// wins when both arrive in one patch.
	if p.Status != nil {
		t.SetStatus(strings.TrimSpace(*p.Status), s.doneStatus)
	}
	if p.Completed != nil {
		t.SetCompleted(*p.Completed, s.doneStatus, s.defaultStatus)
	}
}

// Delete removes a task and promotes its direct children to root. Unknown
// ids are silent no-ops.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	bucketID, idx, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	bucket := s.buckets[bucketID]
	removed := bucket[idx]
	bucket = append(bucket[:idx], bucket[idx+1:]...)
	for i := range bucket {
		if bucket[i].ParentID == removed.ID {
			bucket[i].ParentID = ""
		}
	}
	s.buckets[bucketID] = bucket
	return s.commitLocked(ctx)
}

// SetOrder rebuilds the active bucket to match ids. Unknown ids are dropped;
// tasks missing from ids are dropped from the bucket, so callers pass the
// complete order.
func (s *TaskStore) SetOrder(ctx context.Context, ids []string) error {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	bucket := s.buckets[s.active]
	byID := make(map[string]int, len(bucket))
	for i, t := range bucket {
		byID[t.ID] = i
	}
	next := make([]task.Task, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, bucket[i])
	}
	s.buckets[s.active] = next
	return s.commitLocked(ctx)
}

// MakeSubtask re-parents id under parentID. Both must exist in the same
// bucket; anything else is a silent no-op.
func (s *TaskStore) MakeSubtask(ctx context.Context, id, parentID string) error {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	if id == parentID {
		s.mu.Unlock()
		return nil
	}
	cb, ci, ok := s.findLocked(id)
	pb, _, pok := s.findLocked(parentID)
	if !ok || !pok || cb != pb {
		s.mu.Unlock()
		return nil
	}
	s.buckets[cb][ci].ParentID = parentID
	return s.commitLocked(ctx)
}

// PromoteSubtask clears a task's parent, moving it back to root level.
func (s *TaskStore) PromoteSubtask(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	bucketID, idx, ok := s.findLocked(id)
	if !ok || s.buckets[bucketID][idx].ParentID == "" {
		s.mu.Unlock()
		return nil
	}
	s.buckets[bucketID][idx].ParentID = ""
	return s.commitLocked(ctx)
}

// ToggleCollapsed flips the subtree fold flag.
func (s *TaskStore) ToggleCollapsed(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	bucketID, idx, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.buckets[bucketID][idx].Collapsed = !s.buckets[bucketID][idx].Collapsed
	return s.commitLocked(ctx)
}

// AddFromObject upserts a fully formed task into the active project: an
// existing id is replaced in place, keeping its position; a new id is
// appended. Used by sync pulls and importers, so lastModifiedDate is left
// alone and createdDate is stamped only when absent.
func (s *TaskStore) AddFromObject(ctx context.Context, t task.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	s.upsertLocked(t, s.active)
	return s.commitLocked(ctx)
}

// AddToProject is AddFromObject aimed at an explicit project, creating the
// bucket when it does not exist yet.
func (s *TaskStore) AddToProject(ctx context.Context, t task.Task, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalid)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	s.upsertLocked(t, projectID)
	return s.commitLocked(ctx)
}

func (s *TaskStore) upsertLocked(t task.Task, projectID string) {
	if strings.TrimSpace(t.ID) == "" {
		t.ID = task.NewTaskID()
	}
	t.Normalize(s.doneStatus, s.defaultStatus, s.defaultPriority)
	if t.CreatedAt == nil {
		now := timeNow()
		t.CreatedAt = &now
	}
	bucket := s.buckets[projectID]
	for i := range bucket {
		if bucket[i].ID == t.ID {
			bucket[i] = t
			return
		}
	}
	s.buckets[projectID] = append(bucket, t)
}

// Subscribe registers a change listener and returns its unsubscribe func.
// Listeners run synchronously after each successful mutation, outside the
// store lock, in subscription order.
func (s *TaskStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextToken++
	token := s.nextToken
	s.subs = append(s.subs, subscriber{token: token, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.token == token {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Refresh re-notifies subscribers without mutating anything. Used after an
// active-project switch or an external reload.
func (s *TaskStore) Refresh() {
	s.mu.Lock()
	fns := make([]func(), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// ActiveProject returns the id of the project whose bucket All() reads.
func (s *TaskStore) ActiveProject() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveProject switches the active bucket and persists the choice.
func (s *TaskStore) SetActiveProject(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	if id == s.active {
		s.mu.Unlock()
		return nil
	}
	if !projectListHas(s.projects, id) {
		s.mu.Unlock()
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	s.active = id
	return s.commitLocked(ctx)
}

// Projects lists the registry in insertion order.
func (s *TaskStore) Projects() []task.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.Project(nil), s.projects...)
}

// ProjectOf reports which project holds the task. A bucket without a
// registry entry comes back as a bare project with the bucket key for both
// fields.
func (s *TaskStore) ProjectOf(id string) (task.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucketID, _, ok := s.findLocked(id)
	if !ok {
		return task.Project{}, false
	}
	for _, p := range s.projects {
		if p.ID == bucketID {
			return p, true
		}
	}
	return task.Project{ID: bucketID, Name: bucketID}, true
}

// ProjectByID resolves a registry entry.
func (s *TaskStore) ProjectByID(id string) (task.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return task.Project{}, false
}

// ProjectByName resolves a registry entry, case-insensitively.
func (s *TaskStore) ProjectByName(name string) (task.Project, bool) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectByNameLocked(name)
}

func (s *TaskStore) projectByNameLocked(name string) (task.Project, bool) {
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return task.Project{}, false
}

// EnsureProject returns the project with the given name, creating it when
// missing. Idempotent by name.
func (s *TaskStore) EnsureProject(ctx context.Context, name string) (task.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return task.Project{}, fmt.Errorf("%w: project name is required", ErrInvalid)
	}
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return task.Project{}, err
	}
	if p, ok := s.projectByNameLocked(name); ok {
		s.mu.Unlock()
		return p, nil
	}
	p := task.Project{ID: task.NewProjectID(), Name: name}
	s.projects = append(s.projects, p)
	if s.buckets[p.ID] == nil {
		s.buckets[p.ID] = []task.Task{}
	}
	return p, s.commitLocked(ctx)
}

func (s *TaskStore) findLocked(id string) (string, int, bool) {
	if strings.TrimSpace(id) == "" {
		return "", 0, false
	}
	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for i := range s.buckets[k] {
			if s.buckets[k][i].ID == id {
				return k, i, true
			}
		}
	}
	return "", 0, false
}

func cloneBucket(in []task.Task) []task.Task {
	out := make([]task.Task, 0, len(in))
	for _, t := range in {
		out = append(out, t.Clone())
	}
	return out
}

func projectListHas(projects []task.Project, id string) bool {
	for _, p := range projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

// reencode converts generic decoded blob data into a typed structure by
// passing it back through JSON.
func reencode(from, to any) error {
	b, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, to)
}
