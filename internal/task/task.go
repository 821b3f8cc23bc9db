// Package task defines the planner task model shared by the store, the note
// codec and the sync coordinator.
package task

import (
	"sort"
	"strings"
	"time"
)

// Statuses shipped by default. The set is configurable per store; only the
// done value carries semantics (it is what the completed flag derives from).
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusBlocked    = "Blocked"
	StatusCompleted  = "Completed"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// Dependency relationship kinds, predecessor-to-successor.
const (
	DepFinishToStart  = "FS"
	DepStartToStart   = "SS"
	DepFinishToFinish = "FF"
	DepStartToFinish  = "SF"
)

const (
	LinkInternal = "internal"
	LinkExternal = "external"
)

// DefaultStatuses returns the stock status set in display order.
func DefaultStatuses() []string {
	return []string{StatusNotStarted, StatusInProgress, StatusBlocked, StatusCompleted}
}

// Task is one planner entry. Slice order inside a project bucket is the
// user-visible order; there is no separate rank field.
type Task struct {
	ID           string       `json:"id" yaml:"id"`
	Title        string       `json:"title" yaml:"title"`
	Status       string       `json:"status" yaml:"status"`
	Completed    bool         `json:"completed" yaml:"completed"`
	ParentID     string       `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Collapsed    bool         `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Priority     string       `json:"priority,omitempty" yaml:"priority,omitempty"`
	StartDate    string       `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	DueDate      string       `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Tags         []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	BucketID     string       `json:"bucketId,omitempty" yaml:"bucketId,omitempty"`
	Subtasks     []Subtask    `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Links        []Link       `json:"links,omitempty" yaml:"links,omitempty"`
	CreatedAt    *time.Time   `json:"createdDate,omitempty" yaml:"createdDate,omitempty"`
	ModifiedAt   *time.Time   `json:"lastModifiedDate,omitempty" yaml:"lastModifiedDate,omitempty"`
}

// Subtask is a lightweight checklist item under a task. IDs are fresh UUIDs;
// when a note is decoded the checkbox lines carry no id, so titles are the
// stable key across a round trip.
type Subtask struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Dependency points at a predecessor task.
type Dependency struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

// Link is an outgoing reference: either an internal note name or a titled
// external URL.
type Link struct {
	Kind   string `json:"type" yaml:"type"`
	Target string `json:"target" yaml:"target"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Token renders the compact wire form used in note metadata, e.g. "FS:tsk_01H...".
func (d Dependency) Token() string {
	return d.Type + ":" + d.ID
}

// ParseDependencyToken splits a "TYPE:predecessorId" token. Tokens without a
// delimiter or with an empty side are rejected.
func ParseDependencyToken(s string) (Dependency, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return Dependency{}, false
	}
	typ := strings.TrimSpace(parts[0])
	id := strings.TrimSpace(parts[1])
	if typ == "" || id == "" {
		return Dependency{}, false
	}
	return Dependency{ID: id, Type: typ}, true
}

// SetStatus assigns status and keeps the completed flag consistent with it.
func (t *Task) SetStatus(status, doneStatus string) {
	t.Status = status
	t.Completed = status == doneStatus
}

// SetCompleted assigns the completed flag and keeps status consistent with it.
// Completing forces the done status; un-completing a done task reverts to the
// default status.
func (t *Task) SetCompleted(done bool, doneStatus, defaultStatus string) {
	t.Completed = done
	if done {
		t.Status = doneStatus
		return
	}
	if t.Status == doneStatus || strings.TrimSpace(t.Status) == "" {
		t.Status = defaultStatus
	}
}

// Normalize fills defaults on a task arriving from outside the store (a
// decoded note, an import). Status and completed are reconciled with status
// winning when only it is set.
func (t *Task) Normalize(doneStatus, defaultStatus, defaultPriority string) {
	t.Title = strings.TrimSpace(t.Title)
	if strings.TrimSpace(t.Status) == "" {
		if t.Completed {
			t.Status = doneStatus
		} else {
			t.Status = defaultStatus
		}
	}
	t.Completed = t.Status == doneStatus
	if strings.TrimSpace(t.Priority) == "" {
		t.Priority = defaultPriority
	}
	t.Tags = NormalizeTags(t.Tags)
}

// Clone returns a deep copy; mutating the copy never touches the original.
func (t Task) Clone() Task {
	out := t
	out.Tags = append([]string(nil), t.Tags...)
	out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	out.Dependencies = append([]Dependency(nil), t.Dependencies...)
	out.Links = append([]Link(nil), t.Links...)
	out.CreatedAt = cloneTime(t.CreatedAt)
	out.ModifiedAt = cloneTime(t.ModifiedAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// NormalizePriority maps loose user input onto the stock priority names.
// Unknown values pass through untouched.
func NormalizePriority(p string) string {
	switch strings.TrimSpace(strings.ToLower(p)) {
	case "low", "l":
		return PriorityLow
	case "medium", "med", "m", "normal":
		return PriorityMedium
	case "high", "h":
		return PriorityHigh
	case "urgent", "u", "p0":
		return PriorityUrgent
	case "":
		return PriorityMedium
	default:
		return strings.TrimSpace(p)
	}
}

// NormalizeTags trims, drops empties and case-insensitive duplicates, and
// sorts for stable serialization.
func NormalizeTags(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Project is one bucket owner in the workspace.
type Project struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
