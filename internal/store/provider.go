// Package store holds the in-memory task workspace and its persistence
// providers. The persisted form is a single blob; the store owns a handful of
// top-level keys and passes every other key through saves untouched, so a
// newer or foreign writer sharing the same file loses nothing.
package store

import "context"

// Provider loads and saves the workspace blob. Implementations must return
// the blob as generic decoded data; the store converts its own keys into
// typed structures and never looks at the rest.
type Provider interface {
	Load(ctx context.Context) (map[string]any, error)
	Save(ctx context.Context, blob map[string]any) error
}

// Blob keys the store owns. Everything else is foreign and preserved.
const (
	keyLegacyTasks    = "tasks"
	keyTasksByProject = "tasksByProject"
	keyProjects       = "projects"
	keyActiveProject  = "activeProject"
)

var ownedKeys = []string{keyLegacyTasks, keyTasksByProject, keyProjects, keyActiveProject}

func isOwnedKey(k string) bool {
	for _, o := range ownedKeys {
		if k == o {
			return true
		}
	}
	return false
}
