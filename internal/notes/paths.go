package notes

import (
	"path/filepath"
	"strings"
)

// TasksFolder is the per-project subfolder that holds task notes.
const TasksFolder = "Tasks"

// TaskFilePath is the canonical note location for a task title:
// {base}/{project}/Tasks/{sanitized title}.md. Pure, so push, pull and
// rename all agree on where a note lives. Distinct tasks with equal titles
// map to the same path; last writer wins.
func TaskFilePath(basePath, projectName, title string) string {
	return filepath.Join(basePath, projectName, TasksFolder, SanitizeTitle(title)+".md")
}

// ProjectFolder is the notes folder for one project.
func ProjectFolder(basePath, projectName string) string {
	return filepath.Join(basePath, projectName, TasksFolder)
}

// SanitizeTitle replaces characters that cannot appear in file names.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case r < 0x20:
			b.WriteByte('-')
		case strings.ContainsRune(`\/:*?"<>|`, r):
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "Untitled"
	}
	return out
}
