package notes

import (
	"strings"
	"testing"
	"time"

	"github.com/amirbrooks/plannersync/internal/task"
)

func sampleTask() task.Task {
	created := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	modified := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	return task.Task{
		ID:          "tsk_01HZX4",
		Title:       "Draft spec",
		Status:      task.StatusInProgress,
		Completed:   false,
		ParentID:    "tsk_PARENT",
		Priority:    task.PriorityHigh,
		StartDate:   "2025-05-01",
		DueDate:     "2025-05-10",
		Description: "Write the first draft.\n\nKeep it short.",
		Tags:        []string{"docs", "q2"},
		BucketID:    "bucket-1",
		Collapsed:   true,
		Subtasks: []task.Subtask{
			{ID: "a", Title: "Outline", Completed: true},
			{ID: "b", Title: "Intro section", Completed: false},
		},
		Dependencies: []task.Dependency{
			{ID: "tsk_DEP1", Type: task.DepFinishToStart},
		},
		Links: []task.Link{
			{Kind: task.LinkInternal, Target: "Research notes"},
			{Kind: task.LinkExternal, Target: "https://example.com/spec", Title: "Spec template"},
		},
		CreatedAt:  &created,
		ModifiedAt: &modified,
	}
}

func TestEncodeLayout(t *testing.T) {
	tk := sampleTask()
	resolve := func(id string) (task.Task, bool) {
		if id == "tsk_DEP1" {
			return task.Task{ID: id, Title: "Collect requirements"}, true
		}
		return task.Task{}, false
	}
	out := Encode(tk, "Work", resolve)

	if !strings.HasPrefix(out, "---\n") {
		t.Fatalf("expected frontmatter open, got %q", out[:10])
	}
	for _, want := range []string{
		"id: tsk_01HZX4",
		"title: Draft spec",
		"status: In Progress",
		"completed: false",
		"- FS:tsk_DEP1",
		"## Subtasks",
		"- [x] Outline",
		"- [ ] Intro section",
		"## Dependencies",
		"- FS: [[Collect requirements]]",
		"## Links",
		"- [[Research notes]]",
		"- [Spec template](https://example.com/spec)",
		"*Project: Work*",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("encoded note missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Write the first draft.") {
		t.Fatalf("description missing:\n%s", out)
	}
}

func TestEncodeOmitsUnresolvableDependencyRefs(t *testing.T) {
	tk := sampleTask()
	out := Encode(tk, "Work", func(string) (task.Task, bool) { return task.Task{}, false })
	if strings.Contains(out, "## Dependencies") {
		t.Fatalf("unresolvable reference should omit the section:\n%s", out)
	}
	// The metadata token stays regardless.
	if !strings.Contains(out, "- FS:tsk_DEP1") {
		t.Fatalf("dependency token missing:\n%s", out)
	}
}

func TestRoundTrip(t *testing.T) {
	orig := sampleTask()
	decoded, ok := Decode(Encode(orig, "Work", nil))
	if !ok {
		t.Fatal("expected decode to yield a task")
	}

	if decoded.ID != orig.ID || decoded.Title != orig.Title {
		t.Fatalf("identity drifted: %q %q", decoded.ID, decoded.Title)
	}
	if decoded.Status != orig.Status || decoded.Completed != orig.Completed {
		t.Fatalf("status drifted: %q %v", decoded.Status, decoded.Completed)
	}
	if decoded.ParentID != orig.ParentID || decoded.BucketID != orig.BucketID {
		t.Fatalf("hierarchy fields drifted: %q %q", decoded.ParentID, decoded.BucketID)
	}
	if decoded.Priority != orig.Priority || decoded.StartDate != orig.StartDate || decoded.DueDate != orig.DueDate {
		t.Fatalf("scheduling fields drifted: %q %q %q", decoded.Priority, decoded.StartDate, decoded.DueDate)
	}
	if decoded.Description != orig.Description {
		t.Fatalf("description drifted: %q", decoded.Description)
	}
	if !decoded.Collapsed {
		t.Fatal("collapsed flag lost")
	}
	if len(decoded.Tags) != 2 || decoded.Tags[0] != "docs" || decoded.Tags[1] != "q2" {
		t.Fatalf("tags drifted: %#v", decoded.Tags)
	}
	if decoded.CreatedAt == nil || !decoded.CreatedAt.Equal(*orig.CreatedAt) {
		t.Fatalf("createdDate drifted: %v", decoded.CreatedAt)
	}
	if decoded.ModifiedAt == nil || !decoded.ModifiedAt.Equal(*orig.ModifiedAt) {
		t.Fatalf("lastModifiedDate drifted: %v", decoded.ModifiedAt)
	}

	if len(decoded.Dependencies) != 1 || decoded.Dependencies[0] != orig.Dependencies[0] {
		t.Fatalf("dependencies drifted: %#v", decoded.Dependencies)
	}

	// Subtask ids are regenerated; titles and checkbox state must survive.
	if len(decoded.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(decoded.Subtasks))
	}
	if decoded.Subtasks[0].Title != "Outline" || !decoded.Subtasks[0].Completed {
		t.Fatalf("subtask 0 drifted: %#v", decoded.Subtasks[0])
	}
	if decoded.Subtasks[1].Title != "Intro section" || decoded.Subtasks[1].Completed {
		t.Fatalf("subtask 1 drifted: %#v", decoded.Subtasks[1])
	}
	if decoded.Subtasks[0].ID == "" || decoded.Subtasks[0].ID == "a" {
		t.Fatalf("expected a fresh subtask id, got %q", decoded.Subtasks[0].ID)
	}

	if len(decoded.Links) != 2 || decoded.Links[0] != orig.Links[0] || decoded.Links[1] != orig.Links[1] {
		t.Fatalf("links drifted: %#v", decoded.Links)
	}
}

func TestRoundTripMinimalTask(t *testing.T) {
	orig := task.Task{ID: "tsk_MIN", Title: "Tiny", Status: task.StatusNotStarted}
	decoded, ok := Decode(Encode(orig, "Personal", nil))
	if !ok {
		t.Fatal("expected decode to yield a task")
	}
	if decoded.ID != "tsk_MIN" || decoded.Title != "Tiny" {
		t.Fatalf("identity drifted: %#v", decoded)
	}
	if decoded.Description != "" {
		t.Fatalf("expected empty description, got %q", decoded.Description)
	}
	if len(decoded.Subtasks) != 0 || len(decoded.Links) != 0 || len(decoded.Dependencies) != 0 {
		t.Fatalf("phantom collections: %#v", decoded)
	}
}

func TestDecodeRejectsNonTaskInput(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"plain text":       "just a note\nwith lines\n",
		"unclosed fence":   "---\nid: tsk_1\ntitle: x\n",
		"missing id":       "---\ntitle: No id here\nstatus: Not Started\n---\n\nbody\n",
		"missing title":    "---\nid: tsk_1\nstatus: Not Started\n---\n\nbody\n",
		"broken yaml":      "---\nid: [unterminated\n---\n\nbody\n",
		"fence not first":  "intro\n---\nid: tsk_1\ntitle: x\n---\n",
		"whitespace id":    "---\nid: \"  \"\ntitle: x\n---\n\n",
	}
	for name, in := range cases {
		if _, ok := Decode(in); ok {
			t.Fatalf("%s: expected no task", name)
		}
	}
}

func TestDecodeSubtaskLines(t *testing.T) {
	text := "---\nid: tsk_1\ntitle: T\nstatus: Not Started\ncompleted: false\n---\n\n" +
		"## Subtasks\n\n" +
		"- [X] Upper case box\n" +
		"- [ ] Open item\n" +
		"- [] malformed box\n" +
		"- [x]\n" +
		"not a checkbox\n"
	tk, ok := Decode(text)
	if !ok {
		t.Fatal("expected a task")
	}
	if len(tk.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %#v", tk.Subtasks)
	}
	if !tk.Subtasks[0].Completed || tk.Subtasks[0].Title != "Upper case box" {
		t.Fatalf("subtask 0: %#v", tk.Subtasks[0])
	}
	if tk.Subtasks[1].Completed || tk.Subtasks[1].Title != "Open item" {
		t.Fatalf("subtask 1: %#v", tk.Subtasks[1])
	}
}

func TestDecodeLinkLines(t *testing.T) {
	text := "---\nid: tsk_1\ntitle: T\nstatus: Not Started\ncompleted: false\n---\n\n" +
		"## Links\n\n" +
		"- [[Plain internal]]\n" +
		"- [[Aliased|Display name]]\n" +
		"- [Docs](https://example.com/docs)\n" +
		"- [https://example.com](https://example.com)\n" +
		"- [[]]\n" +
		"- random line\n"
	tk, ok := Decode(text)
	if !ok {
		t.Fatal("expected a task")
	}
	if len(tk.Links) != 4 {
		t.Fatalf("expected 4 links, got %#v", tk.Links)
	}
	if tk.Links[0] != (task.Link{Kind: task.LinkInternal, Target: "Plain internal"}) {
		t.Fatalf("link 0: %#v", tk.Links[0])
	}
	if tk.Links[1] != (task.Link{Kind: task.LinkInternal, Target: "Aliased", Title: "Display name"}) {
		t.Fatalf("link 1: %#v", tk.Links[1])
	}
	if tk.Links[2] != (task.Link{Kind: task.LinkExternal, Target: "https://example.com/docs", Title: "Docs"}) {
		t.Fatalf("link 2: %#v", tk.Links[2])
	}
	if tk.Links[3] != (task.Link{Kind: task.LinkExternal, Target: "https://example.com"}) {
		t.Fatalf("link 3: %#v", tk.Links[3])
	}
}

func TestDecodeIgnoresDependencySectionLines(t *testing.T) {
	text := "---\nid: tsk_1\ntitle: T\nstatus: Not Started\ncompleted: false\n" +
		"dependencies:\n  - FS:tsk_REAL\n  - garbage-token\n---\n\n" +
		"## Dependencies\n\n" +
		"- FS: [[Some stale title]]\n"
	tk, ok := Decode(text)
	if !ok {
		t.Fatal("expected a task")
	}
	if len(tk.Dependencies) != 1 {
		t.Fatalf("expected 1 dependency from metadata, got %#v", tk.Dependencies)
	}
	if tk.Dependencies[0].ID != "tsk_REAL" || tk.Dependencies[0].Type != "FS" {
		t.Fatalf("dependency drifted: %#v", tk.Dependencies[0])
	}
}

func TestDecodeDescriptionStopsAtFirstHeading(t *testing.T) {
	text := "---\nid: tsk_1\ntitle: T\nstatus: Not Started\ncompleted: false\n---\n\n" +
		"Line one.\nLine two.\n\n## Scratchpad\n\nhidden notes\n\n## Subtasks\n\n- [ ] a\n"
	tk, ok := Decode(text)
	if !ok {
		t.Fatal("expected a task")
	}
	if tk.Description != "Line one.\nLine two." {
		t.Fatalf("description drifted: %q", tk.Description)
	}
	if len(tk.Subtasks) != 1 {
		t.Fatalf("sections after an unknown one must still parse: %#v", tk.Subtasks)
	}
}

func TestDecodeStripsProjectFooter(t *testing.T) {
	text := "---\nid: tsk_1\ntitle: T\nstatus: Not Started\ncompleted: false\n---\n\n" +
		"Only description here.\n\n---\n*Project: Work*\n"
	tk, ok := Decode(text)
	if !ok {
		t.Fatal("expected a task")
	}
	if tk.Description != "Only description here." {
		t.Fatalf("footer leaked into description: %q", tk.Description)
	}
}

func TestSanitizeTitle(t *testing.T) {
	cases := map[string]string{
		"Draft spec":        "Draft spec",
		`a/b\c:d*e?f"g<h>i|j`: "a-b-c-d-e-f-g-h-i-j",
		"  padded  ":        "padded",
		"":                  "Untitled",
		`///`:               "---",
	}
	for in, want := range cases {
		if got := SanitizeTitle(in); got != want {
			t.Fatalf("SanitizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTaskFilePath(t *testing.T) {
	got := TaskFilePath("/vault", "Work", "Draft spec")
	want := "/vault/Work/Tasks/Draft spec.md"
	if got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
	got = TaskFilePath("/vault", "Work", `bad/title`)
	want = "/vault/Work/Tasks/bad-title.md"
	if got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}
