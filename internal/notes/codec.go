// Package notes converts tasks to and from their markdown note form. The
// codec is pure text transformation; reading and writing files is the file
// store's job.
package notes

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/plannersync/internal/task"
)

// Resolver looks up a task by id so dependency references can be rendered
// with the predecessor's title. A nil resolver omits the section.
type Resolver func(id string) (task.Task, bool)

// noteMeta is the frontmatter block. Dependencies travel as compact
// "TYPE:predecessorId" tokens; subtasks and links live in the body.
type noteMeta struct {
	ID           string     `yaml:"id"`
	Title        string     `yaml:"title"`
	Status       string     `yaml:"status"`
	Completed    bool       `yaml:"completed"`
	ParentID     string     `yaml:"parentId,omitempty"`
	Priority     string     `yaml:"priority,omitempty"`
	BucketID     string     `yaml:"bucketId,omitempty"`
	StartDate    string     `yaml:"startDate,omitempty"`
	DueDate      string     `yaml:"dueDate,omitempty"`
	Tags         []string   `yaml:"tags,omitempty"`
	Collapsed    bool       `yaml:"collapsed,omitempty"`
	CreatedAt    *time.Time `yaml:"createdDate,omitempty"`
	ModifiedAt   *time.Time `yaml:"lastModifiedDate,omitempty"`
	Dependencies []string   `yaml:"dependencies,omitempty"`
}

var (
	checkboxRe = regexp.MustCompile(`^- \[( |x|X)\] (.*)$`)
	wikiLinkRe = regexp.MustCompile(`^- \[\[([^\]]+)\]\]$`)
	mdLinkRe   = regexp.MustCompile(`^- \[([^\]]*)\]\(([^)]+)\)$`)
	footerRe   = regexp.MustCompile(`^\*Project: .*\*$`)
)

// Encode renders a task as note text: frontmatter, description, checklist,
// resolved dependency references, links and the owning-project footer.
func Encode(t task.Task, projectName string, resolve Resolver) string {
	meta := noteMeta{
		ID:         t.ID,
		Title:      t.Title,
		Status:     t.Status,
		Completed:  t.Completed,
		ParentID:   t.ParentID,
		Priority:   t.Priority,
		BucketID:   t.BucketID,
		StartDate:  t.StartDate,
		DueDate:    t.DueDate,
		Tags:       t.Tags,
		Collapsed:  t.Collapsed,
		CreatedAt:  t.CreatedAt,
		ModifiedAt: t.ModifiedAt,
	}
	for _, d := range t.Dependencies {
		meta.Dependencies = append(meta.Dependencies, d.Token())
	}

	yamlBytes, err := yaml.Marshal(&meta)
	if err != nil {
		// Only unmarshalable custom types can fail here; meta has none.
		yamlBytes = []byte(fmt.Sprintf("id: %s\ntitle: %s\n", t.ID, t.Title))
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(yamlBytes)
	b.WriteString("---\n\n")

	if desc := strings.TrimSpace(t.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n")
	}

	if len(t.Subtasks) > 0 {
		b.WriteString("\n## Subtasks\n\n")
		for _, s := range t.Subtasks {
			box := " "
			if s.Completed {
				box = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", box, s.Title)
		}
	}

	if resolve != nil && len(t.Dependencies) > 0 {
		var lines []string
		for _, d := range t.Dependencies {
			pred, ok := resolve(d.ID)
			if !ok || strings.TrimSpace(pred.Title) == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s: [[%s]]", d.Type, pred.Title))
		}
		if len(lines) > 0 {
			b.WriteString("\n## Dependencies\n\n")
			for _, l := range lines {
				b.WriteString(l)
				b.WriteString("\n")
			}
		}
	}

	if len(t.Links) > 0 {
		b.WriteString("\n## Links\n\n")
		for _, l := range t.Links {
			switch {
			case l.Kind == task.LinkExternal:
				title := strings.TrimSpace(l.Title)
				if title == "" {
					title = l.Target
				}
				fmt.Fprintf(&b, "- [%s](%s)\n", title, l.Target)
			case strings.TrimSpace(l.Title) != "":
				fmt.Fprintf(&b, "- [[%s|%s]]\n", l.Target, l.Title)
			default:
				fmt.Fprintf(&b, "- [[%s]]\n", l.Target)
			}
		}
	}

	fmt.Fprintf(&b, "\n---\n*Project: %s*\n", projectName)
	return b.String()
}

// Decode parses note text back into a task. The second return is false when
// the text is not a task note at all: no frontmatter block, unparseable
// frontmatter, or missing id or title. Subtask ids are regenerated; the
// display-only dependency section is skipped (the frontmatter tokens are
// authoritative).
func Decode(text string) (task.Task, bool) {
	s := strings.ReplaceAll(text, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return task.Task{}, false
	}
	parts := strings.SplitN(s, "\n---\n", 2)
	if len(parts) != 2 {
		return task.Task{}, false
	}
	yamlPart := strings.TrimPrefix(parts[0], "---\n")
	var meta noteMeta
	if err := yaml.Unmarshal([]byte(yamlPart), &meta); err != nil {
		return task.Task{}, false
	}
	if strings.TrimSpace(meta.ID) == "" || strings.TrimSpace(meta.Title) == "" {
		return task.Task{}, false
	}

	t := task.Task{
		ID:         strings.TrimSpace(meta.ID),
		Title:      strings.TrimSpace(meta.Title),
		Status:     meta.Status,
		Completed:  meta.Completed,
		ParentID:   meta.ParentID,
		Priority:   meta.Priority,
		BucketID:   meta.BucketID,
		StartDate:  meta.StartDate,
		DueDate:    meta.DueDate,
		Tags:       meta.Tags,
		Collapsed:  meta.Collapsed,
		CreatedAt:  meta.CreatedAt,
		ModifiedAt: meta.ModifiedAt,
	}
	for _, tok := range meta.Dependencies {
		if d, ok := task.ParseDependencyToken(tok); ok {
			t.Dependencies = append(t.Dependencies, d)
		}
	}

	desc, subtasks, links := parseBody(parts[1])
	t.Description = desc
	t.Subtasks = subtasks
	t.Links = links
	return t, true
}

// parseBody walks the note body line by line: free text up to the first
// section heading is the description, known sections collect their items,
// unknown sections are skipped, the project footer ends the scan.
func parseBody(body string) (string, []task.Subtask, []task.Link) {
	lines := strings.Split(body, "\n")
	var desc []string
	var subtasks []task.Subtask
	var links []task.Link
	section := ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "## ") {
			section = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")))
			continue
		}
		if footerRe.MatchString(trimmed) {
			break
		}
		if trimmed == "---" && i+1 < len(lines) && footerRe.MatchString(strings.TrimSpace(lines[i+1])) {
			break
		}

		switch section {
		case "":
			desc = append(desc, line)
		case "subtasks":
			if m := checkboxRe.FindStringSubmatch(trimmed); m != nil {
				title := strings.TrimSpace(m[2])
				if title == "" {
					continue
				}
				subtasks = append(subtasks, task.Subtask{
					ID:        task.NewSubtaskID(),
					Title:     title,
					Completed: m[1] == "x" || m[1] == "X",
				})
			}
		case "links":
			if l, ok := parseLinkLine(trimmed); ok {
				links = append(links, l)
			}
		default:
			// Dependencies section and anything unrecognized: display only.
		}
	}

	return strings.TrimSpace(strings.Join(desc, "\n")), subtasks, links
}

func parseLinkLine(line string) (task.Link, bool) {
	if m := wikiLinkRe.FindStringSubmatch(line); m != nil {
		target := m[1]
		title := ""
		if idx := strings.Index(target, "|"); idx >= 0 {
			title = strings.TrimSpace(target[idx+1:])
			target = target[:idx]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			return task.Link{}, false
		}
		return task.Link{Kind: task.LinkInternal, Target: target, Title: title}, true
	}
	if m := mdLinkRe.FindStringSubmatch(line); m != nil {
		target := strings.TrimSpace(m[2])
		if target == "" {
			return task.Link{}, false
		}
		title := strings.TrimSpace(m[1])
		if title == target {
			// Untitled links render with the URL as display text.
			title = ""
		}
		return task.Link{Kind: task.LinkExternal, Target: target, Title: title}, true
	}
	return task.Link{}, false
}
