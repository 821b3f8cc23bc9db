package commands

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/plannersync/internal/store"
	"github.com/amirbrooks/plannersync/internal/task"
)

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: ExitOK},
		{name: "invalid", err: fmt.Errorf("%w: bad flag", store.ErrInvalid), expected: ExitUsage},
		{name: "not found", err: notFoundErr("tsk_x"), expected: ExitNotFound},
		{name: "wrapped not found", err: fmt.Errorf("context: %w", notFoundErr("tsk_x")), expected: ExitNotFound},
		{name: "anything else", err: errors.New("disk on fire"), expected: ExitInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, exitCode(tc.err))
		})
	}
}

func TestArgValidatorsWrapInvalid(t *testing.T) {
	err := exactArgs(1)(showCmd, []string{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrInvalid))

	err = exactArgs(1)(showCmd, []string{"a"})
	assert.NoError(t, err)

	err = minArgs(1)(addCmd, []string{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrInvalid))

	err = minArgs(1)(addCmd, []string{"a", "b"})
	assert.NoError(t, err)
}

func TestShortID(t *testing.T) {
	long := task.NewTaskID()
	assert.Len(t, shortID(long), 14)
	assert.Equal(t, "tsk_short", shortID("tsk_short"))
}

func TestRenderTree(t *testing.T) {
	parent := task.Task{ID: "tsk_parent", Title: "Plan launch", Status: "In Progress", Priority: "High"}
	child := task.Task{ID: "tsk_child", Title: "Book venue", Status: "Not Started", Priority: "Medium", ParentID: "tsk_parent"}
	grand := task.Task{ID: "tsk_grand", Title: "Pay deposit", Status: "Not Started", Priority: "Medium", ParentID: "tsk_child"}
	loose := task.Task{ID: "tsk_loose", Title: "Orphan", Status: "Completed", Completed: true, ParentID: "tsk_gone"}

	var buf bytes.Buffer
	renderTree(&buf, []task.Task{parent, child, grand, loose})
	out := buf.String()

	assert.Contains(t, out, "Plan launch")
	assert.Contains(t, out, "  Book venue")
	assert.Contains(t, out, "    Pay deposit")

	// A missing parent renders the child at the root: its row starts in the
	// checkbox column, not indented under anything.
	var orphanLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Orphan") {
			orphanLine = line
		}
	}
	require.NotEmpty(t, orphanLine)
	assert.True(t, strings.HasPrefix(orphanLine, "[x]"))

	// Collapsing the parent folds the whole subtree away.
	parent.Collapsed = true
	buf.Reset()
	renderTree(&buf, []task.Task{parent, child, grand, loose})
	out = buf.String()
	assert.Contains(t, out, "[+1]")
	assert.NotContains(t, out, "Book venue")
	assert.NotContains(t, out, "Pay deposit")
}
