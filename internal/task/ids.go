package task

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// timeNow is swapped in tests for deterministic ids.
var timeNow = func() time.Time { return time.Now().UTC() }

// NewTaskID returns a "tsk_"-prefixed ULID.
func NewTaskID() string { return "tsk_" + newULID() }

// NewProjectID returns a "prj_"-prefixed ULID.
func NewProjectID() string { return "prj_" + newULID() }

// NewSubtaskID returns a UUID for a checklist item.
func NewSubtaskID() string { return uuid.NewString() }

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}
