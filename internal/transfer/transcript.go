package transfer

import (
	"fmt"
	"strings"
)

// Transcript is the ordered, human-readable record of one copy run
type Transcript []string

// SkipAccountLine is recorded when source and destination share an account
const SkipAccountLine = "skipping account copy - accounts are the same"

// action names a per-item operation in its progressive and past forms
type action struct {
	doing string
	done  string
}

var (
	actionCopy   = action{doing: "copying", done: "copied"}
	actionRemove = action{doing: "removing", done: "removed"}
)

func (t *Transcript) add(line string) {
	*t = append(*t, line)
}

// attempt runs op and records exactly one line for it. The error is
// returned for logging only; a failed item never stops the run.
func (t *Transcript) attempt(a action, name string, op func() error) error {
	if err := op(); err != nil {
		t.add(fmt.Sprintf("error %s %s: %v", a.doing, name, err))
		return err
	}
	t.add(a.done + " " + name)
	return nil
}

// Lines returns a copy of the transcript lines
func (t Transcript) Lines() []string {
	out := make([]string, len(t))
	copy(out, t)
	return out
}

func (t Transcript) String() string {
	return strings.Join(t, "\n")
}

// WithOutcome returns the transcript as it should be shown to the user:
// when the run failed, a final line describes the cause.
func WithOutcome(t Transcript, err error) Transcript {
	out := t.Lines()
	if err != nil {
		out = append(out, "aborted: "+err.Error())
	}
	return out
}

// Failures counts the per-item error lines
func (t Transcript) Failures() int {
	n := 0
	for _, line := range t {
		if strings.HasPrefix(line, "error ") {
			n++
		}
	}
	return n
}
