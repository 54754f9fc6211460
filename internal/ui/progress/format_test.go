package progress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineState(t *testing.T) {
	tests := []struct {
		line string
		want State
	}{
		{"copied Foo.lua", StateComplete},
		{"removed cache.md5", StateComplete},
		{"error copying AddOns.txt: no such file or directory", StateError},
		{"error removing cache.md5: no such file or directory", StateError},
		{"aborted: account phase: failed to list /wow/SavedVariables", StateError},
		{"skipping account copy - accounts are the same", StatePending},
		{"destination saved-variables directory missing, creating: /wow/x", StatePending},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, LineState(tt.line))
		})
	}
}

func TestRenderTranscript(t *testing.T) {
	t.Setenv("WTFCOPY_NERD_FONTS", "")

	out := RenderTranscript([]string{"copied Foo.lua", "error copying Bar.lua: gone"})
	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	assert.Len(t, rows, 2)
	assert.Contains(t, rows[0], "copied Foo.lua")
	assert.Contains(t, rows[0], ASCIIIcons.Check)
	assert.Contains(t, rows[1], "error copying Bar.lua: gone")
	assert.Contains(t, rows[1], ASCIIIcons.Cross)
}
