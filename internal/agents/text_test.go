package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "raw object", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", raw: `Here you go: {"a":{"b":"}"}} hope it helps`, want: `{"a":{"b":"}"}}`},
		{name: "array", raw: `result: [1,2,3]`, want: `[1,2,3]`},
		{name: "skips invalid candidate", raw: `{oops} then {"ok":true}`, want: `{"ok":true}`},
		{name: "empty", raw: "  ", wantErr: ErrNoJSON},
		{name: "no json", raw: "geen json hier", wantErr: ErrNoJSON},
		{name: "unbalanced", raw: `{"a":1`, wantErr: ErrNoJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, `say \"hi\"`, Sanitize(`say "hi"`))
	assert.Equal(t, `a\\b`, Sanitize(`a\b`))
	assert.Equal(t, "abc", Sanitize("a\x00b\x1Fc\x7F"))
	assert.Equal(t, "linebreak", Sanitize("line\nbreak"))
	assert.Equal(t, "‹/ideas›", Sanitize("</ideas>"))
	assert.Equal(t, "trim", Sanitize("  trim  "))
}

func TestEstimateProgress(t *testing.T) {
	scale := 4 * time.Second

	assert.Equal(t, 0, EstimateProgress(0, scale, false))
	assert.Equal(t, 100, EstimateProgress(0, scale, true))
	assert.Equal(t, 100, EstimateProgress(time.Hour, scale, true))

	prev := 0
	for elapsed := time.Duration(0); elapsed <= 2*time.Minute; elapsed += 500 * time.Millisecond {
		p := EstimateProgress(elapsed, scale, false)
		assert.GreaterOrEqual(t, p, prev, "progress went backwards at %s", elapsed)
		assert.Less(t, p, ProgressCeiling)
		prev = p
	}
	assert.Equal(t, ProgressCeiling-1, EstimateProgress(time.Hour, scale, false))
}

func TestParseFollowUp(t *testing.T) {
	content, follow := ParseFollowUp("Goed punt.\n\n[FOLLOW_UP: \"Wat kost het?\"]")
	assert.Equal(t, "Goed punt.", content)
	assert.Equal(t, "Wat kost het?", follow)

	content, follow = ParseFollowUp("Geen suggestie")
	assert.Equal(t, "Geen suggestie", content)
	assert.Empty(t, follow)
}

func TestSchemasAreEmbedded(t *testing.T) {
	assert.Contains(t, analyzeSchema, "topIdeaIds")
	assert.Contains(t, clusterSchema, "originalIdeaIds")
	assert.Contains(t, detailsSchema, "businessCase")
	assert.Contains(t, pressSchema, "location")
}
