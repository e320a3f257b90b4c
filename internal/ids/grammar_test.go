package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMachineID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"pure digits", "M1", true},
		{"zero padded digits", "M001", true},
		{"digits then underscore digits", "M2_123", true},
		{"digits then underscore words", "M1_ASSEMBLY_2", true},
		{"digits then trailing underscore", "M2_", true},
		{"underscore word", "M_WIDGET", true},
		{"underscore mixed", "M_1A", true},
		{"underscore lowercase word", "M_press", true},
		{"underscore digits only", "M_1", false},
		{"underscore only", "M_", false},
		{"double underscore no letter", "M__", false},
		{"letters after digits without underscore", "M1A", false},
		{"letter suffix", "MWIDGET", false},
		{"hyphen", "M-1", false},
		{"space", "M 1", false},
		{"punctuation", "M1!", false},
		{"empty", "", false},
		{"prefix only", "M", false},
		{"lowercase prefix", "m1", false},
		{"doubled prefix", "MM1", false},
		{"job id", "J1", false},
		{"leading space", " M1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMachineID(tt.input))
		})
	}
}

func TestIsJobID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"J1", true},
		{"J042", true},
		{"J7_RUSH", true},
		{"J_EXPORT", true},
		{"J_42", false},
		{"JJ1", false},
		{"j1", false},
		{"M1", false},
		{"J1-2", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJobID(tt.input))
		})
	}
}

func TestPrefixesAreDisjoint(t *testing.T) {
	suffixes := []string{"1", "001", "2_123", "_WIDGET", "_1", "A", "", "1A", "_"}

	for _, suffix := range suffixes {
		m := MachinePrefix + suffix
		j := JobPrefix + suffix

		assert.False(t, IsMachineID(m) && IsJobID(m), "%q classified as both", m)
		assert.False(t, IsMachineID(j), "%q must never be a machine id", j)
		assert.False(t, IsJobID(m), "%q must never be a job id", m)
		assert.Equal(t, IsMachineID(m), IsJobID(j), "suffix %q should classify the same under both prefixes", suffix)

		if IsMachineID(m) {
			assert.False(t, IsMachineID("m"+suffix), "lowercase prefix must be rejected")
		}
	}
}

func TestGrammarTotality(t *testing.T) {
	// Every printable ASCII two- and three-character string terminates with a decision
	var sb strings.Builder
	for c := byte(32); c < 127; c++ {
		for _, prefix := range []string{"M", "J", "m", ""} {
			sb.Reset()
			sb.WriteString(prefix)
			sb.WriteByte(c)
			s := sb.String()

			valid := IsMachineID(s)
			if valid {
				assert.True(t, c >= '0' && c <= '9', "only digit suffixes are valid at length 1, got %q", s)
				assert.Equal(t, "M", prefix)
			}
			_ = IsJobID(s)
		}
	}
}
