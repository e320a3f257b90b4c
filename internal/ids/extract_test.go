package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractExplicitIDs(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantMachines []string
		wantJobs     []string
	}{
		{
			name:         "simple listing",
			text:         "We have M1, M2, M3. Jobs J1, J2, J3, J4.",
			wantMachines: []string{"M1", "M2", "M3"},
			wantJobs:     []string{"J1", "J2", "J3", "J4"},
		},
		{
			name:         "word boundary blocks embedded ids",
			text:         "EM1 and XJ2 are part numbers, M4 is a machine",
			wantMachines: []string{"M4"},
			wantJobs:     []string{},
		},
		{
			name:         "underscore forms",
			text:         "Route J_EXPORT through M_PAINT then M2_123; ignore M_1.",
			wantMachines: []string{"M2_123", "M_PAINT"},
			wantJobs:     []string{"J_EXPORT"},
		},
		{
			name:         "punctuation and parentheses",
			text:         "(M1) takes 2h; J1's due at 10. Then M1-M2 handoff.",
			wantMachines: []string{"M1", "M2"},
			wantJobs:     []string{"J1"},
		},
		{
			name:         "lowercase and suffix letters ignored",
			text:         "m1 j1 M1A J2B",
			wantMachines: []string{},
			wantJobs:     []string{},
		},
		{
			name:         "no ids",
			text:         "A small shop with a lathe and a drill.",
			wantMachines: []string{},
			wantJobs:     []string{},
		},
		{
			name:         "empty text",
			text:         "",
			wantMachines: []string{},
			wantJobs:     []string{},
		},
		{
			name:         "duplicates collapse",
			text:         "M1 then M1 again, J1 J1 J1",
			wantMachines: []string{"M1"},
			wantJobs:     []string{"J1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractExplicitIDs(tt.text)
			assert.Equal(t, tt.wantMachines, got.MachineIDs.Sorted())
			assert.Equal(t, tt.wantJobs, got.JobIDs.Sorted())
		})
	}
}

func TestExtractExplicitIDs_OrderIndependentAndIdempotent(t *testing.T) {
	a := ExtractExplicitIDs("M1 M2 J1 J2")
	b := ExtractExplicitIDs("J2 J1 M2 M1")

	assert.True(t, a.MachineIDs.Equal(b.MachineIDs))
	assert.True(t, a.JobIDs.Equal(b.JobIDs))

	again := ExtractExplicitIDs("M1 M2 J1 J2")
	assert.Equal(t, a.MachineIDs.Sorted(), again.MachineIDs.Sorted())
	assert.Equal(t, a.JobIDs.Sorted(), again.JobIDs.Sorted())
}
