package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw    string
		number int
		total  int
		ok     bool
	}{
		{"Q3 of 10", 3, 10, true},
		{"Q 12 of 20\n", 12, 20, true},
		{"Q40f10", 4, 10, true},
		{"Q5 o0f 12", 5, 12, true},
		{"Q120f20", 12, 20, true},
		{"Question 3 of 10", 0, 0, false},
		{"q3 of 10", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			l, ok := Parse(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.number, l.Number)
			assert.Equal(t, tt.total, l.Total)
		})
	}
}

func TestTrackerFiresAfterStableReads(t *testing.T) {
	tr := NewTracker(3)

	for i := 1; i < 3; i++ {
		obs := tr.Observe("Q1 of 10")
		assert.True(t, obs.Recognized)
		assert.False(t, obs.Ready)
		assert.Equal(t, i, obs.Streak)
	}
	obs := tr.Observe("Q1 of 10")
	assert.True(t, obs.Ready)
	assert.Equal(t, "Q1of10", tr.Handled())

	// Same question keeps being read: nothing new.
	for i := 0; i < 5; i++ {
		assert.False(t, tr.Observe("Q1 of 10").Ready)
	}
}

func TestTrackerIgnoresWhitespaceNoise(t *testing.T) {
	tr := NewTracker(2)
	tr.Observe("Q2 of 10")
	assert.True(t, tr.Observe("Q2of 10\n").Ready)
}

func TestTrackerTreatsOfMisreadsAsOneQuestion(t *testing.T) {
	tr := NewTracker(5)
	reads := []string{"Q3 of 10", "Q3 0f 10", "Q3 of 10", "Q3 0f 10"}
	for i, raw := range reads {
		obs := tr.Observe(raw)
		assert.Equal(t, i+1, obs.Streak)
		assert.False(t, obs.Ready)
	}
	assert.True(t, tr.Observe("Q3 o0f 10").Ready)
	assert.Equal(t, "Q3of10", tr.Handled())

	// Handled question read with another spelling does not fire again.
	for i := 0; i < 6; i++ {
		assert.False(t, tr.Observe("Q3 0f 10").Ready)
	}
}

func TestTrackerFlickerRestartsStreak(t *testing.T) {
	tr := NewTracker(3)
	tr.Observe("Q2 of 10")
	tr.Observe("Q2 of 10")
	obs := tr.Observe("Q3 of 10")
	assert.Equal(t, 1, obs.Streak)
	assert.False(t, obs.Ready)
}

func TestTrackerUnrecognizedKeepsState(t *testing.T) {
	tr := NewTracker(3)
	tr.Observe("Q2 of 10")
	tr.Observe("Q2 of 10")

	obs := tr.Observe("loading...")
	assert.False(t, obs.Recognized)

	assert.True(t, tr.Observe("Q2 of 10").Ready)
}

func TestTrackerReturnToHandledResetsStreak(t *testing.T) {
	tr := NewTracker(2)
	tr.Observe("Q1 of 5")
	assert.True(t, tr.Observe("Q1 of 5").Ready)

	tr.Observe("Q2 of 5")
	tr.Observe("Q1 of 5") // back on the handled question
	obs := tr.Observe("Q2 of 5")
	assert.Equal(t, 1, obs.Streak)
	assert.False(t, obs.Ready)
}

func TestNewTrackerClampsThreshold(t *testing.T) {
	tr := NewTracker(0)
	assert.True(t, tr.Observe("Q1 of 1").Ready)
}
