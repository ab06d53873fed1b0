// Package question detects when the on-screen question changes by watching
// the OCR'd "Q<n> of <m>" label.
package question

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Tesseract often reads "of" as "0f" or "o0f".
var labelPattern = regexp.MustCompile(`^Q(\d+)(?:of|0f|o0f)(\d+)`)

// Label is a parsed question-number reading.
type Label struct {
	Text   string // whitespace-stripped OCR text
	Number int
	Total  int
}

// Key identifies the question regardless of how "of" was read.
func (l Label) Key() string { return fmt.Sprintf("Q%dof%d", l.Number, l.Total) }

// Parse recognises a question-number label in raw OCR text.
func Parse(raw string) (Label, bool) {
	text := stripSpace(raw)
	m := labelPattern.FindStringSubmatch(text)
	if m == nil {
		return Label{}, false
	}
	n, err1 := strconv.Atoi(m[1])
	total, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return Label{}, false
	}
	return Label{Text: text, Number: n, Total: total}, true
}

// Observation is the tracker's verdict on one reading.
type Observation struct {
	Label      Label
	Recognized bool
	// Streak counts consecutive identical readings of a new label.
	Streak int
	// Ready is set once per new question, when the streak reaches the
	// threshold.
	Ready bool
}

// Tracker debounces question-number readings. Not safe for concurrent use.
type Tracker struct {
	threshold int
	handled   string
	candidate string
	streak    int
}

// NewTracker requires threshold consecutive identical readings of a new
// label before reporting it. threshold < 1 is treated as 1.
func NewTracker(threshold int) *Tracker {
	if threshold < 1 {
		threshold = 1
	}
	return &Tracker{threshold: threshold}
}

// Observe feeds one OCR reading. Unrecognised text leaves the state
// untouched.
func (t *Tracker) Observe(raw string) Observation {
	label, ok := Parse(raw)
	if !ok {
		return Observation{}
	}

	obs := Observation{Label: label, Recognized: true}
	key := label.Key()
	if key == t.handled {
		t.candidate = ""
		t.streak = 0
		return obs
	}

	if key == t.candidate {
		t.streak++
	} else {
		t.candidate = key
		t.streak = 1
	}
	obs.Streak = t.streak

	if t.streak >= t.threshold {
		obs.Ready = true
		t.handled = key
		t.candidate = ""
		t.streak = 0
	}
	return obs
}

// Handled returns the key of the last question reported Ready.
func (t *Tracker) Handled() string { return t.handled }

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
