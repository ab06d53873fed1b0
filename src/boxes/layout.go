package boxes

import (
	"fmt"

	"quiz-ocr-llm/src/screenshot"
)

// Layout names the calibrated regions by role.
type Layout struct {
	// QuestionNumber is nil in hotkey mode.
	QuestionNumber *screenshot.Region
	Title          screenshot.Region
	Image          screenshot.Region
	Options        []screenshot.Region
}

// Assign splits regions in calibration order: [question number,] title,
// image, then the options.
func Assign(regions []screenshot.Region, withQuestionNumber bool) (Layout, error) {
	fixed := 2
	if withQuestionNumber {
		fixed = 3
	}
	if len(regions) <= fixed {
		return Layout{}, fmt.Errorf("need more than %d regions, got %d", fixed, len(regions))
	}

	var l Layout
	rest := regions
	if withQuestionNumber {
		qn := rest[0]
		l.QuestionNumber = &qn
		rest = rest[1:]
	}
	l.Title = rest[0]
	l.Image = rest[1]
	l.Options = append([]screenshot.Region(nil), rest[2:]...)
	return l, nil
}

// Names labels each calibration step for the selector's prompt.
func Names(optionCount int, withQuestionNumber bool) []string {
	var names []string
	if withQuestionNumber {
		names = append(names, "question number")
	}
	names = append(names, "title", "image")
	for i := 1; i <= optionCount; i++ {
		names = append(names, fmt.Sprintf("option %d", i))
	}
	return names
}
