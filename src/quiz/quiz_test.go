package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Capital of France?", []string{"Paris", "Lyon\nCity"})

	assert.Contains(t, p, "Given the title 'Capital of France?'")
	assert.Contains(t, p, `["Paris", "Lyon\nCity"]`)
	assert.Contains(t, p, "<ANSWER>answer goes here</ANSWER>")
	assert.Contains(t, p, "You MUST follow that format.")
}

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		want   string
		wantOK bool
	}{
		{"trailing tag", "Reasoning...\n<ANSWER> Paris </ANSWER>", "Paris", true},
		{"first tag wins", "<ANSWER>A</ANSWER> then <ANSWER>B</ANSWER>", "A", true},
		{"multiline", "<ANSWER>\nThe Nile\n</ANSWER>", "The Nile", true},
		{"no tags", "I think it is Paris", "", false},
		{"missing close", "<ANSWER>Paris", "", false},
		{"close before open", "</ANSWER> oops <ANSWER>Paris", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAnswer(tt.reply)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchOption(t *testing.T) {
	options := []string{"The Amazon River\n", "the NILE river", "Yangtze"}

	assert.Equal(t, 1, MatchOption("Nile", options))
	assert.Equal(t, 0, MatchOption("river", options), "first containing option wins")
	assert.Equal(t, 2, MatchOption("  yangtze ", options))
	assert.Equal(t, -1, MatchOption("Danube", options))
	assert.Equal(t, -1, MatchOption("", options))
}
