// Package quiz holds the prompt template sent with every question and the
// parsing of the model's tagged answer.
package quiz

import (
	"strconv"
	"strings"
)

const (
	AnswerOpenTag  = "<ANSWER>"
	AnswerCloseTag = "</ANSWER>"
)

// BuildPrompt renders the instruction for one question. Options are listed
// as a bracketed, quoted sequence so that line breaks inside OCR'd text do
// not blur the boundaries between options.
func BuildPrompt(title string, options []string) string {
	var b strings.Builder
	b.WriteString("Given the title '")
	b.WriteString(title)
	b.WriteString("' and the following answer options: ")
	b.WriteString(formatOptions(options))
	b.WriteString(", please determine which one is correct. ")
	b.WriteString("If the image is necessary to answer the question, analyze it carefully. ")
	b.WriteString("If the question can be answered without the image, you may disregard it. ")
	b.WriteString("Please explain your reasoning. ")
	b.WriteString("After you've determined the answer, end your response with the correct answer on its own line, with this format ")
	b.WriteString(AnswerOpenTag + "answer goes here" + AnswerCloseTag)
	b.WriteString(". You MUST follow that format.")
	return b.String()
}

func formatOptions(options []string) string {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = strconv.Quote(o)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
