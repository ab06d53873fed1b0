package quiz

import "strings"

// ExtractAnswer returns the trimmed text between the first <ANSWER> and the
// </ANSWER> that follows it.
func ExtractAnswer(reply string) (string, bool) {
	start := strings.Index(reply, AnswerOpenTag)
	if start == -1 {
		return "", false
	}
	start += len(AnswerOpenTag)
	end := strings.Index(reply[start:], AnswerCloseTag)
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(reply[start : start+end]), true
}

// MatchOption returns the index of the first option that contains answer,
// ignoring case, or -1.
func MatchOption(answer string, options []string) int {
	needle := strings.ToLower(strings.TrimSpace(answer))
	if needle == "" {
		return -1
	}
	for i, o := range options {
		if strings.Contains(strings.ToLower(o), needle) {
			return i
		}
	}
	return -1
}
