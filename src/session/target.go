package session

import (
	"errors"
	"fmt"
	"io"
	"os"

	"quiz-ocr-llm/src/clipboard"
	"quiz-ocr-llm/src/report"
)

// ResultTarget receives the outcome of each round.
type ResultTarget interface {
	OnSuccess(res Result) error
	OnFailure(question string, err error) error
}

// ConsoleTarget prints a rendered report.
type ConsoleTarget struct {
	Writer io.Writer
	Styles report.Styles
}

func NewConsoleTarget(w io.Writer) ConsoleTarget {
	return ConsoleTarget{Writer: w, Styles: report.DefaultStyles()}
}

func (t ConsoleTarget) OnSuccess(res Result) error {
	_, err := fmt.Fprintln(t.writer(), report.Render(t.Styles, report.Entry{
		Question:    res.Question,
		Title:       res.Title,
		Options:     res.Options,
		Answer:      res.Answer,
		OptionIndex: res.OptionIndex,
	}))
	return err
}

func (t ConsoleTarget) OnFailure(question string, err error) error {
	_, werr := fmt.Fprintln(t.writer(), report.RenderError(t.Styles, question, err))
	return werr
}

func (t ConsoleTarget) writer() io.Writer {
	if t.Writer == nil {
		return os.Stdout
	}
	return t.Writer
}

// ClipboardTarget copies the chosen option.
type ClipboardTarget struct {
	Write func(string) error
}

func (t ClipboardTarget) OnSuccess(res Result) error {
	write := t.Write
	if write == nil {
		write = clipboard.Write
	}
	if text := res.Matched(); text != "" {
		return write(text)
	}
	return nil
}

func (ClipboardTarget) OnFailure(string, error) error { return nil }

// MultiTarget fans out to every target and joins their errors.
type MultiTarget []ResultTarget

func (m MultiTarget) OnSuccess(res Result) error {
	var errs []error
	for _, t := range m {
		errs = append(errs, t.OnSuccess(res))
	}
	return errors.Join(errs...)
}

func (m MultiTarget) OnFailure(question string, err error) error {
	var errs []error
	for _, t := range m {
		errs = append(errs, t.OnFailure(question, err))
	}
	return errors.Join(errs...)
}
