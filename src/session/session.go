// Package session runs one solve round: read the question off the screen,
// ask the model, and match its answer back to an option.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"quiz-ocr-llm/src/boxes"
	"quiz-ocr-llm/src/llm"
	"quiz-ocr-llm/src/logutil"
	"quiz-ocr-llm/src/metrics"
	"quiz-ocr-llm/src/ocr"
	"quiz-ocr-llm/src/quiz"
	"quiz-ocr-llm/src/screenshot"
)

var (
	// ErrMissingOption means an option region read as empty; the round is
	// skipped without calling the model.
	ErrMissingOption = errors.New("option text missing")
	// ErrNoAnswer means the reply had no <ANSWER> tag.
	ErrNoAnswer = errors.New("no answer tag in model reply")
)

var sessLog = logutil.Module("session")

type Result struct {
	Question    string
	Title       string
	Options     []string
	Answer      string
	OptionIndex int
	Reply       string
	Took        time.Duration
}

// Matched returns the chosen option's text, or the raw answer when nothing
// matched.
func (r Result) Matched() string {
	if r.OptionIndex >= 0 && r.OptionIndex < len(r.Options) {
		return r.Options[r.OptionIndex]
	}
	return r.Answer
}

type Solver struct {
	Capturer screenshot.Capturer
	OCR      ocr.Engine
	LLM      llm.Client
	Metrics  *metrics.Metrics

	// RequireAllOptions rejects rounds with an empty option (watch mode).
	RequireAllOptions bool
	SaveCaptures      bool
}

// ReadRegion captures region and returns its OCR text.
func (s *Solver) ReadRegion(ctx context.Context, name string, region screenshot.Region) (string, error) {
	img, err := s.capture(ctx, name, region)
	if err != nil {
		return "", err
	}
	text, err := s.recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", name, err)
	}
	return text, nil
}

// Solve runs one round against layout. question is the label that triggered
// it, empty in hotkey mode.
func (s *Solver) Solve(ctx context.Context, layout boxes.Layout, question string) (Result, error) {
	start := time.Now()
	res := Result{Question: question, OptionIndex: -1}

	title, err := s.readText(ctx, "title", layout.Title)
	if err != nil {
		return res, err
	}
	res.Title = title

	res.Options = make([]string, len(layout.Options))
	for i, region := range layout.Options {
		text, err := s.readText(ctx, fmt.Sprintf("option_%d", i+1), region)
		if err != nil {
			return res, err
		}
		if text == "" && s.RequireAllOptions {
			return res, fmt.Errorf("%w: option %d", ErrMissingOption, i+1)
		}
		res.Options[i] = text
	}
	sessLog.Info().Str("question", question).Str("title", logutil.Sanitize(title)).
		Int("options", len(res.Options)).Msg("question read")

	img, err := s.capture(ctx, "image", layout.Image)
	if err != nil {
		return res, err
	}
	png, err := screenshot.EncodePNG(img)
	if err != nil {
		return res, err
	}

	llmStart := time.Now()
	reply, err := s.LLM.Complete(ctx, llm.Request{
		Prompt: quiz.BuildPrompt(res.Title, res.Options),
		Image:  png,
	})
	s.Metrics.ObserveLLM(llmStart)
	if err != nil {
		return res, fmt.Errorf("%s: %w", s.LLM.Name(), err)
	}
	res.Reply = reply
	sessLog.Debug().Str("reply", logutil.Sanitize(reply)).Msg("model replied")

	answer, ok := quiz.ExtractAnswer(reply)
	if !ok {
		return res, ErrNoAnswer
	}
	res.Answer = answer
	res.OptionIndex = quiz.MatchOption(answer, res.Options)
	res.Took = time.Since(start)
	return res, nil
}

// readText is ReadRegion with OCR failures downgraded to empty text. Capture
// failures and cancellation still abort the round.
func (s *Solver) readText(ctx context.Context, name string, region screenshot.Region) (string, error) {
	img, err := s.capture(ctx, name, region)
	if err != nil {
		return "", err
	}
	text, err := s.recognize(ctx, img)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		sessLog.Warn().Err(err).Str("region", name).Msg("OCR failed, treating as empty")
		return "", nil
	}
	return text, nil
}

func (s *Solver) capture(ctx context.Context, name string, region screenshot.Region) (image.Image, error) {
	img, err := s.Capturer.Capture(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", name, err)
	}
	s.saveCapture(name, img)
	return img, nil
}

func (s *Solver) recognize(ctx context.Context, img image.Image) (string, error) {
	start := time.Now()
	defer s.Metrics.ObserveOCR(start)
	return s.OCR.Recognize(ctx, img)
}

func (s *Solver) saveCapture(name string, img image.Image) {
	if !s.SaveCaptures {
		return
	}
	if file, err := screenshot.SaveDebug(name, img); err != nil {
		sessLog.Warn().Err(err).Str("region", name).Msg("could not save capture")
	} else {
		sessLog.Debug().Str("file", file).Msg("capture saved")
	}
}

// Outcome classifies a finished round for metrics.
func Outcome(res Result, err error) string {
	switch {
	case errors.Is(err, ErrMissingOption):
		return metrics.OutcomeSkipped
	case errors.Is(err, ErrNoAnswer):
		return metrics.OutcomeNoAnswer
	case err != nil:
		return metrics.OutcomeError
	case res.OptionIndex < 0:
		return metrics.OutcomeUnmatched
	default:
		return metrics.OutcomeAnswered
	}
}
