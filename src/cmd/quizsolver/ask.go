package main

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"quiz-ocr-llm/src/llm"
	"quiz-ocr-llm/src/quiz"
	"quiz-ocr-llm/src/report"
	"quiz-ocr-llm/src/runtimeinit"
)

type askOptions struct {
	imagePath  string
	title      string
	options    []string
	jsonOutput bool
}

// AskResult is the --json output of the ask command.
type AskResult struct {
	Title       string   `json:"title"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Found       bool     `json:"answer_found"`
	OptionIndex int      `json:"option_index"`
	Reply       string   `json:"reply"`
	Provider    string   `json:"provider"`
	Timestamp   string   `json:"timestamp"`
	Duration    float64  `json:"duration_seconds"`
}

func newAskCmd(g *globalOptions) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask the model one question from a PNG and typed-in text, without screen capture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			image, err := readPNG(opts.imagePath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			rt, err := runtimeinit.Bootstrap(cmd.Context(), runtimeinit.Options{
				LoadOptions: g.loadOptions(),
				Verbose:     g.verbose,
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			start := time.Now()
			reply, err := rt.LLM.Complete(cmd.Context(), llm.Request{
				Prompt: quiz.BuildPrompt(opts.title, opts.options),
				Image:  image,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", rt.LLM.Name(), err)
			}
			answer, found := quiz.ExtractAnswer(reply)
			res := AskResult{
				Title:       opts.title,
				Options:     opts.options,
				Answer:      answer,
				Found:       found,
				OptionIndex: quiz.MatchOption(answer, opts.options),
				Reply:       reply,
				Provider:    rt.LLM.Name(),
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
				Duration:    time.Since(start).Seconds(),
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				data, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode JSON output: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			if !found {
				return fmt.Errorf("no <ANSWER> tag in reply:\n%s", reply)
			}
			_, err = fmt.Fprintln(out, report.Render(report.DefaultStyles(), report.Entry{
				Title:       res.Title,
				Options:     res.Options,
				Answer:      res.Answer,
				OptionIndex: res.OptionIndex,
			}))
			return err
		},
	}

	cmd.Flags().StringVar(&opts.imagePath, "image", "", "Path to the question PNG (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.title, "title", "", "Question text")
	cmd.Flags().StringArrayVar(&opts.options, "option", nil, "Answer option (repeat for each)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
