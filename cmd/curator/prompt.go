package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// errNoAnswer is returned with the fallback value when a question could not
// be put to anyone: input is not a terminal or it ended.
var errNoAnswer = errors.New("question left unanswered")

// choice is one answer of a multiple-choice question. Key is what the user
// types; it is matched case-insensitively.
type choice[A any] struct {
	Key   string
	Label string
	Value A
}

// prompter asks questions on the command's terminal. When input is not
// interactive every question resolves to its decline value without reading.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isInteractive(in),
	}
}

// isInteractive reports whether answers can be read from reader. Readers
// other than files are scripted input and count as interactive.
func isInteractive(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok {
		return true
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm asks a yes/no question. Without an answer it returns false and
// errNoAnswer.
func (p *prompter) confirm(ctx context.Context, question string) (bool, error) {
	return ask(ctx, p, question, []choice[bool]{
		{Key: "y", Label: "yes", Value: true},
		{Key: "n", Label: "no", Value: false},
	}, false)
}

// ask prints question with its choices and returns the selected value.
// For non-interactive input and at end of input it returns fallback and
// errNoAnswer; callers that may proceed on the fallback check for it.
func ask[A any](ctx context.Context, p *prompter, question string, choices []choice[A], fallback A) (A, error) {
	if !p.interactive {
		fmt.Fprintf(p.out, "%s -> no answer (non-interactive)\n", question)
		return fallback, errNoAnswer
	}
	labels := make([]string, 0, len(choices))
	for _, c := range choices {
		labels = append(labels, fmt.Sprintf("[%s] %s", c.Key, c.Label))
	}
	for {
		if err := ctx.Err(); err != nil {
			return fallback, err
		}
		fmt.Fprintf(p.out, "%s\n  %s: ", question, strings.Join(labels, "  "))
		line, err := p.in.ReadString('\n')
		input := strings.ToLower(strings.TrimSpace(line))
		for _, c := range choices {
			if input == strings.ToLower(c.Key) || input == strings.ToLower(c.Label) {
				fmt.Fprintln(p.out)
				return c.Value, nil
			}
		}
		if err != nil {
			fmt.Fprintln(p.out)
			if errors.Is(err, io.EOF) {
				return fallback, errNoAnswer
			}
			return fallback, fmt.Errorf("read answer: %w", err)
		}
		fmt.Fprintf(p.out, "Unrecognized answer %q\n", input)
	}
}

// orFallback clears errNoAnswer so an unanswered question proceeds with its
// fallback value.
func orFallback[A any](answer A, err error) (A, error) {
	if errors.Is(err, errNoAnswer) {
		return answer, nil
	}
	return answer, err
}
