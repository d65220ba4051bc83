package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ratebridge/internal/mapping"
	"ratebridge/internal/match"
	"ratebridge/internal/pipeline"
	"ratebridge/internal/plan"
)

// suggestSimilarity is the normalized similarity a source name needs to be
// offered for a mistyped answer.
const suggestSimilarity = 0.6

// Terminal asks for each required target in turn.
//
// Answers: empty keeps the current source, "-" clears it, a number or a
// source name picks a source, "auto" fills the remaining unmapped targets
// from unused sources and stops, "q" cancels. End of input cancels.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// PromptForMapping implements pipeline.Prompter.
func (t *Terminal) PromptForMapping(
	_ context.Context,
	sources []string,
	current mapping.FieldMapping,
	required []string,
) (mapping.FieldMapping, error) {
	in := bufio.NewScanner(t.In)
	m := current

	fmt.Fprintln(t.Out, "Source fields:")

	for i, s := range sources {
		fmt.Fprintf(t.Out, "  %2d. %s\n", i+1, s)
	}

	fmt.Fprintln(t.Out, "Enter keeps, '-' clears, a number or name picks, 'auto' fills the rest, 'q' cancels.")

	for _, target := range required {
		for {
			fmt.Fprintf(t.Out, "%s [%s]: ", target, describe(m, target))

			if !in.Scan() {
				return mapping.FieldMapping{}, pipeline.ErrCancelled
			}

			answer := strings.TrimSpace(in.Text())

			switch strings.ToLower(answer) {
			case "":
			case "q", "quit":
				return mapping.FieldMapping{}, pipeline.ErrCancelled
			case "-":
				m = m.Without(target)
			case "auto":
				return plan.AutoMapRemaining(m, sources, required), nil
			default:
				src, ok := pick(answer, sources)
				if !ok {
					fmt.Fprintf(t.Out, "  unknown source %q", answer)

					if near, found := match.Closest(answer, sources, suggestSimilarity); found {
						fmt.Fprintf(t.Out, ", did you mean %q?", near)
					}

					fmt.Fprintln(t.Out)

					continue
				}

				m = m.With(target, mapping.Assignment{Source: src, Confidence: 100, Reason: mapping.ReasonManual})
			}

			break
		}
	}

	return m, nil
}

func describe(m mapping.FieldMapping, target string) string {
	a, ok := m.Get(target)
	if !ok {
		return "unmapped"
	}

	return fmt.Sprintf("%s, %d%%", a.Source, a.Confidence)
}

// pick resolves an answer to a source by 1-based index or by name,
// ignoring case.
func pick(answer string, sources []string) (string, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(sources) {
			return sources[n-1], true
		}

		return "", false
	}

	for _, s := range sources {
		if strings.EqualFold(s, answer) {
			return s, true
		}
	}

	return "", false
}
