package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"ratebridge/internal/mapping"
	"ratebridge/internal/match"
	"ratebridge/internal/pipeline"
)

// MaxCandidates is the number of suggestions listed per unmapped target.
const MaxCandidates = 5

// ReviewFile confirms mappings through a YAML file. When the file is
// missing it writes the current suggestions there and cancels the run, so a
// person can edit the file and run again. When the file exists its mapping
// is used.
type ReviewFile struct {
	Path string
	// Synonyms feed the candidate ranking. Nil means the defaults.
	Synonyms mapping.Synonyms
	Logger   *slog.Logger
}

// PromptForMapping implements pipeline.Prompter.
func (p *ReviewFile) PromptForMapping(
	ctx context.Context,
	sources []string,
	current mapping.FieldMapping,
	required []string,
) (mapping.FieldMapping, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	_, err := os.Stat(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		rf := mapping.NewReviewFile(required, current.Restrict(sources), Suggestions(sources, required, current, p.Synonyms))
		if err := mapping.WriteFile(rf, p.Path); err != nil {
			return mapping.FieldMapping{}, err
		}

		logger.InfoContext(ctx, "wrote mapping for review", slog.String("path", p.Path))

		return mapping.FieldMapping{}, fmt.Errorf("%w: review %s and run again", pipeline.ErrCancelled, p.Path)
	}

	if err != nil {
		return mapping.FieldMapping{}, fmt.Errorf("failed to stat review file: %w", err)
	}

	rf, err := mapping.LoadFile(p.Path)
	if err != nil {
		return mapping.FieldMapping{}, err
	}

	logger.InfoContext(ctx, "using reviewed mapping", slog.String("path", p.Path))

	return rf.Mapping(), nil
}

// Suggestions ranks source fields for every required target current leaves
// unmapped.
func Suggestions(sources, required []string, current mapping.FieldMapping, synonyms mapping.Synonyms) map[string][]string {
	if synonyms == nil {
		synonyms = mapping.DefaultSynonyms()
	}

	out := make(map[string][]string)

	for _, target := range required {
		if current.Source(target) != "" {
			continue
		}

		ranked := match.RankCandidates(synonyms.Variants(target), sources, match.DefaultScorer)
		if names := ranked.Top(MaxCandidates).Names(); len(names) > 0 {
			out[target] = names
		}
	}

	return out
}
