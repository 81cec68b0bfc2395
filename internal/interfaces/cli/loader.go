package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/turtacn/LandArea-Intelligence/internal/application/analysis"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/recommend"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/valuation"
	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Snapshot loading — model, corpus, and interaction log from JSON files
// ─────────────────────────────────────────────────────────────────────────────

// corpusEntry is one property in a corpus file: a stable identifier plus the
// same raw signal bundle the analyze command accepts.  Feature extraction and
// normalization run here at load time so the serving path never touches raw
// signals again.
type corpusEntry struct {
	ID     string                `json:"id"`
	Bundle *feature.SignalBundle `json:"bundle"`
}

// loadEngineContext assembles the engine snapshot from the files named on the
// command line.  Every path is optional: a missing model means heuristic-only
// valuation, a missing corpus means recommendation warnings instead of
// results, and a missing interaction log means content-only ranking.
func loadEngineContext(opts *RootOptions, logger logging.Logger) (*analysis.EngineContext, error) {
	ec := &analysis.EngineContext{Version: opts.SnapshotVersion}

	if opts.ModelPath != "" {
		model, err := valuation.LoadEnsemble(opts.ModelPath)
		if err != nil {
			return nil, err
		}
		ec.Model = model
		if ec.Version == "" {
			ec.Version = model.Version
		}
		logger.Info("model artifact loaded",
			logging.String("path", opts.ModelPath),
			logging.Int("trees", len(model.Trees)))
	}

	if opts.CorpusPath != "" {
		corpus, err := loadCorpus(opts.CorpusPath, logger)
		if err != nil {
			return nil, err
		}
		ec.Corpus = corpus
		logger.Info("corpus loaded",
			logging.String("path", opts.CorpusPath),
			logging.Int("items", corpus.Len()))
	}

	if opts.InteractionsPath != "" {
		matrix, err := loadInteractions(opts.InteractionsPath)
		if err != nil {
			return nil, err
		}
		ec.Interactions = matrix
		logger.Info("interaction log loaded", logging.String("path", opts.InteractionsPath))
	}

	return ec, nil
}

// loadCorpus reads a JSON array of corpusEntry records and runs each bundle
// through feature extraction and normalization.
func loadCorpus(path string, logger logging.Logger) (*recommend.Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCorpusLoad,
			fmt.Sprintf("failed to read corpus file %s", path))
	}
	var entries []corpusEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCorpusLoad,
			fmt.Sprintf("failed to decode corpus file %s", path))
	}

	extractor := feature.NewExtractor(logger)
	items := make([]recommend.CorpusItem, 0, len(entries))
	for i, e := range entries {
		fv, err := extractor.Extract(e.Bundle)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeCorpusLoad,
				fmt.Sprintf("corpus entry %d (%q) is invalid", i, e.ID))
		}
		items = append(items, recommend.CorpusItem{
			ID:         e.ID,
			Vector:     fv,
			Normalized: feature.Normalize(fv),
		})
	}
	return recommend.NewCorpus(items)
}

// loadInteractions reads a JSON array of interaction records and builds the
// item-by-user weight matrix.
func loadInteractions(path string) (*recommend.InteractionMatrix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInteractionParse,
			fmt.Sprintf("failed to read interaction log %s", path))
	}
	var log []recommend.Interaction
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInteractionParse,
			fmt.Sprintf("failed to decode interaction log %s", path))
	}
	return recommend.BuildInteractionMatrix(log)
}
