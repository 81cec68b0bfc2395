package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/LandArea-Intelligence/internal/application/analysis"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/scoring"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// analyzeOptions holds the flags of the analyze subcommand.
type analyzeOptions struct {
	InputPath     string
	TopK          int
	MixRatio      float64
	RiskTolerance string
	Weights       map[string]string
	Include       []string
}

// newAnalyzeCommand builds the analyze subcommand: one full analysis of a
// property described by a signal-bundle JSON document.
func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{MixRatio: -1}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a full analysis of one property",
		Long: "Reads a signal bundle (location, attributes, nearby facilities, crime,\n" +
			"hazard, and market records) from a JSON file and prints the analysis\n" +
			"result: valuation, beneficiary score, suitability, investment action,\n" +
			"recommendations, and explanation.",
		Example: "  landai analyze --input property.json\n" +
			"  landai --model model.json --corpus corpus.json analyze --input property.json --top-k 5\n" +
			"  cat property.json | landai analyze --input - --weight school=10 --weight value=4",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.InputPath, "input", "i", "", "signal bundle JSON file ('-' for stdin)")
	f.IntVar(&opts.TopK, "top-k", 0, "number of recommendations (0 uses the configured default)")
	f.Float64Var(&opts.MixRatio, "mix-ratio", -1, "content share of the hybrid ranking in [0,1] (negative uses the configured default)")
	f.StringVar(&opts.RiskTolerance, "risk-tolerance", "", "action thresholds: low, medium, or high (default medium)")
	f.StringToStringVar(&opts.Weights, "weight", nil, "scoring weight override, repeatable (e.g. --weight school=10)")
	f.StringSliceVar(&opts.Include, "include", nil, "restrict output sections: valuation, score, recommendations, explanations")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cliCtx, err := getCLIContext(cmd)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd, opts.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	var bundle feature.SignalBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode signal bundle")
	}

	req := &analysis.Request{
		Bundle:        &bundle,
		RiskTolerance: analysis.RiskTolerance(opts.RiskTolerance),
		TopK:          opts.TopK,
	}
	if opts.MixRatio >= 0 {
		mix := opts.MixRatio
		req.MixRatio = &mix
	}
	if req.Weights, err = parseWeights(opts.Weights); err != nil {
		return err
	}
	if req.Include, err = parseInclude(opts.Include); err != nil {
		return err
	}

	result, err := cliCtx.Service.Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}

// parseWeights converts --weight key=value pairs into scoring weights.
// Key validity is checked downstream by the scorer.
func parseWeights(raw map[string]string) (scoring.ScoreWeights, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	w := make(scoring.ScoreWeights, len(raw))
	for k, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrCodeWeightInvalid,
				fmt.Sprintf("weight %q must be numeric, got %q", k, v))
		}
		w[scoring.Component(k)] = f
	}
	return w, nil
}

// parseInclude converts --include section names into the analysis toggle set.
func parseInclude(sections []string) (*analysis.Include, error) {
	if len(sections) == 0 {
		return nil, nil
	}
	inc := &analysis.Include{}
	for _, s := range sections {
		switch s {
		case "valuation":
			inc.Valuation = true
		case "score":
			inc.Score = true
		case "recommendations":
			inc.Recommendations = true
		case "explanations":
			inc.Explanations = true
		default:
			return nil, apperrors.New(apperrors.ErrCodeValidation,
				fmt.Sprintf("unknown include section %q", s))
		}
	}
	return inc, nil
}
