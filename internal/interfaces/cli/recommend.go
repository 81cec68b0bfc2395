package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/recommend"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// recommendOptions holds the flags of the recommend subcommand.
type recommendOptions struct {
	SeedID    string
	InputPath string
	TopK      int
	MixRatio  float64
}

// newRecommendCommand builds the recommend subcommand and its near variant.
func newRecommendCommand() *cobra.Command {
	opts := &recommendOptions{MixRatio: -1}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank corpus properties similar to a seed",
		Long: "Ranks the loaded corpus against a seed property.  The seed is either a\n" +
			"corpus member (--seed-id) or a raw signal bundle (--input); exactly one\n" +
			"must be given.  Requires --corpus on the root command.",
		Example: "  landai --corpus corpus.json recommend --seed-id prop-017 --top-k 10\n" +
			"  landai --corpus corpus.json --interactions log.json recommend --input property.json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.SeedID, "seed-id", "", "corpus identifier of the seed property")
	f.StringVarP(&opts.InputPath, "input", "i", "", "seed signal bundle JSON file ('-' for stdin)")
	f.IntVar(&opts.TopK, "top-k", 0, "number of candidates (0 uses the configured default)")
	f.Float64Var(&opts.MixRatio, "mix-ratio", -1, "content share of the hybrid ranking in [0,1] (negative uses the configured default)")
	cmd.MarkFlagsMutuallyExclusive("seed-id", "input")

	cmd.AddCommand(newRecommendNearCommand())
	return cmd
}

func runRecommend(cmd *cobra.Command, opts *recommendOptions) error {
	cliCtx, err := getCLIContext(cmd)
	if err != nil {
		return err
	}

	seed := recommend.Seed{ID: opts.SeedID}
	if opts.InputPath != "" {
		raw, err := readInput(cmd, opts.InputPath)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		var bundle feature.SignalBundle
		if err := json.Unmarshal(raw, &bundle); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode signal bundle")
		}
		fv, err := feature.NewExtractor(cliCtx.Logger).Extract(&bundle)
		if err != nil {
			return err
		}
		nf := feature.Normalize(fv)
		seed.Features = &nf
	}

	var mix *float64
	if opts.MixRatio >= 0 {
		m := opts.MixRatio
		mix = &m
	}

	recs, err := cliCtx.Service.Recommend(cmd.Context(), seed, opts.TopK, mix)
	if err != nil {
		return err
	}
	return printJSON(cmd, recs)
}

// newRecommendNearCommand builds the location-only variant: rank by distance
// to a bare coordinate pair, no seed property required.
func newRecommendNearCommand() *cobra.Command {
	var (
		lat, lon, radius float64
		topK             int
	)

	cmd := &cobra.Command{
		Use:     "near",
		Short:   "Rank corpus properties around a coordinate",
		Example: "  landai --corpus corpus.json recommend near --lat 40.7 --lon -74.0 --radius 5",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := getCLIContext(cmd)
			if err != nil {
				return err
			}
			origin := feature.GeoPoint{Latitude: lat, Longitude: lon}
			recs, err := cliCtx.Service.RecommendNear(cmd.Context(), origin, radius, topK)
			if err != nil {
				return err
			}
			return printJSON(cmd, recs)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&lat, "lat", 0, "origin latitude in degrees")
	f.Float64Var(&lon, "lon", 0, "origin longitude in degrees")
	f.Float64Var(&radius, "radius", 0, "search radius in kilometers (0 uses the configured default)")
	f.IntVar(&topK, "top-k", 0, "number of candidates (0 uses the configured default)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}
