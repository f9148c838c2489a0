package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/smetana-core/internal/community"
	"github.com/GoSim-25-26J-441/smetana-core/internal/scoring"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/logger"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

func loadModels(paths []string) ([]*models.Model, error) {
	out := make([]*models.Model, 0, len(paths))
	for _, path := range paths {
		m, err := models.LoadModel(path)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newScoreCommand(global *globalFlags) *cobra.Command {
	var (
		envPath     string
		standardize bool
	)
	cmd := &cobra.Command{
		Use:   "score MODEL [MODEL...]",
		Short: "Score a community of model files and print the report as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *global)
			if err != nil {
				return err
			}
			members, err := loadModels(args)
			if err != nil {
				return err
			}
			opts := []scoring.Option{scoring.WithConfig(cfg.Scoring), scoring.WithLogger(logger.Default)}
			if envPath != "" {
				env, err := models.LoadMedium(envPath)
				if err != nil {
					return err
				}
				opts = append(opts, scoring.WithEnvironment(env))
			}
			if standardize {
				opts = append(opts, scoring.WithStandardizer(community.ExchangeStandardizer{}))
			}

			orch, err := scoring.New(cmd.Context(), newSolver(cfg.Solver), members, nil, opts...)
			if err != nil {
				return err
			}
			report, err := orch.All(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report.AsMap())
		},
	}
	cmd.Flags().StringVar(&envPath, "environment", "", "medium file restricting the nutritional environment")
	cmd.Flags().BoolVar(&standardize, "standardize", false, "rename exchange reactions to EX_<metabolite> before scoring")
	return cmd
}

func newScreenCommand(global *globalFlags) *cobra.Command {
	var (
		pairLimit int
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "screen MODEL MODEL [MODEL...]",
		Short: "Score every pair of model files with MRO, MIP and growth difference",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *global)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pair-limit") {
				cfg.Screen.PairLimit = pairLimit
			}
			if cmd.Flags().Changed("workers") {
				cfg.Screen.Workers = workers
			}
			members, err := loadModels(args)
			if err != nil {
				return err
			}
			pairs, err := scoring.Screen(cmd.Context(), newSolver(cfg.Solver), members, scoring.ScreenOptions{
				PairLimit: cfg.Screen.PairLimit,
				Workers:   cfg.Screen.Workers,
				Scoring:   cfg.Scoring,
				Logger:    logger.Default,
			})
			if err != nil {
				return fmt.Errorf("screen: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), pairs)
		},
	}
	cmd.Flags().IntVar(&pairLimit, "pair-limit", 0, "maximum number of pairs (0 screens every pair)")
	cmd.Flags().IntVar(&workers, "workers", 4, "pairs scored concurrently")
	return cmd
}
