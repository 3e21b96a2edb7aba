package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/models"
)

// slipFile is the on-disk form of a slip
type slipFile struct {
	Legs []models.LegRequest `json:"legs"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		singles bool
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <slip.json>",
		Short: "Score a slip read from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			slip, err := readSlip(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := loadAnalyzeConfig(ctx, offline)
			if err != nil {
				return err
			}
			rt, err := buildRuntime(ctx, cfg, offline)
			if err != nil {
				return err
			}
			defer rt.Close()
			// stdout carries the JSON result
			rt.logger.SetOutput(cmd.ErrOrStderr())

			var out interface{}
			if singles {
				out = rt.analyzer.AnalyzeLegs(ctx, slip.Legs)
			} else {
				out, err = rt.analyzer.AnalyzeParlay(ctx, slip.Legs)
				if err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&singles, "singles", false, "Score each leg as a single wager instead of one parlay")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the data provider and score from entry prices only")
	return cmd
}

// loadAnalyzeConfig tolerates a missing config file offline, where only the
// engine policy matters
func loadAnalyzeConfig(ctx context.Context, offline bool) (*config.Config, error) {
	if !offline {
		return loadConfigWithSecrets(ctx, configFile)
	}
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateEngine(cfg.Engine); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readSlip(path string, stdin io.Reader) (*slipFile, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open slip: %w", err)
		}
		defer f.Close()
		r = f
	}

	var slip slipFile
	if err := json.NewDecoder(r).Decode(&slip); err != nil {
		return nil, fmt.Errorf("failed to parse slip: %w", err)
	}
	if len(slip.Legs) == 0 {
		return nil, models.ErrNoLegs
	}
	return &slip, nil
}
