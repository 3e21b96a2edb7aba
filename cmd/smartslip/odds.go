package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/odds"
)

func newOddsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odds",
		Short: "Odds utilities",
	}
	cmd.AddCommand(newConvertCmd())
	return cmd
}

func newConvertCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert <price>",
		Short: "Show a price in every format with its implied probability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := odds.Convert(args[0], models.OddsFormat(format))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Price:       %s (%s)\n", c.Price, c.Format)
			fmt.Fprintf(out, "Decimal:     %.4f\n", c.Decimal)
			fmt.Fprintf(out, "American:    %+.0f\n", c.American)
			fmt.Fprintf(out, "Implied:     %.2f%%\n", c.ImpliedProbability*100)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Price format: american, decimal or fractional (detected when empty)")
	return cmd
}
