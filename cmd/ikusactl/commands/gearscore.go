package commands

import (
	"fmt"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/roster"
	"github.com/spf13/cobra"
)

func newGearscoreCommand() *cobra.Command {
	var ap, aap, dp string

	cmd := &cobra.Command{
		Use:   "gearscore [--ap N] [--aap N] [--dp N]",
		Short: "Prints max(ap, aap) + dp. Missing or non-numeric values count as 0.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gs := roster.ComputeGearscore(domain.ParseStat(ap), domain.ParseStat(aap), domain.ParseStat(dp))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), gs)
			return err
		},
	}
	cmd.Flags().StringVar(&ap, "ap", "", "Attack power.")
	cmd.Flags().StringVar(&aap, "aap", "", "Awakening attack power.")
	cmd.Flags().StringVar(&dp, "dp", "", "Defense power.")
	return cmd
}
