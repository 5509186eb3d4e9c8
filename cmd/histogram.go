package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/issue-label-stats/internal/config"
	"github.com/naka-gawa/issue-label-stats/internal/domain"
	"github.com/naka-gawa/issue-label-stats/internal/gateway"
	"github.com/naka-gawa/issue-label-stats/internal/usecase"
)

// NewHistogramCommand returns the root command of the label-histogram binary.
func NewHistogramCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label-histogram <input.csv>",
		Short: "Plots open issue and PR counts per label",
		Long: `label-histogram reads a CSV written by get-stats and renders an interactive
bar chart of open issues and pull requests per label. Items matching none of
the labels are grouped under "Others". The chart is written next to the input
with an .html extension.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runHistogram,
	}
	cmd.Flags().StringSliceP("labels", "l", domain.DefaultLabels, "Labels of interest, in display order")
	return cmd
}

func runHistogram(cmd *cobra.Command, args []string) error {
	labels, _ := cmd.Flags().GetStringSlice("labels")

	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), true, cfg.Log.Format)
	defer logger.Sync()

	histogram := usecase.NewHistogram(gateway.NewBarChart(), logger, now)
	_, err = histogram.Render(usecase.RenderOptions{
		Input:  args[0],
		Labels: labels,
	})
	return err
}
