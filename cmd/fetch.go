package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/issue-label-stats/internal/config"
	"github.com/naka-gawa/issue-label-stats/internal/gateway"
	"github.com/naka-gawa/issue-label-stats/internal/usecase"
)

const (
	defaultRepo   = "spacetelescope/jdaviz"
	defaultPrefix = "jdaviz_open_issues"
)

// newLister picks the API the fetcher lists issues through.
var newLister = func(cfg *config.Config, logger *zap.SugaredLogger) (gateway.IssueLister, error) {
	httpClient, err := gateway.NewHTTPClient(cfg.GitHub.Token)
	if err != nil {
		return nil, err
	}
	if cfg.Fetch.Source == config.SourceGraphQL {
		return gateway.NewGraphQLLister(httpClient, logger), nil
	}
	return gateway.NewRESTLister(httpClient, logger), nil
}

// NewFetchCommand returns the root command of the get-stats binary.
func NewFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-stats",
		Short: "Saves the open issues and pull requests of a GitHub repository as CSV",
		Long: `get-stats lists every open issue and pull request of a GitHub repository and
writes them to {prefix}_{YYYY-MM-DDTHH:MM:SSZ}.csv in the current directory.

This is an expensive operation; further processing can be done separately
using the output file. The GITHUB_TOKEN environment variable must be set.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runFetch,
	}
	cmd.Flags().StringP("repo", "r", defaultRepo, "Target GitHub repository (owner/name)")
	cmd.Flags().StringP("prefix", "p", defaultPrefix, "Output filename prefix")
	cmd.Flags().Bool("overwrite", false, "Overwrite the output file if it already exists")
	cmd.Flags().BoolP("verbose", "v", true, "Report the written file and a lifetime summary")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	repo, _ := cmd.Flags().GetString("repo")
	prefix, _ := cmd.Flags().GetString("prefix")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	// The credential is checked before anything touches the network.
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), verbose, cfg.Log.Format)
	defer logger.Sync()

	lister, err := newLister(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	fetcher := usecase.NewIssueFetcher(lister, logger, now)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, err = fetcher.Fetch(ctx, usecase.FetchOptions{
		Repo:      repo,
		Prefix:    prefix,
		Overwrite: overwrite,
	})
	return err
}
