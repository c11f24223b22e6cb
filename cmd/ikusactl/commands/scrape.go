package commands

import (
	"fmt"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/service/scraper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScrapeCommand(root *rootOptions) *cobra.Command {
	var (
		urls []string
		name string
	)

	cmd := &cobra.Command{
		Use:   "scrape --url <profile-url> [--url <profile-url>...] [--nome <name>]",
		Short: "Fetches profile pages and prints the extracted power and privacy flag.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(urls) == 0 {
				return fmt.Errorf("at least one --url is required")
			}

			logger := root.logger
			if logger == nil {
				logger = zap.NewNop()
			}
			s := scraper.NewProfileScraper(scraper.DefaultConfig(), nil, nil, logger)

			if len(urls) == 1 {
				profile, err := s.Scrape(cmd.Context(), urls[0], name)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), profile)
			}

			targets := make([]domain.ScrapeTarget, len(urls))
			for i, u := range urls {
				targets[i] = domain.ScrapeTarget{URL: u}
			}
			return printJSON(cmd.OutOrStdout(), s.ScrapeMany(cmd.Context(), targets))
		},
	}
	cmd.Flags().StringArrayVar(&urls, "url", nil, "Profile page URL. Repeat to scrape several pages.")
	cmd.Flags().StringVar(&name, "nome", "", "Display name for a single profile. Defaults to the last URL path segment.")
	return cmd
}
