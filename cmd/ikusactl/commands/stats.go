package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/internal/roster"
	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	var (
		file  string
		guild string
	)

	cmd := &cobra.Command{
		Use:   "stats --file <roster.json> [--guild <name>]",
		Short: "Prints guild stats for a local roster file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read roster: %w", err)
			}

			players, fileGuild, err := decodeRoster(data)
			if err != nil {
				return fmt.Errorf("failed to decode roster %s: %w", file, err)
			}
			if guild == "" {
				guild = fileGuild
			}

			return printJSON(cmd.OutOrStdout(), roster.BuildStats(guild, players))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON roster: an array of player records or an upload body.")
	cmd.Flags().StringVar(&guild, "guild", "", "Guild name reported in the output.")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// decodeRoster accepts either a bare array of player records or an object
// shaped like an upload request.
func decodeRoster(data []byte) ([]domain.PlayerRecord, string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var players []domain.PlayerRecord
		if err := json.Unmarshal(data, &players); err != nil {
			return nil, "", err
		}
		return players, "", nil
	}

	var req domain.UploadRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, "", err
	}
	return req.Players, req.Guild, nil
}
