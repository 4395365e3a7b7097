package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game record commands",
	}

	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameRecordCmd())

	return cmd
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Get(cmd.Context(), "/api/v1/games/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameRecordCmd() *cobra.Command {
	var number int
	var state string
	var slots []string

	cmd := &cobra.Command{
		Use:   "record <id>",
		Short: "Create or replace a game record",
		Long: `Create or replace a game record.

Slots are given as player:class pairs, for example:
  pickupctl game record g1 --number 12 --state ended --slot p1:soldier --slot p2:medic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSlots(slots)
			if err != nil {
				return err
			}

			req := map[string]any{
				"number": number,
				"state":  state,
				"slots":  parsed,
			}

			var result Game
			if err := client.Put(cmd.Context(), "/api/v1/games/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&number, "number", 0, "Game number")
	cmd.Flags().StringVar(&state, "state", "ended", "Game state")
	cmd.Flags().StringArrayVar(&slots, "slot", nil, "Slot as player:class (repeatable)")

	return cmd
}

func parseSlots(raw []string) ([]GameSlot, error) {
	slots := make([]GameSlot, 0, len(raw))
	for _, s := range raw {
		player, class, ok := strings.Cut(s, ":")
		if !ok || player == "" || class == "" {
			return nil, fmt.Errorf("invalid slot %q, expected player:class", s)
		}
		slots = append(slots, GameSlot{PlayerID: player, GameClass: class})
	}
	return slots, nil
}
