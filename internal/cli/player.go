package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerFindCmd())
	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerUpdateCmd())
	cmd.AddCommand(newPlayerAcceptRulesCmd())
	cmd.AddCommand(newPlayerLinkTwitchCmd())
	cmd.AddCommand(newPlayerStatsCmd())

	return cmd
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all players in join order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Player
			if err := client.Get(cmd.Context(), "/api/v1/players", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Get(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerFindCmd() *cobra.Command {
	var steamID, twitchUserID string
	var etf2lID int

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find a player by SteamID, ETF2L profile id or Twitch user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case steamID != "":
				path = "/api/v1/players/steam/" + url.PathEscape(steamID)
			case etf2lID != 0:
				path = fmt.Sprintf("/api/v1/players/etf2l/%d", etf2lID)
			case twitchUserID != "":
				path = "/api/v1/players/twitch/" + url.PathEscape(twitchUserID)
			default:
				return fmt.Errorf("one of --steam, --etf2l or --twitch is required")
			}

			var result Player
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&steamID, "steam", "", "SteamID64")
	cmd.Flags().IntVar(&etf2lID, "etf2l", 0, "ETF2L profile id")
	cmd.Flags().StringVar(&twitchUserID, "twitch", "", "Twitch user id")
	cmd.MarkFlagsMutuallyExclusive("steam", "etf2l", "twitch")

	return cmd
}

func newPlayerRegisterCmd() *cobra.Command {
	var steamID, name, avatar string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a player from their Steam profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"steam_id":     steamID,
				"display_name": name,
			}
			if avatar != "" {
				req["photos"] = []string{avatar}
			}

			var result Player
			if err := client.Post(cmd.Context(), "/api/v1/players", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&steamID, "steam-id", "", "SteamID64 (required)")
	cmd.Flags().StringVar(&name, "name", "", "Steam display name (required)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	_ = cmd.MarkFlagRequired("steam-id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerUpdateCmd() *cobra.Command {
	var name, role string
	var clearRole bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a player's name or role (requires --as)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ActingPlayer == "" {
				return fmt.Errorf("--as is required to edit players")
			}

			req := map[string]any{}
			if cmd.Flags().Changed("name") {
				req["name"] = name
			}
			switch {
			case clearRole:
				req["role"] = nil
			case cmd.Flags().Changed("role"):
				req["role"] = role
			}

			var result Player
			if err := client.Patch(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&role, "role", "", "New role: super-user, admin")
	cmd.Flags().BoolVar(&clearRole, "clear-role", false, "Remove the player's role")
	cmd.MarkFlagsMutuallyExclusive("role", "clear-role")

	return cmd
}

func newPlayerAcceptRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept-rules <id>",
		Short: "Record that a player accepted the rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Post(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0])+"/accept-rules", nil, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerLinkTwitchCmd() *cobra.Command {
	var userID, login, displayName, image string

	cmd := &cobra.Command{
		Use:   "link-twitch <id>",
		Short: "Link a Twitch account to a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"user_id":           userID,
				"login":             login,
				"display_name":      displayName,
				"profile_image_url": image,
			}

			var result Player
			if err := client.Put(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0])+"/twitch", req, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "Twitch user id (required)")
	cmd.Flags().StringVar(&login, "login", "", "Twitch login (required)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Twitch display name")
	cmd.Flags().StringVar(&image, "image", "", "Profile image URL")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("login")

	return cmd
}

func newPlayerStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Show a player's game statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerStats
			if err := client.Get(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0])+"/stats", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newStreamersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streamers",
		Short: "List players with a linked Twitch account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Player
			if err := client.Get(cmd.Context(), "/api/v1/streamers", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
