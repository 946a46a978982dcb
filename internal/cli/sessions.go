package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/spf13/cobra"
)

// NewDevicesCmd creates the "devices" subcommand.
func NewDevicesCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List device sessions recorded in the store (read-only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, _ := cmd.Flags().GetString("user")
			format, _ := cmd.Flags().GetString("format")
			all, _ := cmd.Flags().GetBool("all")

			return env.withStore(cmd.Context(), func(store kvstore.Store) error {
				sessions := repositories.NewSessionInspector(store, env.repoOptions()...)

				var devices []models.DeviceSession
				var err error
				if userID != "" && !all {
					devices, err = sessions.GetUserDevices(cmd.Context(), userID)
				} else {
					devices, err = sessions.GetSessionsList(cmd.Context())
				}
				if err != nil {
					return fmt.Errorf("reading sessions: %w", err)
				}
				if userID != "" && all {
					devices = filterByUser(devices, userID)
				}
				return printDevices(cmd.OutOrStdout(), devices, format)
			})
		},
	}

	cmd.Flags().String("user", "", "Only list sessions of this user id")
	cmd.Flags().Bool("all", false, "Include inactive sessions")
	cmd.Flags().String("format", "text", "Output format: text | json")
	return cmd
}

// NewSessionsCmd creates the "sessions" command group.
func NewSessionsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage the device session records",
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Remove the current session and the sessions list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withStore(cmd.Context(), func(store kvstore.Store) error {
				sessions := repositories.NewSessionInspector(store, env.repoOptions()...)
				if err := sessions.ClearAllSessions(cmd.Context()); err != nil {
					return fmt.Errorf("resetting sessions: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "sessions reset")
				return nil
			})
		},
	}
	cmd.AddCommand(reset)
	return cmd
}

func filterByUser(devices []models.DeviceSession, userID string) []models.DeviceSession {
	out := devices[:0]
	for _, d := range devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out
}

func printDevices(w io.Writer, devices []models.DeviceSession, format string) error {
	switch format {
	case "json":
		if devices == nil {
			devices = []models.DeviceSession{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	case "text":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if len(devices) == 0 {
		fmt.Fprintln(w, "no sessions")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tUSER\tEMAIL\tACTIVE\tLAST ACTIVITY\tEXPIRES")
	for _, d := range devices {
		expires := "never"
		if d.ExpiresAt != nil {
			expires = d.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			d.DeviceID, d.UserID, d.Email, d.IsActive, d.LastActivity.Format(time.RFC3339), expires)
	}
	return tw.Flush()
}
