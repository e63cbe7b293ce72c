// ABOUTME: security-events command listing recent account activity
// ABOUTME: Same entries the console's profile screen shows

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
)

var securityLimit int

var securityCmd = &cobra.Command{
	Use:   "security-events",
	Short: "List recent security events for the signed-in account",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runSecurityEvents(ctx, w, securityLimit)
		})
	},
}

func init() {
	securityCmd.Flags().IntVar(&securityLimit, "limit", 10, "Maximum number of events")
	rootCmd.AddCommand(securityCmd)
}

// runSecurityEvents fetches the audit trail and returns exit code
func runSecurityEvents(ctx context.Context, w io.Writer, limit int) int {
	if limit <= 0 {
		fmt.Fprintln(w, "Error: limit must be positive")
		return exitRejected
	}
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		events, err := a.client.SecurityEvents(ctx, limit)
		if err != nil {
			return reportError(w, err)
		}
		if IsJSONOutput() {
			printJSON(w, map[string]any{"events": events})
			return exitOK
		}
		fmt.Fprint(w, formatSecurityEvents(events, time.Now()))
		return exitOK
	})
}

func formatSecurityEvents(events []client.SecurityEvent, now time.Time) string {
	if len(events) == 0 {
		return "No recent security events\n"
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%s %-18s %s", format.SecurityIcon(e.Type), e.Label(), format.RelativeTime(e.CreatedAt, now))
		if e.IP != "" {
			fmt.Fprintf(&b, "  from %s", e.IP)
		}
		b.WriteString("\n")
	}
	return b.String()
}
