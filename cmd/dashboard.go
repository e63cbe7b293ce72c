// ABOUTME: Dashboard command showing user statistics for the signed-in admin
// ABOUTME: Mirrors the console's dashboard screen for scripting

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fanzones/console/internal/client"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show user totals and the verification rate",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runDashboard)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// DashboardOutput is the JSON shape of the dashboard command
type DashboardOutput struct {
	Welcome          string           `json:"welcome"`
	Stats            client.UserStats `json:"stats"`
	VerificationRate int              `json:"verification_rate"`
}

// runDashboard fetches the stats and returns exit code
func runDashboard(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		user, err := a.session.CurrentUser()
		if err != nil {
			return reportError(w, err)
		}
		stats, err := a.client.UserCount(ctx)
		if err != nil {
			return reportError(w, err)
		}

		out := DashboardOutput{
			Welcome:          user.GreetingName(),
			Stats:            *stats,
			VerificationRate: stats.VerificationRate(),
		}
		if IsJSONOutput() {
			printJSON(w, out)
			return exitOK
		}
		fmt.Fprintln(w, formatDashboard(out))
		return exitOK
	})
}

func formatDashboard(d DashboardOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome back, %s!\n\n", d.Welcome)
	fmt.Fprintf(&b, "Total users:       %d\n", d.Stats.Total)
	fmt.Fprintf(&b, "Active users:      %d\n", d.Stats.Active)
	fmt.Fprintf(&b, "Verified users:    %d\n", d.Stats.Verified)
	fmt.Fprintf(&b, "Verification rate: %d%%", d.VerificationRate)
	return b.String()
}
