// ABOUTME: User management commands: list, get, create, update and delete
// ABOUTME: List fetches the page and the counts concurrently like the console's user table

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
	"github.com/fanzones/console/internal/validate"
)

var (
	usersLimit  int
	usersOffset int
	usersSearch string

	userCreate validate.Registration
	userEdit   validate.UserEdit
	deleteYes  bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active users with totals",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runUsersList(ctx, w, usersLimit, usersOffset, usersSearch)
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runUsersGet(ctx, w, args[0])
		})
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Run: func(cmd *cobra.Command, args []string) {
		userCreate.ConfirmPassword = userCreate.Password
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runUsersCreate(ctx, w, userCreate)
		})
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user's profile; only the given flags change",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		update := changedFields(cmd, userEdit)
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runUsersUpdate(ctx, w, args[0], userEdit, update)
		})
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Deactivate a user account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !deleteYes {
			confirmed := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Delete user %s?", args[0])).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
			if !confirmed {
				fmt.Println("Canceled.")
				return
			}
		}
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runUsersDelete(ctx, w, args[0])
		})
	},
}

func init() {
	usersListCmd.Flags().IntVar(&usersLimit, "limit", 0, "Page size (default from config)")
	usersListCmd.Flags().IntVar(&usersOffset, "offset", 0, "Number of users to skip")
	usersListCmd.Flags().StringVar(&usersSearch, "search", "", "Filter the page by username, email or name")

	usersCreateCmd.Flags().StringVar(&userCreate.Email, "email", "", "Email address")
	usersCreateCmd.Flags().StringVar(&userCreate.Username, "username", "", "Username")
	usersCreateCmd.Flags().StringVar(&userCreate.Password, "password", "", "Initial password, at least 12 characters")
	usersCreateCmd.Flags().StringVar(&userCreate.FirstName, "first-name", "", "First name")
	usersCreateCmd.Flags().StringVar(&userCreate.LastName, "last-name", "", "Last name")

	usersUpdateCmd.Flags().StringVar(&userEdit.Email, "email", "", "New email")
	usersUpdateCmd.Flags().StringVar(&userEdit.Username, "username", "", "New username")
	usersUpdateCmd.Flags().StringVar(&userEdit.FirstName, "first-name", "", "New first name")
	usersUpdateCmd.Flags().StringVar(&userEdit.LastName, "last-name", "", "New last name")
	usersUpdateCmd.Flags().StringVar(&userEdit.Bio, "bio", "", "New bio")

	usersDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

// changedFields builds an update holding only the flags the user set
func changedFields(cmd *cobra.Command, edit validate.UserEdit) *client.UserUpdate {
	update := &client.UserUpdate{}
	set := func(flag string, value string, dst **string) {
		if cmd.Flags().Changed(flag) {
			v := value
			*dst = &v
		}
	}
	set("email", edit.Email, &update.Email)
	set("username", edit.Username, &update.Username)
	set("first-name", edit.FirstName, &update.FirstName)
	set("last-name", edit.LastName, &update.LastName)
	set("bio", edit.Bio, &update.Bio)
	return update
}

// UsersListOutput is the JSON shape of users list
type UsersListOutput struct {
	Users  []client.User    `json:"users"`
	Stats  client.UserStats `json:"stats"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// runUsersList fetches one page plus the counts and returns exit code
func runUsersList(ctx context.Context, w io.Writer, limit, offset int, search string) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		if limit <= 0 {
			limit = a.cfg.UserPageSize
		}

		var (
			list  *client.UserList
			stats *client.UserStats
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			list, err = a.client.ListUsers(gctx, limit, offset)
			return err
		})
		g.Go(func() error {
			var err error
			stats, err = a.client.UserCount(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return reportError(w, err)
		}

		users := make([]client.User, 0, len(list.Users))
		for _, u := range list.Users {
			if u.Matches(search) {
				users = append(users, u)
			}
		}

		out := UsersListOutput{Users: users, Stats: *stats, Limit: limit, Offset: offset}
		if IsJSONOutput() {
			printJSON(w, out)
			return exitOK
		}
		fmt.Fprint(w, formatUsersTable(out))
		return exitOK
	})
}

func formatUsersTable(out UsersListOutput) string {
	var b strings.Builder
	if len(out.Users) == 0 {
		b.WriteString("No users found.\n")
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "USER", "NAME", "EMAIL", "VERIFIED", "JOINED")
		for _, u := range out.Users {
			verified := "no"
			if u.EmailVerified {
				verified = "yes"
			}
			t.Row(u.ID.String(), "@"+u.Username, u.DisplayName(), u.Email, verified, format.Joined(u.CreatedAt))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	page := out.Offset/out.Limit + 1
	pages := max(1, (out.Stats.Active+out.Limit-1)/out.Limit)
	fmt.Fprintf(&b, "\nPage %d of %d (%d active, %d total)\n", page, pages, out.Stats.Active, out.Stats.Total)
	return b.String()
}

// runUsersGet prints one user
func runUsersGet(ctx context.Context, w io.Writer, id string) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		user, err := a.client.GetUser(ctx, id)
		if err != nil {
			return reportError(w, err)
		}
		if IsJSONOutput() {
			printJSON(w, user)
			return exitOK
		}
		fmt.Fprintln(w, formatUser(user))
		return exitOK
	})
}

func formatUser(u *client.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (@%s)\n", u.Initials(), u.DisplayName(), u.Username)
	fmt.Fprintf(&b, "ID:       %s\n", u.ID)
	fmt.Fprintf(&b, "Email:    %s", u.Email)
	if u.EmailVerified {
		b.WriteString(" [verified]")
	}
	b.WriteString("\n")
	if u.Bio != "" {
		fmt.Fprintf(&b, "Bio:      %s\n", u.Bio)
	}
	fmt.Fprintf(&b, "Joined:   %s", format.Joined(u.CreatedAt))
	return b.String()
}

// runUsersCreate validates locally and creates the account
func runUsersCreate(ctx context.Context, w io.Writer, form validate.Registration) int {
	if err := form.Validate(); err != nil {
		fmt.Fprintf(w, "Error: %s\n", validate.FirstError(err, "email", "username", "password", "first_name", "last_name"))
		return exitRejected
	}
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		created, err := a.client.CreateUser(ctx, &client.RegisterRequest{
			Email:     form.Email,
			Username:  form.Username,
			Password:  form.Password,
			FirstName: form.FirstName,
			LastName:  form.LastName,
		})
		if err != nil {
			return reportError(w, err)
		}
		if IsJSONOutput() {
			printJSON(w, created)
			return exitOK
		}
		fmt.Fprintln(w, "User created successfully")
		return exitOK
	})
}

// runUsersUpdate sends only the changed fields
func runUsersUpdate(ctx context.Context, w io.Writer, id string, edit validate.UserEdit, update *client.UserUpdate) int {
	if err := edit.Validate(); err != nil {
		fmt.Fprintf(w, "Error: %s\n", validate.FirstError(err, "email", "username", "first_name", "last_name", "bio"))
		return exitRejected
	}
	if *update == (client.UserUpdate{}) {
		fmt.Fprintln(w, "Error: nothing to update; pass at least one field flag")
		return exitRejected
	}
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		updated, err := a.client.UpdateUser(ctx, id, update)
		if err != nil {
			return reportError(w, err)
		}
		// Editing oneself changes the header greeting
		if me, err := a.session.CurrentUser(); err == nil && me.ID == updated.User.ID {
			if err := a.session.Reload(ctx); err != nil {
				a.logger.Debug("profile reload failed", "error", err)
			}
		}
		if IsJSONOutput() {
			printJSON(w, updated)
			return exitOK
		}
		fmt.Fprintln(w, "User updated successfully")
		return exitOK
	})
}

// runUsersDelete deactivates the account
func runUsersDelete(ctx context.Context, w io.Writer, id string) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		resp, err := a.client.DeleteUser(ctx, id)
		if err != nil {
			return reportError(w, err)
		}
		if IsJSONOutput() {
			printJSON(w, resp)
			return exitOK
		}
		fmt.Fprintln(w, "User deleted successfully")
		return exitOK
	})
}
