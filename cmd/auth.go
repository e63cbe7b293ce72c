// ABOUTME: Session commands: login, logout, register and whoami
// ABOUTME: Prompts with huh when credentials are not given as flags

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/validate"
)

var (
	loginEmail    string
	loginPassword string

	registerForm validate.Registration
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session for later commands",
	Long: `Sign in with email and password. The password may also be supplied through
FANZONES_PASSWORD; when either value is missing you are prompted for it.`,
	Run: func(cmd *cobra.Command, args []string) {
		if loginPassword == "" {
			loginPassword = os.Getenv("FANZONES_PASSWORD")
		}
		if loginEmail == "" || loginPassword == "" {
			if err := promptLogin(&loginEmail, &loginPassword); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
		}
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runLogin(ctx, w, loginEmail, loginPassword)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored credentials",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runLogout)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an admin account",
	Long:  `Create an account. Registration does not sign you in; run "fanzones login" afterwards.`,
	Run: func(cmd *cobra.Command, args []string) {
		if registerForm.Password == "" {
			if err := promptNewPassword(&registerForm.Password, &registerForm.ConfirmPassword); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
		} else {
			registerForm.ConfirmPassword = registerForm.Password
		}
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runRegister(ctx, w, registerForm)
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and session expiry",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(runWhoami)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prefer FANZONES_PASSWORD or the prompt)")

	registerCmd.Flags().StringVar(&registerForm.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerForm.Username, "username", "", "Username (3-30 letters, digits or underscores)")
	registerCmd.Flags().StringVar(&registerForm.Password, "password", "", "Password, at least 12 characters (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerForm.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&registerForm.LastName, "last-name", "", "Last name")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)
}

func promptLogin(email, password *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(email).Validate(validate.Email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).
				Validate(validate.Required("Password is required")),
		),
	).Run()
}

func promptNewPassword(password, confirm *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).
				Validate(validate.Password).
				DescriptionFunc(func() string {
					s := validate.PasswordStrength(*password)
					return "Strength: " + s.Label
				}, password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(confirm).
				Validate(validate.Confirm(password)),
		),
	).Run()
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, email, password string) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if err := a.session.Login(ctx, email, password); err != nil {
			return reportError(w, err)
		}
		user, err := a.session.CurrentUser()
		if err != nil {
			return reportError(w, err)
		}

		if IsJSONOutput() {
			printJSON(w, map[string]any{"user": user, "persisted": a.tokens.Durable()})
			return exitOK
		}
		fmt.Fprintf(w, "Logged in as %s (@%s)\n", user.DisplayName(), user.Username)
		if !a.tokens.Durable() {
			fmt.Fprintln(w, "Warning: credentials are kept for this run only")
		}
		return exitOK
	})
}

// runLogout ends the session; it succeeds when already logged out
func runLogout(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if a.tokens.RefreshToken() == "" {
			fmt.Fprintln(w, "Not logged in.")
			return exitOK
		}
		a.session.Logout(ctx)
		fmt.Fprintln(w, "Logged out.")
		return exitOK
	})
}

// runRegister validates the form locally, then creates the account
func runRegister(ctx context.Context, w io.Writer, form validate.Registration) int {
	if err := form.Validate(); err != nil {
		fields := validate.FieldErrors(err)
		for _, name := range []string{"email", "username", "password", "confirmPassword", "first_name", "last_name"} {
			if msg, ok := fields[name]; ok {
				fmt.Fprintf(w, "Error: %s\n", msg)
			}
		}
		return exitRejected
	}

	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		created, err := a.session.Register(ctx, &client.RegisterRequest{
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
		fmt.Fprintln(w, "Account created! Please log in.")
		return exitOK
	})
}

// runWhoami prints the current user
func runWhoami(ctx context.Context, w io.Writer) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		user, err := a.session.CurrentUser()
		if err != nil {
			return reportError(w, err)
		}
		info, _ := client.InspectToken(a.tokens.AccessToken())

		if IsJSONOutput() {
			out := map[string]any{"user": user, "persisted": a.tokens.Durable()}
			if info != nil && !info.ExpiresAt.IsZero() {
				out["accessTokenExpiresAt"] = info.ExpiresAt
			}
			printJSON(w, out)
			return exitOK
		}
		fmt.Fprintln(w, formatWhoami(user, info, a.tokens.Durable(), time.Now()))
		return exitOK
	})
}

// formatWhoami formats the user and session for human readability
func formatWhoami(user *client.User, info *client.TokenInfo, durable bool, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User:      %s (@%s)\n", user.DisplayName(), user.Username)
	fmt.Fprintf(&b, "Email:     %s", user.Email)
	if user.EmailVerified {
		b.WriteString(" [verified]")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "ID:        %s\n", user.ID)

	session := "expiry unknown"
	if info != nil && info.ExpiresIn(now) > 0 {
		session = "access token expires " + humanize.RelTime(info.ExpiresAt, now, "ago", "from now")
	}
	fmt.Fprintf(&b, "Session:   %s", session)
	if !durable {
		b.WriteString(" (not persisted)")
	}
	return b.String()
}
