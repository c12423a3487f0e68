package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docsmith-ai/docsmith/internal/output"
)

var (
	loginUsername    string
	resetToken       string
	registerEmail    string
	registerUsername string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the docsmith service",
	Long: `Log in with username and password.

Tokens are stored in the state directory and refreshed automatically
when they expire.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return loginRun(cmd)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return logoutRun()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a docsmith account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return registerRun(cmd)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and token expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return whoamiRun()
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "password-reset [email]",
	Short: "Request or confirm a password reset",
	Long: `Request a password reset email, or complete one.

Without --token, sends a reset email to the given address. With --token,
prompts for a new password and completes the reset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return passwordResetRun(cmd, args)
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Username (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address (prompted when omitted)")
	passwordResetCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwordResetCmd)
}

func loginRun(cmd *cobra.Command) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	sess, err := getSession()
	if err != nil {
		return err
	}

	username := loginUsername
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	pair, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := sess.SaveLogin(username, pair.Access, pair.Refresh); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	ui.Success("Logged in as %s", output.Cyan(username))
	return nil
}

func logoutRun() error {
	sess, err := getSession()
	if err != nil {
		return err
	}

	if !sess.LoggedIn() {
		ui.Info("Not logged in.")
		return nil
	}

	username := sess.Username()
	if err := sess.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	ui.Success("Logged out %s", output.Cyan(username))
	return nil
}

func registerRun(cmd *cobra.Command) error {
	client, err := getClient()
	if err != nil {
		return err
	}
	sess, err := getSession()
	if err != nil {
		return err
	}

	username := registerUsername
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}
	email := registerEmail
	if email == "" {
		email, err = promptLine("Email: ")
		if err != nil {
			return err
		}
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	again, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != again {
		return fmt.Errorf("passwords do not match")
	}

	pair, err := client.Register(cmd.Context(), username, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	// Some deployments return tokens directly; others require a login.
	if pair != nil && pair.Access != "" {
		if err := sess.SaveLogin(username, pair.Access, pair.Refresh); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		ui.Success("Account created; logged in as %s", output.Cyan(username))
		return nil
	}

	ui.Success("Account created. Run 'docsmith login' to sign in.")
	return nil
}

func whoamiRun() error {
	sess, err := getSession()
	if err != nil {
		return err
	}

	if !sess.LoggedIn() {
		ui.Info("Not logged in. Run 'docsmith login' to sign in.")
		return nil
	}

	line := fmt.Sprintf("Logged in as %s", output.Cyan(sess.Username()))
	if exp, ok := sess.ExpiresAt(); ok {
		if remaining := time.Until(exp); remaining > 0 {
			line += fmt.Sprintf(" (token expires in %s)", remaining.Round(time.Minute))
		} else {
			line += " (token expired; it will refresh on the next request)"
		}
	}
	ui.Info("%s", line)
	return nil
}

func passwordResetRun(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if resetToken == "" {
		if len(args) == 0 {
			return fmt.Errorf("give the account email, e.g. 'docsmith password-reset you@example.com'")
		}
		if err := client.RequestPasswordReset(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("request reset: %w", err)
		}
		ui.Success("Reset email sent to %s (if the account exists)", args[0])
		return nil
	}

	password, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	again, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != again {
		return fmt.Errorf("passwords do not match")
	}

	if err := client.ConfirmPasswordReset(cmd.Context(), resetToken, password); err != nil {
		return fmt.Errorf("confirm reset: %w", err)
	}
	ui.Success("Password updated. Run 'docsmith login' to sign in.")
	return nil
}

func promptLine(label string) (string, error) {
	fmt.Fprint(ui.Out, label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("nothing entered")
	}
	return line, nil
}

func promptPassword(label string) (string, error) {
	fmt.Fprint(ui.Out, label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(ui.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("nothing entered")
	}
	return string(b), nil
}
