package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/config"
	"github.com/workairs/wa-cli/internal/ui"
)

var (
	authEmail      string
	authUsername   string
	authCompany    string
	resetToken     string
	magicRedirect  string
	resendEmailArg string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign up and manage your account",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.LoginRequest{Email: authEmail, Username: authUsername}
		if req.Email == "" && req.Username == "" {
			email, err := prompt("Email")
			if err != nil {
				return err
			}
			req.Email = email
		}
		password, err := promptSecret("Password")
		if err != nil {
			return err
		}
		req.Password = password

		client, err := newClient()
		if err != nil {
			return err
		}
		sess, err := client.Auth.Login(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		return storeSession(sess)
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := orPrompt(authEmail, "Email")
		if err != nil {
			return err
		}
		p1, err := promptSecret("Password")
		if err != nil {
			return err
		}
		p2, err := promptSecret("Repeat password")
		if err != nil {
			return err
		}
		if p1 != p2 {
			return errors.New("passwords do not match")
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		sess, err := client.Auth.Register(cmd.Context(), api.RegisterRequest{
			Email:     email,
			Password1: p1,
			Password2: p2,
			Username:  authUsername,
			Company:   authCompany,
		})
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if sess.Key == "" {
			color.New(color.FgGreen).Fprintln(os.Stderr, "  ✓ Account created. Check your inbox to verify your email.")
			return nil
		}
		return storeSession(sess)
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}
		logoutErr := client.Auth.Logout(cmd.Context())
		if err := config.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear token: %w", err)
		}
		if logoutErr != nil && !errors.Is(logoutErr, api.ErrUnauthorized) {
			logrus.WithError(logoutErr).Warn("server logout failed")
		}
		color.New(color.FgGreen).Fprintln(os.Stderr, "  ✓ Logged out")
		return nil
	},
}

var authMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireLogin()
		if err != nil {
			return err
		}
		u, err := client.Auth.Me(cmd.Context())
		if err != nil {
			return err
		}
		tab := ui.Table{
			Columns: []string{"ID", "EMAIL", "USERNAME", "NAME", "COMPANY", "ONBOARDED"},
			Data: [][]string{{
				strconv.FormatInt(u.ID, 10),
				u.Email,
				u.Username,
				u.FirstName + " " + u.LastName,
				u.Company,
				strconv.FormatBool(u.OnboardingCompleted),
			}},
		}
		return printResult(u, tab)
	},
}

var authVerifyCmd = &cobra.Command{
	Use:   "verify-email <token>",
	Short: "Confirm your email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		d, err := client.Auth.VerifyEmail(cmd.Context(), args[0])
		return reportDetail(d, err, "Email verified")
	},
}

var authResendCmd = &cobra.Command{
	Use:   "resend-verification [email]",
	Short: "Send the verification email again",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			resendEmailArg = args[0]
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		d, err := client.Auth.ResendVerification(cmd.Context(), resendEmailArg)
		return reportDetail(d, err, "Verification email sent")
	},
}

var authResetCmd = &cobra.Command{
	Use:   "reset-password [email]",
	Short: "Request a reset link, or set a new password with --reset-token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		if resetToken == "" {
			email := ""
			if len(args) == 1 {
				email = args[0]
			}
			if email, err = orPrompt(email, "Email"); err != nil {
				return err
			}
			d, err := client.Auth.RequestPasswordReset(cmd.Context(), email)
			return reportDetail(d, err, "If the account exists, a reset link is on its way")
		}

		p1, err := promptSecret("New password")
		if err != nil {
			return err
		}
		p2, err := promptSecret("Repeat password")
		if err != nil {
			return err
		}
		if p1 != p2 {
			return errors.New("passwords do not match")
		}
		d, err := client.Auth.ResetPassword(cmd.Context(), resetToken, p1)
		return reportDetail(d, err, "Password changed")
	},
}

var authMagicCmd = &cobra.Command{
	Use:   "magic <token>",
	Short: "Sign in with a magic-link token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		sess, err := client.Auth.ExchangeMagicToken(cmd.Context(), args[0], magicRedirect)
		if err != nil {
			return fmt.Errorf("magic link sign-in failed: %w", err)
		}
		return storeSession(sess)
	},
}

func storeSession(sess *api.Session) error {
	if sess.Key == "" {
		return errors.New("server did not return a session token")
	}
	if err := config.SetToken(sess.Key); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	who := sess.User.Email
	if who == "" {
		who = sess.User.Username
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ Logged in as %s\n", who)
	return nil
}

func reportDetail(d *api.Detail, err error, fallback string) error {
	if err != nil {
		return err
	}
	msg := fallback
	if d != nil && d.Detail != "" {
		msg = d.Detail
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "  ✓ %s\n", msg)
	return nil
}

func init() {
	authLoginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	authLoginCmd.Flags().StringVar(&authUsername, "username", "", "Account username (instead of email)")
	authLoginCmd.MarkFlagsMutuallyExclusive("email", "username")

	authRegisterCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	authRegisterCmd.Flags().StringVar(&authUsername, "username", "", "Optional username")
	authRegisterCmd.Flags().StringVar(&authCompany, "company", "", "Company name")

	authResetCmd.Flags().StringVar(&resetToken, "reset-token", "", "Token from the reset email; prompts for the new password")
	authMagicCmd.Flags().StringVar(&magicRedirect, "redirect", "", "Redirect path passed to the backend")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authMeCmd)
	authCmd.AddCommand(authVerifyCmd)
	authCmd.AddCommand(authResendCmd)
	authCmd.AddCommand(authResetCmd)
	authCmd.AddCommand(authMagicCmd)
}
