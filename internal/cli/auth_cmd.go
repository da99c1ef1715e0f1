package cli

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const envPassword = "TRIPWISE_PASSWORD"

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := resolvePassword(app, password)
			if err != nil {
				return err
			}
			user, err := app.Session.Login(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			app.Printer.Success("signed in as " + displayName(user.DisplayName, user.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password ($TRIPWISE_PASSWORD, or piped on stdin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := resolvePassword(app, password)
			if err != nil {
				return err
			}
			user, err := app.Session.Register(cmd.Context(), email, pw, name)
			if err != nil {
				return err
			}
			app.Printer.Success("welcome, " + displayName(user.DisplayName, user.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password ($TRIPWISE_PASSWORD, or piped on stdin)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.Session.IsAuthenticated() {
				app.Printer.Printf("not signed in")
				return nil
			}
			if err := app.Session.Logout(cmd.Context()); err != nil {
				app.Printer.Warning("server logout failed, local session cleared")
				return nil
			}
			app.Printer.Success("signed out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(*cobra.Command, []string) error {
			user := app.Session.User()
			if user == nil {
				app.Printer.PromptLogin()
				return nil
			}
			app.Printer.Printf("%s <%s> %s", displayName(user.DisplayName, user.Email), user.Email, user.ID)
			return nil
		},
	}
}

func resolvePassword(app *App, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv(envPassword); v != "" {
		return v, nil
	}
	if f, ok := app.In.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "", errors.New("password required: pass --password, set " + envPassword + " or pipe it on stdin")
	}
	if app.In == nil {
		return "", errors.New("password required")
	}
	line, err := bufio.NewReader(app.In).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", errors.New("password required")
		}
		return "", errors.New("empty password")
	}
	return line, nil
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}
