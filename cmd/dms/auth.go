package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Simi445/DMS-K8S/internal/forms"
)

func newLoginCmd() *cobra.Command {
	var (
		configPath string
		username   string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, configPath, username, password)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.MarkFlagRequired("username")
	return cmd
}

func runLogin(cmd *cobra.Command, configPath, username, password string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
	}

	form := forms.LoginForm{Username: username, Password: password}
	req, err := form.Validate()
	if err != nil {
		return err
	}

	token, err := a.client.Login(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := a.manager.UpdateToken(token); err != nil {
		return err
	}

	claims := a.manager.Claims()
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", claims.Username, claims.Role)
	return nil
}

func newRegisterCmd() *cobra.Command {
	var (
		configPath string
		username   string
		email      string
		role       string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, configPath, forms.RegisterForm{
				Username: username,
				Email:    email,
				Role:     role,
				Password: password,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username (required)")
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&role, "role", "user", "account role (user or admin)")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

func runRegister(cmd *cobra.Command, configPath string, form forms.RegisterForm) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if form.Password == "" {
		form.Password, err = promptPassword("Password: ")
		if err != nil {
			return err
		}
		form.ConfirmPassword, err = promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
	} else {
		form.ConfirmPassword = form.Password
	}

	req, err := form.Validate()
	if err != nil {
		return err
	}

	token, err := a.client.Register(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := a.manager.UpdateToken(token); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", form.Username)
	return nil
}

func newLogoutCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.manager.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			claims, err := a.requireSession()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username: %s\n", claims.Username)
			fmt.Fprintf(out, "Auth ID:  %d\n", claims.AuthID)
			fmt.Fprintf(out, "Role:     %s\n", claims.Role)
			if !claims.Exp.IsZero() {
				fmt.Fprintf(out, "Expires:  %s\n", claims.Exp.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
