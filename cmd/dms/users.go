package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simi445/DMS-K8S/internal/forms"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User management commands",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersAddCmd())
	cmd.AddCommand(newUsersEditCmd())
	cmd.AddCommand(newUsersDeleteCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List portal users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runUsersList(cmd *cobra.Command, configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	if _, err := a.requireSession(); err != nil {
		return err
	}

	users, err := a.client.Users(cmd.Context())
	if err != nil {
		return err
	}

	// Refresh the dashboard's snapshot while we have the list.
	if st, err := a.openStore(); err == nil {
		if err := st.CacheUsers(users); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache users: %v\n", err)
		}
	}

	if len(users) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No users.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AUTH ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.AuthID, u.Username, u.Email, u.Role)
	}
	return w.Flush()
}

func newUsersAddCmd() *cobra.Command {
	var (
		configPath string
		username   string
		email      string
		role       string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new portal account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if password == "" {
				password, err = promptPassword("Password for new account: ")
				if err != nil {
					return err
				}
			}
			form := forms.RegisterForm{
				Username:        username,
				Email:           email,
				Role:            role,
				Password:        password,
				ConfirmPassword: password,
			}
			req, err := form.Validate()
			if err != nil {
				return err
			}

			// The issued token belongs to the new account; our session
			// stays untouched.
			if _, err := a.client.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (required)")
	cmd.Flags().StringVar(&email, "email", "", "email (required)")
	cmd.Flags().StringVar(&role, "role", "user", "role (user or admin)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newUsersEditCmd() *cobra.Command {
	var (
		configPath string
		authID     int64
		username   string
		email      string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a user's account fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.requireSession(); err != nil {
				return err
			}

			form := forms.UserForm{Username: username, Email: email, Role: role}
			req, err := form.ToEditRequest(authID)
			if err != nil {
				return err
			}
			if err := a.client.EditUser(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated user %d\n", authID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().Int64Var(&authID, "id", 0, "auth id of the user (required)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "new username (required)")
	cmd.Flags().StringVar(&email, "email", "", "new email (required)")
	cmd.Flags().StringVar(&role, "role", "", "new role (required)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("role")
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	var (
		configPath string
		authID     int64
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()
			if _, err := a.requireSession(); err != nil {
				return err
			}

			if err := a.client.DeleteUser(cmd.Context(), authID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", authID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().Int64Var(&authID, "id", 0, "auth id of the user (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}
