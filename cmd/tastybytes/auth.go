package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(run runner) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			user, err := a.session.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			cmd.Printf("Welcome, %s!\n", user.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(run runner) *cobra.Command {
	var email, password, googleToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password or a Google ID token",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			switch {
			case googleToken != "":
				user, err := a.session.LoginWithGoogle(ctx, googleToken)
				if err != nil {
					return err
				}
				cmd.Printf("Signed in as %s\n", user.Name)
			case email != "":
				user, err := a.session.Login(ctx, email, password)
				if err != nil {
					return err
				}
				cmd.Printf("Signed in as %s\n", user.Name)
			default:
				return errors.New("either --email or --google-token is required")
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&googleToken, "google-token", "", "Google ID token")
	cmd.MarkFlagsMutuallyExclusive("email", "google-token")
	return cmd
}

func newLogoutCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Signed out")
			return nil
		}),
	}
}

func newWhoamiCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			user := a.session.CurrentUser()
			if user == nil {
				cmd.Println("Not signed in")
				return nil
			}
			line := fmt.Sprintf("%s <%s>", user.Name, user.Email)
			if user.IsAdmin() {
				line += " (admin)"
			}
			cmd.Println(line)
			return nil
		}),
	}
}
