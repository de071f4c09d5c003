package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjod/go_cart/storefront/internal/view"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := rt.session.Login(cmd.Context(), email, password)
			if !res.Success {
				return errors.New(res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", rt.session.CurrentUser().Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCommand(rt *runtime) *cobra.Command {
	var email, password, fullName string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := rt.session.Register(cmd.Context(), email, password, fullName)
			if !res.Success {
				return errors.New(res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", rt.session.CurrentUser().FullName)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := rt.visit(cmd.Context(), "/profile")
			if err != nil {
				return err
			}
			return report(cmd, page.View.(*view.Profile).Logout(cmd.Context()))
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := rt.visit(cmd.Context(), "/profile")
			if err != nil {
				return err
			}
			user := page.View.(*view.Profile).User()
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.FullName, user.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "Member since %s\n", user.CreatedAt.Format("2006-01-02"))
			return nil
		},
	}
}
