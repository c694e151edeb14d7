package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/go-sales-client/guard"
	"github.com/jrsteele09/go-sales-client/token"
	"github.com/jrsteele09/go-sales-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var creds users.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Long: `Log in with email and password. The password can also be given through
SALES_PASSWORD to keep it out of shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv("SALES_PASSWORD")
			}
			if err := c.app.Session.Login(cmd.Context(), creds); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			user := c.app.Session.User()
			displayAppname(c.out, c.app.Config.GetAppName())
			fmt.Fprintf(c.out, "Logged in as %s\n", user)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			c.app.Session.Logout()
			fmt.Fprintln(c.out, "Logged out")
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			st := c.app.Session.State()
			if !st.Authenticated {
				fmt.Fprintln(c.out, "Not logged in")
				return
			}
			fmt.Fprintln(c.out, st.User)
			if st.User.CommissionPercent != nil {
				fmt.Fprintf(c.out, "Commission: %.2f%%\n", *st.User.CommissionPercent)
			}
			accessToken, err := c.app.Store.AccessToken()
			if err != nil {
				return
			}
			if exp, ok := token.ExpiresAt(accessToken); ok {
				fmt.Fprintf(c.out, "Token expires: %s\n", exp.Local().Format(time.RFC1123))
			}
		},
	}
}

func (c *cli) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <route>",
		Short: "Show where navigating to a page would land",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			d, hops := c.app.Router.Follow(args[0])
			for i := 1; i < len(hops); i++ {
				fmt.Fprintf(c.out, "%s -> %s\n", hops[i-1], hops[i])
			}
			switch d.Action {
			case guard.ActionLoading:
				fmt.Fprintln(c.out, guard.LoadingText)
			default:
				fmt.Fprintf(c.out, "%s %s\n", d.Action, d.Path)
			}
		},
	}
}
