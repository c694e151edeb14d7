package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/go-sales-client/app"
	"github.com/jrsteele09/go-sales-client/guard"
	"github.com/jrsteele09/go-sales-client/internal/config"
	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cli carries state shared by every command of one invocation
type cli struct {
	out     io.Writer
	errOut  io.Writer
	cfgFile string
	verbose bool
	app     *app.App
}

// noSession marks commands that run without loading the client
const noSession = "no-session"

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{out: stdout, errOut: stderr}

	root := &cobra.Command{
		Use:   "salesctl",
		Short: "Command line client for the sales backend",
		Long: `salesctl talks to the sales REST backend with the same session rules as
the web front end: the login is remembered between runs, admin-only pages are
refused for sellers, and an expired token logs you out.

Configuration is read from --config (YAML) and SALES_* environment variables.
Example: SALES_API_URL=http://localhost:8000 salesctl login --email admin@ventas.com`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.setupLogging()
			if cmd.Annotations[noSession] == "true" {
				return nil
			}
			return c.openApp(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.openCmd(),
		c.productsCmd(),
		c.salesCmd(),
		c.recordSaleCmd(),
		c.rankingCmd(),
		c.metricsCmd(),
		c.notificationsCmd(),
		c.exportCmd(),
		c.serveFakeCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setupLogging() {
	level := zerolog.WarnLevel
	if c.verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: c.errOut, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// openApp builds the client and waits for the stored session to resolve
func (c *cli) openApp(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	a, err := app.New(cfg,
		app.WithLogger(log.Logger),
		app.WithNavigator(func(path string) {
			fmt.Fprintf(c.errOut, "session expired, please log in again (redirected to %s)\n", path)
		}),
	)
	if err != nil {
		return err
	}
	c.app = a

	a.Start(ctx)
	if _, err := a.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for session: %w", err)
	}
	return nil
}

// requirePage refuses to continue unless the guard would render page
func (c *cli) requirePage(page string) error {
	d := c.app.Router.Navigate(page)
	switch d.Action {
	case guard.ActionRender:
		return nil
	case guard.ActionRedirect:
		if d.Path == guard.RouteLogin {
			return apperrors.Wrapf(apperrors.ErrNoSession, "%s: not logged in, run `salesctl login` first", page)
		}
		return fmt.Errorf("%s: not allowed for your role (redirected to %s)", page, d.Path)
	default:
		return fmt.Errorf("%s: %s", page, guard.LoadingText)
	}
}
