// Package cli is the issuectl command tree: report issues and triage them
// against a running issues API.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/config"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/issueapi"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/triage"
	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/pkg/logger"
)

type app struct {
	v       *viper.Viper
	cfgFile string
}

// Execute runs issuectl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree with its own settings.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	defaults := config.Load()

	root := &cobra.Command{
		Use:   "issuectl",
		Short: "Report and triage UNMA 2025 registration issues",
		Long: `issuectl talks to the issues API.

Anyone can report a problem with the registration site; admins list, inspect,
assign, comment on and move issues through Open, In Progress, Resolved and
Closed.

Examples:
  issuectl report --title "Payment page times out" --category Payment ...
  issuectl list --status Open --priority High
  issuectl status 3f2c... resolved --note "Refund issued"`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is .issuectl.yaml)")
	pf.String("api", defaults.APIBaseURL, "issues API base URL")
	pf.Duration("timeout", defaults.HTTPTimeout, "per-request timeout")
	pf.Duration("cache-ttl", defaults.QueryCacheTTL, "how long a listed page stays fresh")
	pf.String("as", "", "user id recorded as comment author")
	pf.Bool("verbose", false, "enable verbose output")
	for _, name := range []string{"api", "timeout", "cache-ttl", "as", "verbose"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		a.reportCmd(),
		a.listCmd(),
		a.showCmd(),
		a.statusCmd(),
		a.assignCmd(),
		a.commentCmd(),
		a.statsCmd(),
	)
	return root
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		a.v.AddConfigPath(cwd)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".issuectl")
	}

	a.v.SetEnvPrefix("ISSUECTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (a *app) logger(w io.Writer) zerolog.Logger {
	env := "prod"
	if a.v.GetBool("verbose") {
		env = "dev"
	}
	return logger.NewWithWriter(env, zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}})
}

// session wires a controller to the configured API for one command run.
func (a *app) session(cmd *cobra.Command) (*triage.Controller, *issueapi.Client) {
	l := a.logger(cmd.ErrOrStderr())
	client := issueapi.New(a.v.GetString("api"),
		issueapi.WithTimeout(a.v.GetDuration("timeout")),
		issueapi.WithActor(a.v.GetString("as")),
		issueapi.WithLogger(l),
	)
	ctrl := triage.NewController(client, triage.LogNotifier{Log: l}, a.v.GetDuration("cache-ttl"))
	return ctrl, client
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
