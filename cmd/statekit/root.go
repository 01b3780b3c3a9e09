package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/statekit/pkg/runid"
)

func newRootCmd(a *app) *cobra.Command {
	var flags appConfig

	cmd := &cobra.Command{
		Use:   "statekit",
		Short: "statekit runs the document review state machine",
		Long: `statekit stores review documents in memory, PostgreSQL, Redis or MongoDB and
moves them through the Draft -> Pending -> Approved/Rejected workflow.

Configuration is read from the environment (and a .env file): STATEKIT_DRIVER,
STATEKIT_ENV, STATEKIT_LOG_LEVEL, STATEKIT_METRICS_ADDR, STATEKIT_RULES_FILE and the
PG_*, REDIS_* or MONGODB_* variables of the selected driver. Flags win over the environment.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := runid.WithContext(cmd.Context(), runid.New())
			cmd.SetContext(ctx)
			return a.setup(ctx, flags)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.Driver, "driver", "", "record store: memory, postgres, redis or mongo (default from STATEKIT_DRIVER)")
	pf.StringVar(&flags.RulesFile, "rules", "", "YAML rule file replacing the built-in review rules")
	pf.StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newCreateCmd(a),
		newShowCmd(a),
		newAllowedCmd(a),
		newTransitionCmd(a),
		newGraphCmd(a),
		newRulesCmd(a),
		newMigrateCmd(a),
		newHealthCmd(a),
		newDemoCmd(a),
	)
	return cmd
}
