package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/statekit/internal/review"
	"github.com/dmitrymomot/statekit/pkg/pgstore"
	"github.com/dmitrymomot/statekit/pkg/rulefile"
)

var ErrMigrateDriver = errors.New("migrate requires the postgres driver")

func newGraphCmd(a *app) *cobra.Command {
	var highlight string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the review workflow as a Graphviz digraph",
		Long: `Prints the rule table in DOT format. Pipe it to "dot -Tsvg" to render it.
With --document the document's current status is highlighted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := a.svc.Definition()
			if highlight == "" {
				fmt.Fprint(cmd.OutOrStdout(), def.ToDOT())
				return nil
			}

			id, err := uuid.Parse(highlight)
			if err != nil {
				return fmt.Errorf("invalid document id: %w", err)
			}
			m, err := a.svc.Open(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), def.ToDOT(m.Current()))
			return nil
		},
	}
	cmd.Flags().StringVar(&highlight, "document", "", "highlight the current status of this document")
	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the active rule table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := a.svc.Definition()
			f := rulefile.FromRules(def.Name(), def.Rules().Rules(), review.HandlerName)
			return rulefile.Encode(cmd.OutOrStdout(), f)
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the PostgreSQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.pool == nil {
				return ErrMigrateDriver
			}
			cfg, err := loadConfig[pgstore.Config](a)
			if err != nil {
				return err
			}
			if err := pgstore.Migrate(cmd.Context(), a.pool, cfg, a.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the record store is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", a.cfg.Driver)
			return nil
		},
	}
}
