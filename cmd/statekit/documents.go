package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/statekit/internal/review"
	"github.com/dmitrymomot/statekit/pkg/record"
)

func newCreateCmd(a *app) *cobra.Command {
	var score int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := a.svc.Create(cmd.Context(), score)
			if err != nil {
				return err
			}
			printDocument(cmd.OutOrStdout(), doc)
			return nil
		},
	}
	cmd.Flags().IntVar(&score, "score", 0, "review score of the document")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid document id: %w", err)
			}
			m, err := a.svc.Open(cmd.Context(), id)
			if err != nil {
				return err
			}
			printDocument(cmd.OutOrStdout(), m.Entity())
			return nil
		},
	}
}

func newAllowedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "allowed ID",
		Short: "List the statuses a document can move to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid document id: %w", err)
			}
			allowed, err := a.svc.Allowed(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), joinStatuses(allowed))
			return nil
		},
	}
}

func newTransitionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transition ID STATUS",
		Short: "Move a document to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid document id: %w", err)
			}
			target, err := review.ParseStatus(args[1])
			if err != nil {
				return err
			}
			m, err := a.svc.Transition(cmd.Context(), id, target)
			if err != nil {
				return err
			}
			printDocument(cmd.OutOrStdout(), m.Entity())
			return nil
		},
	}
}

func printDocument(w io.Writer, doc *record.Record) {
	status, err := review.ParseStatus(doc.Attribute(review.AttrStatus))
	name := status.Name()
	if err != nil {
		name = strconv.Quote(doc.Attribute(review.AttrStatus))
	}
	fmt.Fprintf(w, "id:      %s\n", doc.ID)
	fmt.Fprintf(w, "status:  %s\n", name)
	fmt.Fprintf(w, "score:   %d\n", review.Score(doc))
	fmt.Fprintf(w, "version: %d\n", doc.Version)
}

func joinStatuses(statuses []review.Status) string {
	if len(statuses) == 0 {
		return "(none)"
	}
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.Name()
	}
	return strings.Join(names, ", ")
}
