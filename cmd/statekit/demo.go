package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/statekit/internal/review"
	"github.com/dmitrymomot/statekit/pkg/statemachine"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk two documents through the review workflow",
		Long: `Creates a low-score and a high-score document and tries to approve both.
The low-score document is refused by the score guard, rejected and reset to draft.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout(), a.svc)
		},
	}
}

func runDemo(ctx context.Context, w io.Writer, svc *review.Service) error {
	walks := []struct {
		score int
		steps []review.Status
	}{
		{score: 40, steps: []review.Status{review.Pending, review.Approved, review.Rejected, review.Draft}},
		{score: 75, steps: []review.Status{review.Pending, review.Approved}},
	}

	for _, walk := range walks {
		doc, err := svc.Create(ctx, walk.score)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "document %s (score %d) created as Draft\n", doc.ID, walk.score)

		for _, target := range walk.steps {
			m, err := svc.Transition(ctx, doc.ID, target)
			switch {
			case statemachine.IsTransitionNotAllowedError(err):
				fmt.Fprintf(w, "  -> %-8s refused: %v\n", target.Name(), err)
			case err != nil:
				return err
			default:
				allowed, err := svc.Allowed(ctx, doc.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  -> %-8s ok (score %d, next: %s)\n", m.Name(), review.Score(m.Entity()), joinStatuses(allowed))
			}
		}
	}
	return nil
}
