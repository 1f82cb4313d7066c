package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

type settler interface {
	Settle(ctx context.Context, cmd cqrs.SettleCommand) (*models.FinancialProfile, error)
}

// settleCmd is the hook an external scheduler calls once a month per user.
func settleCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Run end-of-month settlement for one user",
		Long: `Moves what is left of the user's salary after expenses into a savings
record, then resets salary and clears expenses. Not safe to run twice for
the same month.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return runSettle(cmd.Context(), a.commands, userID, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "id of the user to settle")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runSettle(ctx context.Context, s settler, userID string, out io.Writer) error {
	// the operator acts on the user's behalf
	p, err := s.Settle(ctx, cqrs.SettleCommand{UserID: userID, RequestingUserID: userID})
	if err != nil {
		return fmt.Errorf("settle %s: %w", userID, err)
	}
	record := p.Savings[len(p.Savings)-1]
	fmt.Fprintf(out, "settled %s: %s moved to savings (record %s)\n", userID, record.Amount.StringFixed(2), record.ID)
	return nil
}
