package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

const serviceName = "profile-service"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   serviceName,
		Short: "Financial profile service",
		Long: `Serves the /api/userdata API: salary, expenses, income, savings goals
and the reports built from them. Also carries the operator commands for
running migrations and end-of-month settlement.`,
		SilenceUsage: true,
		// bare invocation serves, which is what the container entrypoint does
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(serveCmd())
	root.AddCommand(settleCmd())
	root.AddCommand(migrateCmd())
	return root
}

func main() {
	models.UseNumericAmounts()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
