package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/db"
	"github.com/angelmondragon/pdv-backend/pkg/db/models"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
	"github.com/angelmondragon/pdv-backend/pkg/outbox"
)

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect the sale event outbox",
	}

	var limit int
	parked := &cobra.Command{
		Use:   "parked",
		Short: "List events the publisher gave up on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client, err := db.New(cmd.Context(), cfg.DB, logger.Nop())
			if err != nil {
				return err
			}
			defer client.Close()

			rows, err := outbox.NewRepository(client.DB()).ListTerminal(client.DB().WithContext(cmd.Context()), cfg.Outbox.MaxAttempts, limit)
			if err != nil {
				return fmt.Errorf("list parked events: %w", err)
			}
			writeParked(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	parked.Flags().IntVar(&limit, "limit", 50, "maximum rows to print")
	cmd.AddCommand(parked)
	return cmd
}

func writeParked(out io.Writer, rows []models.OutboxEvent) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "no parked events")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tSALE\tATTEMPTS\tCREATED\tLAST ERROR")
	for _, row := range rows {
		lastErr := "-"
		if row.LastError != nil && *row.LastError != "" {
			lastErr = *row.LastError
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			row.ID, row.EventType, row.AggregateID, row.AttemptCount, row.CreatedAt.Format(time.RFC3339), lastErr)
	}
	_ = tw.Flush()
}
