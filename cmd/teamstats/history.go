package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"teamstats/internal/config"
	"teamstats/internal/repository"
	"time"

	"github.com/spf13/cobra"
)

type historyRow struct {
	RunID      string `json:"run_id"`
	TeamID     string `json:"team_id"`
	CapturedAt string `json:"captured_at"`
	Timestamp  string `json:"timestamp"`
	Week       string `json:"week"`
	Twitter    *int   `json:"twitter"`
	Daily      int    `json:"daily_checkin"`
	Meeting    int    `json:"meeting_checkin"`
}

func newHistoryCmd() *cobra.Command {
	var (
		opts  config.Options
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a member's archived stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, limit)
		},
	}

	cmd.Flags().StringVar(&opts.ArchivePath, "archive", "", "SQLite archive for run history")
	cmd.Flags().StringVarP(&opts.Member, "member", "m", "", "Member name")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries (0 for all)")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func runHistory(cmd *cobra.Command, opts config.Options, limit int) error {
	var snapshots *repository.SnapshotRepository
	app := newApp(cmd, opts, &snapshots)

	return withApp(cmd, app, func(ctx context.Context) error {
		if !snapshots.Enabled() {
			return errors.New("no archive configured, pass --archive or set ARCHIVE_DB")
		}

		entries, err := snapshots.ListByMember(ctx, opts.Member, limit)
		if err != nil {
			return err
		}

		rows := make([]historyRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, historyRow{
				RunID:      e.RunID,
				TeamID:     e.TeamID,
				CapturedAt: e.CapturedAt.Format(time.RFC3339),
				Timestamp:  e.Entry.Timestamp,
				Week:       e.Entry.Week,
				Twitter:    e.Entry.Twitter,
				Daily:      e.Entry.DailyCheckin,
				Meeting:    e.Entry.MeetingCheckin,
			})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		return nil
	})
}
