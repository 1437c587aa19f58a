package repository

import (
	"context"
	"database/sql"
	"fmt"
	"teamstats/internal/domain"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type Run struct {
	ID         string
	CapturedAt time.Time
	Timestamp  string
	Week       string
	Members    int
}

type MemberSnapshot struct {
	ID            string
	RunID         string
	TeamID        string
	MemberName    string
	TwitterHandle string
	CapturedAt    time.Time
	Entry         domain.StatsEntry
}

// SnapshotRepository archives merged entries. A nil database disables it.
type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(sqlDB *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *SnapshotRepository) Enabled() bool {
	return r != nil && r.db != nil
}

// SaveRun stores the newest entry of every member under a fresh run id.
func (r *SnapshotRepository) SaveRun(ctx context.Context, capturedAt time.Time, timestamp, week string, roster domain.Roster) (*Run, error) {
	if !r.Enabled() {
		return nil, nil
	}

	run := &Run{
		ID:         uuid.New().String(),
		CapturedAt: capturedAt.UTC(),
		Timestamp:  timestamp,
		Week:       week,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var snapshots []MemberSnapshot
	roster.Members(func(team *domain.Team, m *domain.Member) {
		for i := len(m.Stats) - 1; i >= 0; i-- {
			if m.Stats[i].Timestamp == timestamp {
				snapshots = append(snapshots, MemberSnapshot{
					TeamID:        team.TeamID,
					MemberName:    m.Name,
					TwitterHandle: m.Twitter,
					Entry:         m.Stats[i],
				})
				break
			}
		}
	})
	run.Members = len(snapshots)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO report_runs (id, captured_at, timestamp, week, member_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CapturedAt, run.Timestamp, run.Week, run.Members,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert report run: %w", err)
	}

	for _, s := range snapshots {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nanoid: %w", err)
		}

		var twitter sql.NullInt64
		if s.Entry.Twitter != nil {
			twitter = sql.NullInt64{Int64: int64(*s.Entry.Twitter), Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO member_stats (id, run_id, team_id, member_name, twitter_handle, twitter_count, gettr_count, daily_checkin, meeting_checkin)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, run.ID, s.TeamID, s.MemberName, s.TwitterHandle, twitter, s.Entry.Gettr, s.Entry.DailyCheckin, s.Entry.MeetingCheckin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert member stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report run: %w", err)
	}

	r.logger.Info().Str("run_id", run.ID).Int("members", run.Members).Msg("run archived")
	return run, nil
}

// ListByMember returns archived entries for a member, oldest first.
func (r *SnapshotRepository) ListByMember(ctx context.Context, name string, limit int) ([]MemberSnapshot, error) {
	if !r.Enabled() {
		return nil, fmt.Errorf("archive is not configured")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.run_id, s.team_id, s.member_name, s.twitter_handle, s.twitter_count, s.gettr_count,
		        s.daily_checkin, s.meeting_checkin, r.captured_at, r.timestamp, r.week
		   FROM member_stats s
		   JOIN report_runs r ON r.id = s.run_id
		  WHERE s.member_name = ?
		  ORDER BY r.captured_at ASC
		  LIMIT ?`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query member stats: %w", err)
	}
	defer rows.Close()

	var result []MemberSnapshot
	for rows.Next() {
		var (
			s       MemberSnapshot
			twitter sql.NullInt64
		)
		if err := rows.Scan(
			&s.ID, &s.RunID, &s.TeamID, &s.MemberName, &s.TwitterHandle, &twitter, &s.Entry.Gettr,
			&s.Entry.DailyCheckin, &s.Entry.MeetingCheckin, &s.CapturedAt, &s.Entry.Timestamp, &s.Entry.Week,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member stats: %w", err)
		}
		if twitter.Valid {
			v := int(twitter.Int64)
			s.Entry.Twitter = &v
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
