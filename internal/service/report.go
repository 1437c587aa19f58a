package service

import (
	"context"
	"fmt"
	"io"
	"teamstats/internal/checkin"
	"teamstats/internal/domain"
	"teamstats/internal/repository"
	"time"

	"github.com/rs/zerolog"
)

type EngagementFetcher interface {
	FetchCounts(ctx context.Context, usernames []string) (domain.EngagementCounts, error)
}

type ReportRequest struct {
	CheckinPath string
	RosterPath  string
	OutputPath  string
}

type ReportService struct {
	rosters    *repository.RosterRepository
	snapshots  *repository.SnapshotRepository
	aggregator *checkin.Aggregator
	engagement EngagementFetcher
	merger     *StatsMerger
	stdout     io.Writer
	now        func() time.Time
	logger     zerolog.Logger
}

func NewReportService(
	rosters *repository.RosterRepository,
	snapshots *repository.SnapshotRepository,
	aggregator *checkin.Aggregator,
	engagement EngagementFetcher,
	merger *StatsMerger,
	stdout io.Writer,
	logger zerolog.Logger,
) *ReportService {
	return &ReportService{
		rosters:    rosters,
		snapshots:  snapshots,
		aggregator: aggregator,
		engagement: engagement,
		merger:     merger,
		stdout:     stdout,
		now:        time.Now,
		logger:     logger,
	}
}

// Run produces one report. Nothing is written unless every stage up to the
// merge succeeds, and the run is archived only after the report is saved.
func (s *ReportService) Run(ctx context.Context, req ReportRequest) (domain.Roster, error) {
	roster, err := s.rosters.Load(req.RosterPath)
	if err != nil {
		return nil, err
	}

	lines, err := s.rosters.ReadCheckinLines(req.CheckinPath)
	if err != nil {
		return nil, err
	}
	checkins, err := s.aggregator.Aggregate(lines)
	if err != nil {
		s.logger.Error().Err(err).Str("path", req.CheckinPath).Msg("failed to aggregate checkins")
		return nil, fmt.Errorf("failed to aggregate checkins: %w", err)
	}
	s.logUnknownCheckins(roster, checkins)

	usernames := TwitterUsernames(roster)
	s.logger.Info().Int("usernames", len(usernames)).Msg("fetching engagement counts")

	engagement, err := s.engagement.FetchCounts(ctx, usernames)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch engagement counts")
		return nil, fmt.Errorf("failed to fetch engagement counts: %w", err)
	}

	now := s.now()
	s.merger.Merge(roster, engagement, checkins, now)

	if err := s.rosters.Save(req.OutputPath, s.stdout, roster); err != nil {
		return nil, err
	}

	// archived only once the report exists
	timestamp, week := Stamp(now)
	if _, err := s.snapshots.SaveRun(ctx, now, timestamp, week, roster); err != nil {
		s.logger.Error().Err(err).Msg("failed to archive run")
		return nil, fmt.Errorf("failed to archive run: %w", err)
	}
	return roster, nil
}

// TwitterUsernames collects non-empty handles once each, in roster order.
func TwitterUsernames(roster domain.Roster) []string {
	seen := make(map[string]bool)
	var usernames []string
	roster.Members(func(_ *domain.Team, m *domain.Member) {
		if m.Twitter == "" || seen[m.Twitter] {
			return
		}
		seen[m.Twitter] = true
		usernames = append(usernames, m.Twitter)
	})
	return usernames
}

func (s *ReportService) logUnknownCheckins(roster domain.Roster, checkins *domain.CheckinCounts) {
	known := make(map[string]bool)
	roster.Members(func(_ *domain.Team, m *domain.Member) { known[m.Name] = true })

	for _, name := range checkins.Names() {
		if !known[name] {
			s.logger.Debug().Str("member", name).Msg("checkin name not in roster, ignored")
		}
	}
}
