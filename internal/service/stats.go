package service

import (
	"fmt"
	"sort"
	"strings"
	"teamstats/internal/constants"
	"teamstats/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type StatsMerger struct {
	logger zerolog.Logger
}

func NewStatsMerger(logger zerolog.Logger) *StatsMerger {
	return &StatsMerger{logger: logger}
}

// Stamp returns the timestamp and ISO week labels for a capture time.
func Stamp(now time.Time) (timestamp, week string) {
	year, wk := now.ISOWeek()
	return now.Format(constants.StatsTimestampLayout), fmt.Sprintf("%04d/%02d", year, wk)
}

// Merge appends one entry per member for this capture and keeps each
// member's history in date order. Members are never added or removed.
func (m *StatsMerger) Merge(roster domain.Roster, engagement domain.EngagementCounts, checkins *domain.CheckinCounts, now time.Time) int {
	timestamp, week := Stamp(now)
	merged := 0

	roster.Members(func(team *domain.Team, member *domain.Member) {
		if member.Stats == nil {
			member.Stats = []domain.StatsEntry{}
		}

		counts, _ := checkins.Get(member.Name)
		entry := domain.StatsEntry{
			Timestamp:      timestamp,
			Week:           week,
			Twitter:        engagement.Lookup(member.Twitter),
			Gettr:          constants.GettrPlaceholder,
			DailyCheckin:   counts.Daily,
			MeetingCheckin: counts.Meeting,
		}

		member.Stats = append(member.Stats, entry)
		SortHistory(member.Stats)
		merged++

		if entry.Twitter == nil && member.Twitter != "" {
			m.logger.Debug().
				Str("team", team.TeamID).
				Str("member", member.Name).
				Str("twitter", member.Twitter).
				Msg("no engagement data for member")
		}
	})

	m.logger.Info().
		Str("timestamp", timestamp).
		Str("week", week).
		Int("members", merged).
		Msg("stats merged")

	return merged
}

// SortHistory orders entries by the date part of their timestamp. Entries
// whose timestamp has no parseable date keep their relative order after
// the dated ones.
func SortHistory(entries []domain.StatsEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, okI := entryDate(entries[i])
		dj, okJ := entryDate(entries[j])
		switch {
		case okI && okJ:
			return di.Before(dj)
		case okI:
			return true
		default:
			return false
		}
	})
}

func entryDate(e domain.StatsEntry) (time.Time, bool) {
	datePart := e.Timestamp
	if len(datePart) > len(constants.StatsDateLayout) {
		datePart = datePart[:len(constants.StatsDateLayout)]
	}
	datePart = strings.TrimSpace(datePart)
	d, err := time.Parse(constants.StatsDateLayout, datePart)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
