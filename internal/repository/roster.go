package repository

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"teamstats/internal/domain"

	"github.com/rs/zerolog"
)

type RosterRepository struct {
	logger zerolog.Logger
}

func NewRosterRepository(logger zerolog.Logger) *RosterRepository {
	return &RosterRepository{logger: logger}
}

func (r *RosterRepository) Load(path string) (domain.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	var roster domain.Roster
	if err := json.NewDecoder(f).Decode(&roster); err != nil {
		return nil, fmt.Errorf("failed to decode roster %s: %w", path, err)
	}

	members := 0
	roster.Members(func(*domain.Team, *domain.Member) { members++ })
	r.logger.Info().
		Str("path", path).
		Int("teams", len(roster)).
		Int("members", members).
		Msg("roster loaded")

	return roster, nil
}

// Write pretty-prints the roster with two-space indentation.
func (r *RosterRepository) Write(w io.Writer, roster domain.Roster) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(roster); err != nil {
		return fmt.Errorf("failed to encode roster: %w", err)
	}
	return nil
}

// Save writes the roster to path, or stdout for "" and "-". The file is
// only replaced once the encoded report is complete.
func (r *RosterRepository) Save(path string, stdout io.Writer, roster domain.Roster) error {
	if path == "" || path == "-" {
		return r.Write(stdout, roster)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := r.Write(f, roster); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	r.logger.Info().Str("path", path).Msg("report written")
	return nil
}

// ReadCheckinLines returns the trimmed, non-blank lines of a check-in log.
func (r *RosterRepository) ReadCheckinLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkin log: %w", err)
	}
	defer f.Close()

	var (
		lines []string
		blank int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			blank++
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checkin log: %w", err)
	}

	r.logger.Debug().
		Str("path", path).
		Int("lines", len(lines)).
		Int("blank_lines", blank).
		Msg("checkin log read, blank lines skipped")
	return lines, nil
}
