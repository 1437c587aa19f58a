package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

var (
	teamKeys    = []string{"team_id", "name", "sub_teams"}
	subTeamKeys = []string{"name", "members"}
	memberKeys  = []string{"name", "discord", "twitter", "gettr", "stats"}
	statsKeys   = []string{"timestamp", "week", "twitter", "gettr", "daily_checkin", "meeting_checkin"}
)

type teamJSON struct {
	TeamID   json.RawMessage `json:"team_id"`
	Name     string          `json:"name,omitempty"`
	SubTeams []SubTeam       `json:"sub_teams"`
}

func (t *Team) UnmarshalJSON(data []byte) error {
	var wire teamJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	extra, err := splitExtra(data, teamKeys)
	if err != nil {
		return err
	}

	*t = Team{Name: wire.Name, SubTeams: wire.SubTeams, Extra: extra}

	id := bytes.TrimSpace(wire.TeamID)
	switch {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
	case id[0] == '"':
		if err := json.Unmarshal(id, &t.TeamID); err != nil {
			return fmt.Errorf("team_id: %w", err)
		}
	default:
		t.TeamID = string(id)
		t.teamIDLiteral = true
	}
	return nil
}

func (t Team) MarshalJSON() ([]byte, error) {
	var id json.RawMessage
	if t.teamIDLiteral && json.Valid([]byte(t.TeamID)) {
		id = json.RawMessage(t.TeamID)
	} else {
		quoted, err := json.Marshal(t.TeamID)
		if err != nil {
			return nil, err
		}
		id = quoted
	}

	known, err := json.Marshal(teamJSON{TeamID: id, Name: t.Name, SubTeams: t.SubTeams})
	if err != nil {
		return nil, err
	}
	return joinExtra(known, t.Extra)
}

type subTeamAlias SubTeam

func (s *SubTeam) UnmarshalJSON(data []byte) error {
	var alias subTeamAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, subTeamKeys)
	if err != nil {
		return err
	}
	*s = SubTeam(alias)
	s.Extra = extra
	return nil
}

func (s SubTeam) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(subTeamAlias(s))
	if err != nil {
		return nil, err
	}
	return joinExtra(known, s.Extra)
}

type memberAlias Member

func (m *Member) UnmarshalJSON(data []byte) error {
	var alias memberAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, memberKeys)
	if err != nil {
		return err
	}
	*m = Member(alias)
	m.Extra = extra
	return nil
}

func (m Member) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(memberAlias(m))
	if err != nil {
		return nil, err
	}
	return joinExtra(known, m.Extra)
}

type statsAlias StatsEntry

func (e *StatsEntry) UnmarshalJSON(data []byte) error {
	var alias statsAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, statsKeys)
	if err != nil {
		return err
	}
	*e = StatsEntry(alias)
	e.Extra = extra
	return nil
}

func (e StatsEntry) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(statsAlias(e))
	if err != nil {
		return nil, err
	}
	return joinExtra(known, e.Extra)
}

// splitExtra returns the keys of a JSON object that are not in known, or nil.
func splitExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// joinExtra appends extra keys, sorted, to an encoded object.
func joinExtra(known []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return known, nil
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	known = bytes.TrimSpace(known)
	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	empty := len(known) == 2
	for _, k := range keys {
		if !empty {
			buf.WriteByte(',')
		}
		empty = false

		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
