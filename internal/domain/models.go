package domain

import "encoding/json"

// Team, SubTeam, Member and StatsEntry keep any keys they do not model in
// Extra and write them back unchanged. See json.go.
type Team struct {
	TeamID   string
	Name     string
	SubTeams []SubTeam
	Extra    map[string]json.RawMessage

	// teamIDLiteral marks a non-string team_id, kept as its JSON text.
	teamIDLiteral bool
}

type SubTeam struct {
	Name    string                     `json:"name,omitempty"`
	Members []Member                   `json:"members"`
	Extra   map[string]json.RawMessage `json:"-"`
}

type Member struct {
	Name    string                     `json:"name"`
	Discord string                     `json:"discord,omitempty"`
	Twitter string                     `json:"twitter,omitempty"`
	Gettr   string                     `json:"gettr,omitempty"`
	Stats   []StatsEntry               `json:"stats"`
	Extra   map[string]json.RawMessage `json:"-"`
}

// StatsEntry is one weekly snapshot. Twitter stays nil when no count was
// returned for the member's handle.
type StatsEntry struct {
	Timestamp      string                     `json:"timestamp"`
	Week           string                     `json:"week"`
	Twitter        *int                       `json:"twitter"`
	Gettr          string                     `json:"gettr"`
	DailyCheckin   int                        `json:"daily_checkin"`
	MeetingCheckin int                        `json:"meeting_checkin"`
	Extra          map[string]json.RawMessage `json:"-"`
}

type Roster []Team

// Members visits every member in roster order.
func (r Roster) Members(fn func(team *Team, member *Member)) {
	for ti := range r {
		team := &r[ti]
		for si := range team.SubTeams {
			sub := &team.SubTeams[si]
			for mi := range sub.Members {
				fn(team, &sub.Members[mi])
			}
		}
	}
}

type CheckinCount struct {
	Daily   int `json:"daily"`
	Meeting int `json:"meeting"`
}

// CheckinCounts keeps per-name counters along with the order names were first seen.
type CheckinCounts struct {
	counts map[string]*CheckinCount
	order  []string
}

func NewCheckinCounts() *CheckinCounts {
	return &CheckinCounts{counts: make(map[string]*CheckinCount)}
}

func (c *CheckinCounts) entry(name string) *CheckinCount {
	if e, ok := c.counts[name]; ok {
		return e
	}
	e := &CheckinCount{}
	c.counts[name] = e
	c.order = append(c.order, name)
	return e
}

func (c *CheckinCounts) AddDaily(name string)   { c.entry(name).Daily++ }
func (c *CheckinCounts) AddMeeting(name string) { c.entry(name).Meeting++ }

// Get returns zero counters for unknown names.
func (c *CheckinCounts) Get(name string) (CheckinCount, bool) {
	if c == nil {
		return CheckinCount{}, false
	}
	e, ok := c.counts[name]
	if !ok {
		return CheckinCount{}, false
	}
	return *e, true
}

func (c *CheckinCounts) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

func (c *CheckinCounts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// EngagementCounts maps a username to its post count. A missing key means no data.
type EngagementCounts map[string]int

func (e EngagementCounts) Lookup(username string) *int {
	if username == "" {
		return nil
	}
	v, ok := e[username]
	if !ok {
		return nil
	}
	return &v
}
