package checkin

import (
	"fmt"
	"regexp"
	"teamstats/internal/domain"

	"github.com/rs/zerolog"
)

var linePattern = regexp.MustCompile(`\[.*\] (.*): (.*)`)

type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid checkin line %d: %q", e.Line, e.Text)
}

type ClassificationError struct {
	Line int
	Name string
	Text string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unrecognized checkin text on line %d (%s): %q", e.Line, e.Name, e.Text)
}

type Aggregator struct {
	classifier *Classifier
	logger     zerolog.Logger
}

func NewAggregator(classifier *Classifier, logger zerolog.Logger) *Aggregator {
	return &Aggregator{classifier: classifier, logger: logger}
}

// Aggregate stops at the first line that cannot be parsed or classified.
func (a *Aggregator) Aggregate(lines []string) (*domain.CheckinCounts, error) {
	counts := domain.NewCheckinCounts()

	for i, line := range lines {
		match := linePattern.FindStringSubmatch(line)
		if match == nil {
			return nil, &ParseError{Line: i + 1, Text: line}
		}
		name, text := match[1], match[2]

		switch a.classifier.Classify(text) {
		case Meeting:
			counts.AddMeeting(name)
		case Daily:
			counts.AddDaily(name)
		default:
			return nil, &ClassificationError{Line: i + 1, Name: name, Text: text}
		}
	}

	a.logger.Info().
		Int("lines", len(lines)).
		Int("members", counts.Len()).
		Msg("checkins aggregated")

	return counts, nil
}
