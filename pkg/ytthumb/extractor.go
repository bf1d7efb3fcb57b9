package ytthumb

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnknownExtractor = errors.New("unknown extractor")

const (
	ExtractorHeuristic = "heuristic"
	ExtractorRegex     = "regex"
)

// Extractor turns arbitrary user text into a best-effort video id.
// Implementations never validate the result and never fail.
type Extractor interface {
	Extract(text string) string
}

func NewExtractor(name string) (Extractor, error) {
	switch name {
	case "", ExtractorHeuristic:
		return HeuristicExtractor{}, nil
	case ExtractorRegex:
		return RegexExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtractor, name)
	}
}

// HeuristicExtractor takes the last "/" segment of anything mentioning youtube
// and passes everything else through untouched.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(text string) string {
	if !strings.Contains(text, "youtube") {
		return text
	}

	segments := strings.Split(text, "/")
	return segments[len(segments)-1]
}

var reURL = regexp.MustCompile(`(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:\S*?&)?v=|embed/|v/|shorts/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

type RegexExtractor struct{}

func (RegexExtractor) Extract(text string) string {
	match := reURL.FindStringSubmatch(text)
	if len(match) > 1 {
		return match[1]
	}

	return HeuristicExtractor{}.Extract(text)
}
