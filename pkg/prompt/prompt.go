// Package prompt renders the summit dataset as a natural-language context
// block for the language model. Full is the complete listing for providers
// with large context windows; Compressed trades completeness for a bounded
// token budget.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

type Mode string

const (
	ModeCompressed Mode = "compressed"
	ModeFull       Mode = "full"
)

// ParseMode accepts "full" or "compressed"; anything else is compressed.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeFull {
		return ModeFull
	}
	return ModeCompressed
}

// Build renders the prompt variant selected by mode.
func Build(mode Mode, d *dataset.Dataset, profile *dataset.UserProfile) string {
	if mode == ModeFull {
		return Full(d, profile)
	}
	return Compressed(d, profile)
}

const (
	titleMaxLen       = 80
	titleKeep         = 77
	maxNamesPerGroup  = 30
	compressedTopN    = 20
	fullTagsPerLine   = 3
	noStartTimeMarker = "TBD"
)

// TruncateTitle shortens titles longer than 80 characters to their first 77
// characters followed by "...".
func TruncateTitle(title string) string {
	if len([]rune(title)) > titleMaxLen {
		return dataset.Prefix(title, titleKeep) + "..."
	}
	return title
}

// group keeps insertion order of its keys.
type group struct {
	keys  []string
	items map[string][]string
}

func newGroup() *group {
	return &group{items: make(map[string][]string)}
}

func (g *group) add(key, item string) {
	if _, ok := g.items[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.items[key] = append(g.items[key], item)
}

func (g *group) sortedKeys() []string {
	keys := append([]string{}, g.keys...)
	sort.Strings(keys)
	return keys
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func speakerNames(refs []dataset.SpeakerRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

func eventNames(events []dataset.FlagshipEvent) string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return strings.Join(names, ", ")
}

func dayLabel(d int) string {
	return fmt.Sprintf("Day %d (Feb %d)", d, 15+d)
}
