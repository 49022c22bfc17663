// Package entities finds references to known sessions, speakers and
// exhibitors in free-form text produced by the language model.
//
// Matching is exact substring search over normalised text. A handful of
// length thresholds keep short, common strings from producing false
// positives; they are heuristics and are exposed as options.
package entities

import (
	"sort"
	"strings"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

type Kind string

const (
	KindSession   Kind = "session"
	KindSpeaker   Kind = "speaker"
	KindExhibitor Kind = "exhibitor"
)

// Match is one entity found in a piece of text. Data holds the card
// projection of the entity (dataset.CardSession, CardSpeaker or CardExhibitor).
type Match struct {
	Type   Kind   `json:"type"`
	ID     string `json:"-"`
	Offset int    `json:"-"`
	Data   any    `json:"data"`
}

type sessionEntry struct {
	truncNorm string
	key       string
	card      dataset.CardSession
}

type nameEntry struct {
	norm string
	kind Kind
	id   string
	data any
}

// Index is immutable once built and safe for concurrent use.
type Index struct {
	opts       options
	sessions   []sessionEntry
	speakers   []nameEntry
	exhibitors []nameEntry
}

// NewIndex normalises every entity's display string once.
func NewIndex(cards dataset.CardData, opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		opts:       o,
		sessions:   make([]sessionEntry, 0, len(cards.Sessions)),
		speakers:   make([]nameEntry, 0, len(cards.Speakers)),
		exhibitors: make([]nameEntry, 0, len(cards.Exhibitors)),
	}

	for _, s := range cards.Sessions {
		truncNorm := truncatedNormalizedTitle(s.Title, o)
		idx.sessions = append(idx.sessions, sessionEntry{
			truncNorm: truncNorm,
			key:       sessionKey(truncNorm, o),
			card:      s,
		})
	}

	for _, s := range cards.Speakers {
		norm := dataset.Normalize(s.Name)
		if !speakerEligible(norm, o) {
			continue
		}
		idx.speakers = append(idx.speakers, nameEntry{norm: norm, kind: KindSpeaker, id: s.ID, data: s})
	}

	for _, e := range cards.Exhibitors {
		norm := dataset.Normalize(e.Name)
		if !exhibitorEligible(norm, o) {
			continue
		}
		idx.exhibitors = append(idx.exhibitors, nameEntry{norm: norm, kind: KindExhibitor, id: e.ID, data: e})
	}

	return idx
}

// TruncatedNormalizedTitle returns the normalised title, or the normalised
// first 77 characters when the title is longer than 80. This mirrors how the
// compressed prompt shortens long titles before the model sees them.
func TruncatedNormalizedTitle(title string) string {
	return truncatedNormalizedTitle(title, defaultOptions())
}

func truncatedNormalizedTitle(title string, o options) string {
	if runeLen(title) > o.titleMaxLen {
		return dataset.Normalize(dataset.Prefix(title, o.titleKeep))
	}
	return dataset.Normalize(title)
}

// sessionKey returns "" when the title is too short to match safely.
func sessionKey(truncNorm string, o options) string {
	key := truncNorm
	if runeLen(key) > o.sessionKeyLen {
		key = dataset.Prefix(key, o.sessionKeyLen)
	}
	if runeLen(key) < o.sessionMinKeyLen {
		return ""
	}
	return key
}

// Single-token names are too ambiguous for speakers.
func speakerEligible(norm string, o options) bool {
	return runeLen(norm) >= o.minNameLen && strings.Contains(norm, " ")
}

func exhibitorEligible(norm string, o options) bool {
	return runeLen(norm) >= o.minNameLen
}

// FindInText returns every entity mentioned in text, each at most once,
// ordered by where it first appears. It holds no per-call state, so callers
// may re-run it on every growing prefix of a streamed reply.
func (idx *Index) FindInText(text string) []Match {
	norm := dataset.Normalize(text)
	if norm == "" {
		return []Match{}
	}

	seen := make(map[string]struct{})
	results := make([]Match, 0)

	// Ids are unique only within a kind, so a session and a speaker that
	// share an id are both reported.
	record := func(kind Kind, id string, pos int, data any) {
		key := string(kind) + ":" + id
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		results = append(results, Match{Type: kind, ID: id, Offset: pos, Data: data})
	}

	for _, s := range idx.sessions {
		if s.key == "" {
			continue
		}
		if pos := strings.Index(norm, s.key); pos != -1 {
			record(KindSession, s.card.ID, pos, s.card)
		}
	}

	for _, lists := range [][]nameEntry{idx.speakers, idx.exhibitors} {
		for _, e := range lists {
			if pos := strings.Index(norm, e.norm); pos != -1 {
				record(e.kind, e.id, pos, e.data)
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Offset < results[j].Offset
	})
	return results
}

// Size reports how many entities of each kind are eligible for matching.
func (idx *Index) Size() map[Kind]int {
	sessions := 0
	for _, s := range idx.sessions {
		if s.key != "" {
			sessions++
		}
	}
	return map[Kind]int{
		KindSession:   sessions,
		KindSpeaker:   len(idx.speakers),
		KindExhibitor: len(idx.exhibitors),
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}
