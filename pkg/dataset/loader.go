// Package dataset holds the immutable summit snapshot produced by the offline
// ETL: sessions, speakers, exhibitors, agenda days, flagship events and
// working groups.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

var ErrInvalidDataset = errors.New("invalid dataset")

// File names produced by the ETL.
const (
	SessionsFile      = "sessions.json"
	SpeakersFile      = "speakers.json"
	ExhibitorsFile    = "exhibitors.json"
	AgendaFile        = "agenda.json"
	EventsFile        = "events.json"
	WorkingGroupsFile = "working-groups.json"
)

// Dataset is a read-only snapshot. It is built once and shared by every
// request; nothing mutates it after New returns.
type Dataset struct {
	Sessions      []Session
	Speakers      []Speaker
	Exhibitors    []Exhibitor
	Agenda        []AgendaDay
	Events        []FlagshipEvent
	WorkingGroups []WorkingGroup

	cards CardData
}

// New validates and normalises the given records and returns the snapshot.
// The slices are copied, so callers may reuse theirs.
func New(sessions []Session, speakers []Speaker, exhibitors []Exhibitor, agenda []AgendaDay, events []FlagshipEvent, groups []WorkingGroup) (*Dataset, error) {
	d := &Dataset{
		Sessions:      append([]Session{}, sessions...),
		Speakers:      append([]Speaker{}, speakers...),
		Exhibitors:    append([]Exhibitor{}, exhibitors...),
		Agenda:        append([]AgendaDay{}, agenda...),
		Events:        append([]FlagshipEvent{}, events...),
		WorkingGroups: append([]WorkingGroup{}, groups...),
	}

	seen := make(map[string]struct{}, len(d.Sessions))
	for i := range d.Sessions {
		s := &d.Sessions[i]
		if s.ID == "" {
			return nil, fmt.Errorf("%w: session %q has no id", ErrInvalidDataset, s.Title)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate session id %q", ErrInvalidDataset, s.ID)
		}
		seen[s.ID] = struct{}{}

		s.Day = DayForDate(s.Date)
		s.Tags = dedupeTags(s.Tags)
		if s.Speakers == nil {
			s.Speakers = []SpeakerRef{}
		}
	}

	for i := range d.Speakers {
		d.Speakers[i].Tags = dedupeTags(d.Speakers[i].Tags)
	}
	LinkSpeakerSessions(d.Sessions, d.Speakers)

	d.cards = buildCards(d)
	return d, nil
}

// Load reads the ETL documents from dir. A missing document is logged and
// treated as empty; a malformed one is an error.
func Load(dir string) (*Dataset, error) {
	var (
		sessions   []Session
		speakers   []Speaker
		exhibitors exhibitorsDoc
		agenda     []AgendaDay
		events     []FlagshipEvent
		groups     []WorkingGroup
	)

	docs := []struct {
		name string
		dst  any
	}{
		{SessionsFile, &sessions},
		{SpeakersFile, &speakers},
		{ExhibitorsFile, &exhibitors},
		{AgendaFile, &agenda},
		{EventsFile, &events},
		{WorkingGroupsFile, &groups},
	}
	for _, doc := range docs {
		if err := loadJSON(filepath.Join(dir, doc.name), doc.dst); err != nil {
			return nil, err
		}
	}

	d, err := New(sessions, speakers, exhibitors.Exhibitors, agenda, events, groups)
	if err != nil {
		return nil, err
	}

	slog.Info("Dataset loaded",
		"dir", dir,
		"sessions", len(d.Sessions),
		"speakers", len(d.Speakers),
		"exhibitors", len(d.Exhibitors),
		"agenda_days", len(d.Agenda),
		"events", len(d.Events),
		"working_groups", len(d.WorkingGroups),
	)
	return d, nil
}

func loadJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Data file not found", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidDataset, path, err)
	}
	return nil
}

// exhibitorsDoc accepts both {"exhibitors": [...]} and a bare array.
type exhibitorsDoc struct {
	Exhibitors []Exhibitor `json:"exhibitors"`
}

func (e *exhibitorsDoc) UnmarshalJSON(data []byte) error {
	var list []Exhibitor
	if err := json.Unmarshal(data, &list); err == nil {
		e.Exhibitors = list
		return nil
	}
	var wrapped struct {
		Exhibitors []Exhibitor `json:"exhibitors"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	e.Exhibitors = wrapped.Exhibitors
	return nil
}
