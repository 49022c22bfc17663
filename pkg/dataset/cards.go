package dataset

type CardSession struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Date        string       `json:"date"`
	Day         int          `json:"day"`
	StartTime   string       `json:"startTime,omitempty"`
	EndTime     string       `json:"endTime,omitempty"`
	Venue       string       `json:"venue"`
	Hall        string       `json:"hall,omitempty"`
	Type        string       `json:"type"`
	Speakers    []SpeakerRef `json:"speakers"`
	Tags        []string     `json:"tags"`
	Description string       `json:"description"`
}

type CardSpeaker struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Title    string   `json:"title,omitempty"`
	PhotoURL string   `json:"photoUrl,omitempty"`
	Sessions []string `json:"sessions"`
	Tags     []string `json:"tags"`
}

type CardExhibitor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Hall        string `json:"hall"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory,omitempty"`
	Logo        string `json:"logo"`
}

type CardAgendaDay struct {
	Date         string   `json:"date"`
	Day          int      `json:"day"`
	DayLabel     string   `json:"dayLabel"`
	Theme        string   `json:"theme"`
	Description  string   `json:"description"`
	SessionCount int      `json:"sessionCount"`
	Venues       []string `json:"venues"`
}

type CardEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Dates       string `json:"dates,omitempty"`
	Venue       string `json:"venue,omitempty"`
}

// CardData is the projection served to clients for rendering cards and for
// building a local entity index.
type CardData struct {
	Sessions   []CardSession   `json:"sessions"`
	Speakers   []CardSpeaker   `json:"speakers"`
	Exhibitors []CardExhibitor `json:"exhibitors"`
	Agenda     []CardAgendaDay `json:"agenda"`
	Events     []CardEvent     `json:"events"`
}

// Cards returns the card projection computed at construction time.
func (d *Dataset) Cards() CardData {
	return d.cards
}

func buildCards(d *Dataset) CardData {
	cards := CardData{
		Sessions:   make([]CardSession, 0, len(d.Sessions)),
		Speakers:   make([]CardSpeaker, 0, len(d.Speakers)),
		Exhibitors: make([]CardExhibitor, 0, len(d.Exhibitors)),
		Agenda:     make([]CardAgendaDay, 0, len(d.Agenda)),
		Events:     make([]CardEvent, 0, len(d.Events)),
	}

	for _, s := range d.Sessions {
		cards.Sessions = append(cards.Sessions, CardSession{
			ID:          s.ID,
			Title:       s.Title,
			Date:        s.Date,
			Day:         s.Day,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			Venue:       s.Venue,
			Hall:        s.Hall,
			Type:        s.Type,
			Speakers:    s.Speakers,
			Tags:        s.Tags,
			Description: s.Description,
		})
	}
	for _, s := range d.Speakers {
		sessions := s.Sessions
		if sessions == nil {
			sessions = []string{}
		}
		cards.Speakers = append(cards.Speakers, CardSpeaker{
			ID:       s.ID,
			Name:     s.Name,
			Title:    s.Title,
			PhotoURL: s.PhotoURL,
			Sessions: sessions,
			Tags:     s.Tags,
		})
	}
	for _, e := range d.Exhibitors {
		cards.Exhibitors = append(cards.Exhibitors, CardExhibitor{
			ID:          e.ID,
			Name:        e.Name,
			Hall:        e.Hall,
			Category:    e.Category,
			SubCategory: e.SubCategory,
			Logo:        e.Logo,
		})
	}
	for _, a := range d.Agenda {
		venues := a.Venues
		if venues == nil {
			venues = []string{}
		}
		cards.Agenda = append(cards.Agenda, CardAgendaDay{
			Date:         a.Date,
			Day:          a.Day,
			DayLabel:     a.DayLabel,
			Theme:        a.Theme,
			Description:  a.Description,
			SessionCount: a.SessionCount,
			Venues:       venues,
		})
	}
	for _, e := range d.Events {
		cards.Events = append(cards.Events, CardEvent{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Dates:       e.Dates,
			Venue:       e.Venue,
		})
	}
	return cards
}
