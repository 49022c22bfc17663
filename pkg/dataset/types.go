package dataset

// SpeakerRef is a speaker as listed on a session.
type SpeakerRef struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type Link struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

// Session is a single agenda item.
type Session struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        string       `json:"date"` // "2026-02-16"
	Day         int          `json:"day"`  // 1-5, 0 when the date is outside the summit
	StartTime   string       `json:"startTime,omitempty"`
	EndTime     string       `json:"endTime,omitempty"`
	Venue       string       `json:"venue"`
	Hall        string       `json:"hall,omitempty"`
	Type        string       `json:"type"`
	Track       string       `json:"track,omitempty"`
	Speakers    []SpeakerRef `json:"speakers"`
	Tags        []string     `json:"tags"`
	Duration    string       `json:"duration,omitempty"`
	Capacity    string       `json:"capacity,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Links       []Link       `json:"links,omitempty"`
}

type Speaker struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Title        string   `json:"title,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Country      string   `json:"country,omitempty"`
	PhotoURL     string   `json:"photoUrl,omitempty"`
	Sessions     []string `json:"sessions"`
	Tags         []string `json:"tags"`
}

type Exhibitor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Hall        string `json:"hall"`
	Sqm         string `json:"sqm,omitempty"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory,omitempty"`
	Logo        string `json:"logo"`
}

type AgendaEvent struct {
	Title       string `json:"title"`
	Time        string `json:"time,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// AgendaDay summarises one summit day.
type AgendaDay struct {
	Date         string        `json:"date"`
	Day          int           `json:"day"`
	DayLabel     string        `json:"dayLabel"`
	Theme        string        `json:"theme"`
	Description  string        `json:"description"`
	SessionCount int           `json:"sessionCount"`
	Events       []AgendaEvent `json:"events"`
	Venues       []string      `json:"venues"`
}

type FlagshipEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Dates       string `json:"dates,omitempty"`
	Venue       string `json:"venue,omitempty"`
	URL         string `json:"url,omitempty"`
}

type WorkingGroup struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ChakraNumber int      `json:"chakraNumber"`
	Description  string   `json:"description"`
	CoChairs     []string `json:"coChairs"`
	FocusAreas   []string `json:"focusAreas"`
}

// UserProfile is supplied by the client on every request and never stored
// except as an opaque blob on a usage row.
type UserProfile struct {
	Role         string   `json:"role,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	Days         []int    `json:"days,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Organization string   `json:"organization,omitempty"`
}

// IsZero reports whether the profile carries nothing worth personalising on.
func (p *UserProfile) IsZero() bool {
	return p == nil || (p.Role == "" && len(p.Interests) == 0 && len(p.Days) == 0 &&
		p.Priority == "" && p.Organization == "")
}

// AttendsDay reports whether day is one of the profile's attending days.
func (p *UserProfile) AttendsDay(day int) bool {
	if p == nil {
		return false
	}
	for _, d := range p.Days {
		if d == day {
			return true
		}
	}
	return false
}
