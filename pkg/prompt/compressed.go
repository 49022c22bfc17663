package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

const compressedReference = `Summit Buddy: AI guide for India AI Impact Summit 2026, Feb 16-20, Bharat Mandapam, New Delhi.
35K attendees, 100+ countries, %d sessions, %d exhibitors.

Venues: Bharat Mandapam(Halls 1-15), Sushma Swaraj Bhawan, Ambedkar Centre
Feb 16-18: industry/research/expo. Feb 19-20: Leaders' Summit. Expo daily 10am-6pm.
Chakras: 1.Human Capital 2.Inclusion 3.Safe AI 4.Innovation 5.Science 6.Democratizing AI 7.Social Good`

const compressedInstructions = `Be helpful, recommend sessions by title/time/venue. Flag conflicts. Mention venue. Be honest about gaps.

Format: Bold session titles exactly as given: **Session Title Here**. Bold speaker names: **Speaker Name**. Use ### for section headings. Use bullet lists not tables. 3-5 recommendations max per response. For each: bold title, then brief relevance note.`

// Compressed renders a token-budgeted summary: sessions as "HH:MM Title
// @Location" without ids or speakers, exhibitor counts per category and the
// first 20 speaker names. When the profile lists attending days, only those
// days' sessions are included.
func Compressed(d *dataset.Dataset, profile *dataset.UserProfile) string {
	filterDays := profile != nil && len(profile.Days) > 0

	byDate := newGroup()
	shown := 0
	for _, s := range d.Sessions {
		if filterDays && !profile.AttendsDay(s.Day) {
			continue
		}
		shown++
		byDate.add(s.Date, compressedLine(s))
	}

	var b strings.Builder
	fmt.Fprintf(&b, compressedReference, len(d.Sessions), len(d.Exhibitors))

	b.WriteString("\n\nEvents: " + eventNames(d.Events))
	b.WriteString("\nSpeakers: " + compressedSpeakers(d.Speakers))
	b.WriteString("\nExhibitors: " + exhibitorCounts(d.Exhibitors) + ". Halls 1-15.")

	b.WriteString("\n\n")
	if filterDays {
		fmt.Fprintf(&b, "Showing %d sessions for user's days only.", shown)
	} else {
		fmt.Fprintf(&b, "All %d sessions:", shown)
	}
	for _, date := range byDate.sortedKeys() {
		lines := byDate.items[date]
		fmt.Fprintf(&b, "\nD%s(%s,%d):\n%s", dayNumber(date), date, len(lines), strings.Join(lines, "\n"))
	}

	b.WriteString("\n\n")
	b.WriteString(compressedInstructions)

	if profile != nil && (profile.Role != "" || len(profile.Interests) > 0 || profile.Priority != "") {
		interests := "any"
		if len(profile.Interests) > 0 {
			interests = strings.Join(profile.Interests, ",")
		}
		fmt.Fprintf(&b, "\nUser: %s interests:%s priority:%s", profile.Role, interests, profile.Priority)
	}

	return b.String()
}

func compressedLine(s dataset.Session) string {
	start := s.StartTime
	if start == "" {
		start = noStartTimeMarker
	}
	loc := s.Hall
	if loc == "" {
		loc = s.Venue
	}
	return fmt.Sprintf("%s %s @%s", start, TruncateTitle(s.Title), loc)
}

func compressedSpeakers(speakers []dataset.Speaker) string {
	n := len(speakers)
	if n > compressedTopN {
		n = compressedTopN
	}
	names := make([]string, 0, n)
	for _, s := range speakers[:n] {
		names = append(names, s.Name)
	}
	out := strings.Join(names, ", ")
	if rest := len(speakers) - n; rest > 0 {
		out += fmt.Sprintf(", +%d more", rest)
	}
	return out
}

func exhibitorCounts(exhibitors []dataset.Exhibitor) string {
	var order []string
	counts := make(map[string]int)
	for _, e := range exhibitors {
		cat := e.Category
		if cat == "" {
			cat = "Other"
		}
		if _, ok := counts[cat]; !ok {
			order = append(order, cat)
		}
		counts[cat]++
	}
	parts := make([]string, 0, len(order))
	for _, cat := range order {
		parts = append(parts, cat+":"+strconv.Itoa(counts[cat]))
	}
	return strings.Join(parts, ", ")
}

// dayNumber prefers the fixed calendar mapping and falls back to the day of
// month offset so out-of-range dates still render.
func dayNumber(date string) string {
	if day := dataset.DayForDate(date); day != 0 {
		return strconv.Itoa(day)
	}
	parts := strings.Split(date, "-")
	if len(parts) == 3 {
		if dom, err := strconv.Atoi(parts[2]); err == nil {
			return strconv.Itoa(dom - 15)
		}
	}
	return "?"
}
