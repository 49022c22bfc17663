package prompt

import (
	"fmt"
	"strings"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

const fullHeader = `You are Summit Buddy, the AI guide for the India AI Impact Summit 2026 (Feb 16-20, Bharat Mandapam, New Delhi).

35,000+ attendees, 100+ countries, %d sessions, %d exhibitors, 500+ AI startups.

## Seven Chakras (Thematic Framework)
1. Human Capital Development
2. Inclusion for Social Empowerment
3. Safe & Trusted AI
4. Resilience, Innovation & Efficiency
5. Science
6. Democratizing AI Resources
7. AI for Economic Development & Social Good

## Three Sutras
1. AI designed for the benefit of all
2. AI developed so as not to harm any
3. AI operating on transparency and responsibility

## Key Venues
- Bharat Mandapam: Main (Expo Halls 1-15, Plenary Hall)
- Sushma Swaraj Bhawan: Workshops, roundtables
- Ambedkar International Centre: Select sessions

## Schedule
- Feb 16-18: Pre-summit, industry sessions, research symposium, expo, challenges
- Feb 19-20: Leaders' Summit (heads of state, ministers, CEO roundtable, GPAI)
- Feb 16-20: AI Impact Expo (10am-6pm daily)`

const fullGuidelines = `## Guidelines
- Recommend sessions with: title, date/time, venue, relevance
- Rate: ⭐⭐⭐ perfect match, ⭐⭐ good fit, ⭐ might interest
- Flag overlaps: "⚠️ Overlaps with [X]"
- Mention venue/hall for wayfinding
- Be honest if data is limited
- Some sessions (CEO Roundtable, GPAI, Leaders' Plenary) may be invite-only
- Suggest breaks ("grab chai at the expo food court")
- For logistics: impact-summit@indiaai.gov.in
- When referring to a session, include its ID for reference`

// Full renders every session, the full speaker roster and exhibitor names by
// category. It has no size cap.
func Full(d *dataset.Dataset, profile *dataset.UserProfile) string {
	var b strings.Builder

	fmt.Fprintf(&b, fullHeader, len(d.Sessions), len(d.Exhibitors))

	b.WriteString("\n\n## Agenda\n")
	for i, a := range d.Agenda {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "**Day %d (%s, %s)**: %s. %s (%d sessions at %s)",
			a.Day, a.Date, a.DayLabel, a.Theme, a.Description, a.SessionCount, strings.Join(a.Venues, ", "))
	}

	b.WriteString("\n\n## Flagship Events\n")
	for i, e := range d.Events {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- **%s** (%s): %s", e.Name, e.Dates, e.Description)
	}

	fmt.Fprintf(&b, "\n\n## Sessions (%d total)\nFormat: id|date time|venue [hall]|type|title|speakers #tags\n", len(d.Sessions))
	b.WriteString(fullSessions(d.Sessions))

	fmt.Fprintf(&b, "\n\n## Key Speakers (%d)\n", len(d.Speakers))
	roster := make([]string, 0, len(d.Speakers))
	for _, s := range d.Speakers {
		if s.Title != "" {
			roster = append(roster, s.Name+" — "+s.Title)
		} else {
			roster = append(roster, s.Name)
		}
	}
	b.WriteString(strings.Join(roster, ", "))

	fmt.Fprintf(&b, "\n\n## Exhibitors (%d total)\n", len(d.Exhibitors))
	b.WriteString(fullExhibitors(d.Exhibitors))

	b.WriteString("\n\n## Working Groups\n")
	for i, wg := range d.WorkingGroups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- **Chakra %d: %s** — %s", wg.ChakraNumber, wg.Name, wg.Description)
	}

	b.WriteString("\n\n")
	b.WriteString(fullGuidelines)

	if profile != nil && (profile.Role != "" || len(profile.Interests) > 0 || len(profile.Days) > 0) {
		b.WriteString("\n\n## User Profile\n")
		b.WriteString(fullProfile(profile))
		b.WriteString("\nPersonalize all recommendations based on this profile.")
	}

	return b.String()
}

func fullSessions(sessions []dataset.Session) string {
	byDate := newGroup()
	for _, s := range sessions {
		var line strings.Builder
		fmt.Fprintf(&line, "- %s|%s", s.ID, s.Date)
		if s.StartTime != "" {
			line.WriteString(" " + s.StartTime)
		}
		line.WriteString("|" + s.Venue)
		if s.Hall != "" {
			line.WriteString(" [" + s.Hall + "]")
		}
		fmt.Fprintf(&line, "|%s|%s|%s", s.Type, s.Title, speakerNames(s.Speakers))
		if len(s.Tags) > 0 {
			tags := s.Tags
			if len(tags) > fullTagsPerLine {
				tags = tags[:fullTagsPerLine]
			}
			line.WriteString(" #" + strings.Join(tags, " #"))
		}
		byDate.add(s.Date, line.String())
	}

	blocks := make([]string, 0, len(byDate.keys))
	for _, date := range byDate.sortedKeys() {
		lines := byDate.items[date]
		blocks = append(blocks, fmt.Sprintf("### %s (%d sessions)\n%s", date, len(lines), strings.Join(lines, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}

func fullExhibitors(exhibitors []dataset.Exhibitor) string {
	byCategory := newGroup()
	for _, e := range exhibitors {
		cat := e.Category
		if cat == "" {
			cat = "Other"
		}
		byCategory.add(cat, fmt.Sprintf("%s (Hall %s)", e.Name, e.Hall))
	}

	lines := make([]string, 0, len(byCategory.keys))
	for _, cat := range byCategory.keys {
		names := byCategory.items[cat]
		shown := names
		suffix := ""
		if len(names) > maxNamesPerGroup {
			shown = names[:maxNamesPerGroup]
			suffix = fmt.Sprintf(" ...and %d more", len(names)-maxNamesPerGroup)
		}
		lines = append(lines, fmt.Sprintf("**%s** (%d): %s%s", cat, len(names), strings.Join(shown, ", "), suffix))
	}
	return strings.Join(lines, "\n")
}

func fullProfile(p *dataset.UserProfile) string {
	lines := make([]string, 0, 5)
	if p.Role != "" {
		lines = append(lines, "Role: "+p.Role)
	}
	if len(p.Interests) > 0 {
		lines = append(lines, "Interests: "+strings.Join(p.Interests, ", "))
	}
	if len(p.Days) > 0 {
		days := make([]string, 0, len(p.Days))
		for _, d := range p.Days {
			days = append(days, dayLabel(d))
		}
		lines = append(lines, "Days: "+strings.Join(days, ", "))
	}
	if p.Priority != "" {
		lines = append(lines, "Priority: "+p.Priority)
	}
	if p.Organization != "" {
		lines = append(lines, "Org: "+p.Organization)
	}
	return strings.Join(lines, "\n")
}
