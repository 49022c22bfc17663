package dataset

import "strings"

// Normalize lowercases s, trims it and collapses internal whitespace runs to
// a single space.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Prefix returns the first n characters of s (counted in runes).
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// LinkSpeakerSessions fills each speaker's session list from the sessions that
// name them. Names are compared after Normalize, so two speakers sharing a
// normalised name receive the same list. Speakers that already carry a session
// list are left untouched.
func LinkSpeakerSessions(sessions []Session, speakers []Speaker) {
	byName := make(map[string][]string)
	for _, s := range sessions {
		for _, ref := range s.Speakers {
			key := Normalize(ref.Name)
			if key == "" {
				continue
			}
			ids := byName[key]
			if len(ids) > 0 && ids[len(ids)-1] == s.ID {
				continue
			}
			byName[key] = append(ids, s.ID)
		}
	}

	for i := range speakers {
		if len(speakers[i].Sessions) > 0 {
			continue
		}
		ids := byName[Normalize(speakers[i].Name)]
		speakers[i].Sessions = append([]string{}, ids...)
	}
}
