package entities

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

const longTitle = "Building Trustworthy Artificial Intelligence Infrastructure for the Global South: Lessons from Digital Public Goods"

func testCards() dataset.CardData {
	return dataset.CardData{
		Sessions: []dataset.CardSession{
			{ID: "session_1", Title: "Generative AI in Public Health Systems for Rural India and Beyond", Day: 1, StartTime: "09:30", Hall: "Hall 3"},
			{ID: "session_2", Title: longTitle, Day: 2},
			{ID: "session_3", Title: "AI for Agriculture", Day: 3},
			{ID: "session_4", Title: "Responsible AI Governance!", Day: 4},
		},
		Speakers: []dataset.CardSpeaker{
			{ID: "speaker_1", Name: "Dr. Anita Rao"},
			{ID: "speaker_2", Name: "Madonna"},
			{ID: "speaker_3", Name: "Li Bo"},
			{ID: "session_1", Name: "Vikram   Shah"},
		},
		Exhibitors: []dataset.CardExhibitor{
			{ID: "exhibitor_1", Name: "AlphaTech"},
			{ID: "exhibitor_2", Name: "IBM"},
			{ID: "exhibitor_3", Name: "Digital India Corporation"},
		},
	}
}

func ids(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, string(m.Type)+":"+m.ID)
	}
	return out
}

func TestTruncatedNormalizedTitle(t *testing.T) {
	short := "  Generative AI in   Public Health  "
	assert.Equal(t, dataset.Normalize(short), TruncatedNormalizedTitle(short))

	exactly80 := strings.Repeat("a", 80)
	assert.Equal(t, dataset.Normalize(exactly80), TruncatedNormalizedTitle(exactly80))

	require.Greater(t, len([]rune(longTitle)), 80)
	assert.Equal(t, dataset.Normalize(longTitle[:77]), TruncatedNormalizedTitle(longTitle))
}

func TestFindInText_Session(t *testing.T) {
	idx := NewIndex(testCards())

	got := idx.FindInText("Join the panel on Generative AI in Public Health Systems at 9:30 in Hall 3")
	require.Len(t, got, 1)
	assert.Equal(t, KindSession, got[0].Type)
	assert.Equal(t, "session_1", got[0].ID)

	card, ok := got[0].Data.(dataset.CardSession)
	require.True(t, ok)
	assert.Equal(t, "Hall 3", card.Hall)
}

func TestFindInText_LongSessionTitleMatchesOnTruncatedPrefix(t *testing.T) {
	idx := NewIndex(testCards())

	// The model only ever sees the first 77 characters plus an ellipsis.
	text := "**" + longTitle[:77] + "...** runs on day two."
	got := idx.FindInText(text)
	assert.Equal(t, []string{"session:session_2"}, ids(got))
}

func TestFindInText_ShortSessionTitleNeverMatches(t *testing.T) {
	idx := NewIndex(testCards())

	assert.Empty(t, idx.FindInText("Don't miss AI for Agriculture on day three"))
	// 26 characters once normalised: long enough.
	assert.Equal(t, []string{"session:session_4"}, ids(idx.FindInText("see responsible ai governance! today")))
}

func TestFindInText_Speakers(t *testing.T) {
	idx := NewIndex(testCards())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"Case and spacing differ", "A keynote by DR.  ANITA RAO opens the day", []string{"speaker:speaker_1"}},
		{"First name only", "A keynote by Anita opens the day", []string{}},
		{"Single token never matches", "Madonna will not be there", []string{}},
		{"Too short", "li bo is on a panel", []string{}},
		{"Whitespace collapsed in name", "vikram shah moderates", []string{"speaker:session_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(idx.FindInText(tt.text)))
		})
	}
}

func TestFindInText_Exhibitors(t *testing.T) {
	idx := NewIndex(testCards())

	assert.Equal(t, []string{"exhibitor:exhibitor_1"}, ids(idx.FindInText("Visit the alphatech booth in Hall 5")))
	assert.Empty(t, idx.FindInText("IBM has a large stand"))
}

func TestFindInText_OrderedByFirstOccurrence(t *testing.T) {
	idx := NewIndex(testCards())

	text := "Start at the Digital India Corporation pavilion, then hear Dr. Anita Rao at " +
		"Generative AI in Public Health Systems. AlphaTech demos follow. Dr. Anita Rao again."
	got := idx.FindInText(text)
	assert.Equal(t, []string{
		"exhibitor:exhibitor_3",
		"speaker:speaker_1",
		"session:session_1",
		"exhibitor:exhibitor_1",
	}, ids(got))
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Offset, got[i].Offset)
	}
}

func TestFindInText_NoDuplicatesPerType(t *testing.T) {
	idx := NewIndex(testCards())

	// session_1 is also (oddly) a speaker id; the two kinds are reported separately
	// but neither twice.
	text := "Generative AI in Public Health Systems with Vikram Shah. " +
		"Again: generative ai in public health systems, vikram shah."
	got := idx.FindInText(text)
	assert.Equal(t, []string{"session:session_1", "speaker:session_1"}, ids(got))
}

func TestFindInText_Idempotent(t *testing.T) {
	idx := NewIndex(testCards())
	text := "AlphaTech and Dr. Anita Rao discuss Generative AI in Public Health Systems"

	first := idx.FindInText(text)
	second := idx.FindInText(text)
	assert.Equal(t, first, second)
}

func TestFindInText_GrowingPrefixes(t *testing.T) {
	idx := NewIndex(testCards())
	text := "Meet Dr. Anita Rao at the AlphaTech stand."

	var last []Match
	for i := 1; i <= len(text); i++ {
		got := idx.FindInText(text[:i])
		assert.GreaterOrEqual(t, len(got), len(last))
		last = got
	}
	assert.Equal(t, []string{"speaker:speaker_1", "exhibitor:exhibitor_1"}, ids(last))
}

func TestFindInText_Empty(t *testing.T) {
	idx := NewIndex(testCards())
	assert.Empty(t, idx.FindInText("   "))
	assert.Empty(t, NewIndex(dataset.CardData{}).FindInText("anything at all"))
}

func TestFindInText_Concurrent(t *testing.T) {
	idx := NewIndex(testCards())
	text := "AlphaTech and Dr. Anita Rao discuss Generative AI in Public Health Systems"
	want := ids(idx.FindInText(text))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, ids(idx.FindInText(text)))
		}()
	}
	wg.Wait()
}

func TestOptions(t *testing.T) {
	idx := NewIndex(testCards(), WithSessionKey(18, 15), WithMinNameLen(3))

	assert.Equal(t, []string{"session:session_3"}, ids(idx.FindInText("ai for agriculture")))
	assert.Equal(t, []string{"exhibitor:exhibitor_2"}, ids(idx.FindInText("IBM stand")))
	assert.Equal(t, []string{"speaker:speaker_3"}, ids(idx.FindInText("with li bo")))

	// Invalid values are ignored.
	def := NewIndex(testCards(), WithSessionKey(10, 20), WithMinNameLen(0))
	assert.Equal(t, map[Kind]int{KindSession: 3, KindSpeaker: 2, KindExhibitor: 2}, def.Size())
}
