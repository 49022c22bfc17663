package usage

import (
	"math"
	"time"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
)

// Gemini 2.0 Flash Lite list prices.
const (
	InputUSDPerToken  = 0.075 / 1_000_000
	OutputUSDPerToken = 0.30 / 1_000_000
	USDToINR          = 85
)

// EstimateCost converts token counts to rupees, rounded to 2 decimals.
func EstimateCost(inputTokens, outputTokens int) float64 {
	usd := float64(inputTokens)*InputUSDPerToken + float64(outputTokens)*OutputUSDPerToken
	return math.Round(usd*USDToINR*100) / 100
}

// SummitDay is the 1-based summit day at now, clamped to [1, SummitDays].
func SummitDay(now time.Time) int {
	elapsed := now.Sub(dataset.SummitStart)
	day := int(math.Floor(elapsed.Hours()/24)) + 1
	return max(1, min(dataset.SummitDays, day))
}

// EstimateTokens approximates a token count at 4 characters per token, for
// providers that report no usage.
func EstimateTokens(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}
