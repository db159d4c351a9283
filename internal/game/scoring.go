package game

// Tier is one step in the fixed reveal sequence: a bounded clip length and
// the points a correct guess at that step is worth.
type Tier struct {
	Seconds    float64
	Points     int
	Label      string
	Difficulty string
}

// TimeTiers is the canonical reveal sequence. Durations strictly increase and
// points strictly decrease; index 0 is the hardest tier.
var TimeTiers = []Tier{
	{Seconds: 1, Points: 1000, Label: "1s", Difficulty: "Expert"},
	{Seconds: 3, Points: 500, Label: "3s", Difficulty: "Hard"},
	{Seconds: 5, Points: 250, Label: "5s", Difficulty: "Medium"},
	{Seconds: 10, Points: 100, Label: "10s", Difficulty: "Easy"},
}

// PointsForTier returns the point value for a correct guess at the given tier.
// Out-of-range indices earn nothing.
func PointsForTier(tierIndex int) int {
	if tierIndex < 0 || tierIndex >= len(TimeTiers) {
		return 0
	}
	return TimeTiers[tierIndex].Points
}

// SecondsForTier returns the clip duration for the given tier. Out-of-range
// indices clamp to the last tier's duration, which keeps playback sane when
// reveals are exhausted.
func SecondsForTier(tierIndex int) float64 {
	if tierIndex < 0 || tierIndex >= len(TimeTiers) {
		return TimeTiers[len(TimeTiers)-1].Seconds
	}
	return TimeTiers[tierIndex].Seconds
}

// TierInfo returns the tier record at the given index.
func TierInfo(tierIndex int) (Tier, bool) {
	if tierIndex < 0 || tierIndex >= len(TimeTiers) {
		return Tier{}, false
	}
	return TimeTiers[tierIndex], true
}

// StreakBonus computes the bonus for a run of consecutive correct guesses.
// No bonus below a streak of 2; the multiplier widens at 5 and 10.
func StreakBonus(streak int) int {
	switch {
	case streak < 2:
		return 0
	case streak < 5:
		return 50 * streak
	case streak < 10:
		return 100 * streak
	default:
		return 150 * streak
	}
}

// FinalScore sums per-round points and adds the streak bonus for the best
// streak. Reporting utility only: the live session total accumulates round
// points as they are earned and does not include the bonus.
func FinalScore(roundPoints []int, maxStreak int) int {
	score := 0
	for _, points := range roundPoints {
		score += points
	}
	return score + StreakBonus(maxStreak)
}
