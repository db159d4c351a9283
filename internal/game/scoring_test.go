package game

import "testing"

func TestTimeTiers(t *testing.T) {
	t.Run("Durations Strictly Increase", func(t *testing.T) {
		for i := 1; i < len(TimeTiers); i++ {
			if TimeTiers[i].Seconds <= TimeTiers[i-1].Seconds {
				t.Errorf("tier %d duration %.1f not greater than tier %d duration %.1f",
					i, TimeTiers[i].Seconds, i-1, TimeTiers[i-1].Seconds)
			}
		}
	})

	t.Run("Points Strictly Decrease", func(t *testing.T) {
		for i := 1; i < len(TimeTiers); i++ {
			if TimeTiers[i].Points >= TimeTiers[i-1].Points {
				t.Errorf("tier %d points %d not lower than tier %d points %d",
					i, TimeTiers[i].Points, i-1, TimeTiers[i-1].Points)
			}
		}
	})
}

func TestPointsForTier(t *testing.T) {
	cases := []struct {
		name  string
		index int
		want  int
	}{
		{"first tier", 0, 1000},
		{"second tier", 1, 500},
		{"third tier", 2, 250},
		{"last tier", 3, 100},
		{"negative index", -1, 0},
		{"past the end", len(TimeTiers), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointsForTier(tc.index); got != tc.want {
				t.Errorf("PointsForTier(%d) = %d, want %d", tc.index, got, tc.want)
			}
		})
	}
}

func TestSecondsForTier(t *testing.T) {
	cases := []struct {
		name  string
		index int
		want  float64
	}{
		{"first tier", 0, 1},
		{"last tier", 3, 10},
		{"negative index clamps", -1, 10},
		{"past the end clamps", len(TimeTiers) + 2, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SecondsForTier(tc.index); got != tc.want {
				t.Errorf("SecondsForTier(%d) = %.1f, want %.1f", tc.index, got, tc.want)
			}
		})
	}
}

func TestTierInfo(t *testing.T) {
	tier, ok := TierInfo(0)
	if !ok {
		t.Fatal("expected tier 0 to exist")
	}
	if tier.Label != "1s" || tier.Difficulty != "Expert" {
		t.Errorf("unexpected tier 0: %+v", tier)
	}

	if _, ok := TierInfo(-1); ok {
		t.Error("expected no tier at index -1")
	}
	if _, ok := TierInfo(len(TimeTiers)); ok {
		t.Error("expected no tier past the end")
	}
}

func TestStreakBonus(t *testing.T) {
	cases := []struct {
		streak int
		want   int
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{4, 200},
		{5, 500},
		{9, 900},
		{10, 1500},
		{12, 1800},
	}

	for _, tc := range cases {
		if got := StreakBonus(tc.streak); got != tc.want {
			t.Errorf("StreakBonus(%d) = %d, want %d", tc.streak, got, tc.want)
		}
	}

	t.Run("Non-Decreasing", func(t *testing.T) {
		prev := StreakBonus(0)
		for streak := 1; streak <= 30; streak++ {
			bonus := StreakBonus(streak)
			if bonus < prev {
				t.Errorf("StreakBonus(%d) = %d dropped below StreakBonus(%d) = %d", streak, bonus, streak-1, prev)
			}
			prev = bonus
		}
	})
}

func TestFinalScore(t *testing.T) {
	if got := FinalScore([]int{1000, 500, 0}, 2); got != 1600 {
		t.Errorf("FinalScore = %d, want 1600", got)
	}

	if got := FinalScore(nil, 0); got != 0 {
		t.Errorf("FinalScore with no rounds = %d, want 0", got)
	}
}
