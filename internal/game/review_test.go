package game

import (
	"testing"
)

func TestFillerSlideLabelTiers(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{0, "άσχημα"},
		{49.9, "άσχημα"},
		{50, "καλά"},
		{79.9, "καλά"},
		{80, "εξαιρετικά"},
		{100, "εξαιρετικά"},
	}
	for _, tc := range cases {
		if got := fillerSlideLabel(tc.rate); got != tc.want {
			t.Fatalf("rate %v: expected %q, got %q", tc.rate, tc.want, got)
		}
	}
}

func TestBuildReviewChartBars(t *testing.T) {
	s := &Session{Config: Config{Feedback: true}, CountCorrect: 2}
	roster := []Player{
		{Name: "Alice", Data: PlayerData{Answer: "A"}},
		{Name: "Bob", Data: PlayerData{Answer: "A"}},
		{Name: "Charlie", Data: PlayerData{Answer: "B"}},
		{Name: "Dora", Data: PlayerData{Answer: ""}}, // never answered
	}

	rev := buildReview(s, roster)
	if !rev.Feedback {
		t.Fatal("feedback flag should be carried through")
	}
	if len(rev.PlayerData) != 4 {
		t.Fatalf("expected full roster, got %d", len(rev.PlayerData))
	}
	// 2 of 4 correct -> 50% -> middle tier
	if rev.FillerSlideFeedback != "καλά" {
		t.Fatalf("expected middle tier label, got %q", rev.FillerSlideFeedback)
	}

	// inverted bars: height = 300 - share*100
	want := []float64{250, 275, 300, 300, 300}
	if len(rev.ChartBars) != len(want) {
		t.Fatalf("expected %d bars, got %d", len(want), len(rev.ChartBars))
	}
	for i, h := range want {
		if rev.ChartBars[i] != h {
			t.Fatalf("bar %d: expected %v, got %v", i, h, rev.ChartBars[i])
		}
	}
}

func TestBuildReviewEmptyRoster(t *testing.T) {
	s := &Session{Config: Config{Feedback: false}}
	rev := buildReview(s, nil)
	if rev.FillerSlideFeedback != "" {
		t.Fatal("no label without players")
	}
	for _, h := range rev.ChartBars {
		if h != 0 {
			t.Fatal("bars should be zero without players")
		}
	}
}
