package game

// Review is the end-of-round payload shared by the quorum-complete and
// timeUp paths: the roster with its recorded answers, a qualitative label
// for how the whole class did, and the inverted bar heights for the
// per-choice answer chart.
type Review struct {
	PlayerData          []Player  `json:"playerData"`
	Feedback            bool      `json:"feedback"`
	FillerSlideFeedback string    `json:"fillerSlideFeedback"`
	ChartBars           []float64 `json:"chartBars"`
}

var choices = []string{"A", "B", "C", "D", "E"}

func buildReview(s *Session, roster []Player) Review {
	rev := Review{
		PlayerData: roster,
		Feedback:   s.Config.Feedback,
		ChartBars:  make([]float64, len(choices)),
	}
	if len(roster) == 0 {
		return rev
	}

	rateCorrect := float64(s.CountCorrect) / float64(len(roster)) * 100
	rev.FillerSlideFeedback = fillerSlideLabel(rateCorrect)

	counts := make([]int, len(choices))
	for _, p := range roster {
		for i, choice := range choices {
			if p.Data.Answer == choice {
				counts[i]++
			}
		}
	}
	total := float64(len(roster))
	for i, n := range counts {
		// inverted bars: a less-picked choice renders taller
		h := 300 - float64(n)/total*100
		if h < 0 {
			h = 0
		}
		rev.ChartBars[i] = h
	}
	return rev
}

// fillerSlideLabel tiers the class-wide correctness rate into the labels
// the slide deck shows between questions.
func fillerSlideLabel(rateCorrect float64) string {
	switch {
	case rateCorrect < 50:
		return "άσχημα"
	case rateCorrect < 80:
		return "καλά"
	default:
		return "εξαιρετικά"
	}
}
