package game

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestPointSystemCorrectAnswer(t *testing.T) {
	cfg := Config{Category: CategoryPointSystem, TimeLimit: 10}
	data := PlayerData{}

	applyScore(cfg, &data, 5, true, false)
	if !almostEqual(data.Score, 50) {
		t.Fatalf("expected +50 for elapsed=5 of limit=10, got %v", data.Score)
	}
}

func TestPointSystemDiminishingPenalty(t *testing.T) {
	cfg := Config{Category: CategoryPointSystem, TimeLimit: 10}
	data := PlayerData{}

	// three consecutive wrong answers; FalseAns has already been bumped by
	// the answer recording before the time report is scored
	want := []float64{-100, -50, -33.33}
	for i, delta := range want {
		data.FalseAns++
		before := data.Score
		applyScore(cfg, &data, 0, false, false)
		if !almostEqual(data.Score-before, delta) {
			t.Fatalf("wrong answer %d: expected delta %v, got %v", i+1, delta, data.Score-before)
		}
	}
}

func TestPointSystemNoPenaltyIgnoresWrongAnswers(t *testing.T) {
	cfg := Config{Category: CategoryPointSystemNoPenalty, TimeLimit: 10}
	data := PlayerData{}

	applyScore(cfg, &data, 7, true, false)
	if !almostEqual(data.Score, 70) {
		t.Fatalf("expected +70, got %v", data.Score)
	}

	data.FalseAns++
	applyScore(cfg, &data, 0, false, false)
	if !almostEqual(data.Score, 70) {
		t.Fatalf("wrong answer should not change the score, got %v", data.Score)
	}
}

func TestSimpleScoring(t *testing.T) {
	cfg := Config{Category: CategorySimple}
	data := PlayerData{}

	if disable := applyScore(cfg, &data, 0, true, false); disable {
		t.Fatal("correct answer should never disable")
	}
	if data.Score != 1 {
		t.Fatalf("expected score 1, got %v", data.Score)
	}

	data.FalseAns++
	applyScore(cfg, &data, 0, false, false)
	if data.Score != 0 {
		t.Fatalf("expected -1 without quota, got %v", data.Score)
	}
}

func TestSimpleQuotaDisablesAfterLimit(t *testing.T) {
	cfg := Config{Category: CategorySimple, FailQuota: true, NumFailQuota: 2}
	data := PlayerData{}

	// first two wrong answers each cost a point
	for i := 0; i < 2; i++ {
		data.FalseAns++
		if disable := applyScore(cfg, &data, 0, false, false); disable {
			t.Fatalf("wrong answer %d is within quota, should not disable", i+1)
		}
	}
	if data.Score != -2 {
		t.Fatalf("expected score -2 after two wrong answers, got %v", data.Score)
	}

	// the third wrong answer disables instead of penalizing
	data.FalseAns++
	if disable := applyScore(cfg, &data, 0, false, false); !disable {
		t.Fatal("third wrong answer should trigger a disable signal")
	}
	if data.Score != -2 {
		t.Fatalf("score should be unchanged past the quota, got %v", data.Score)
	}
}

func TestSimpleNoPenalty(t *testing.T) {
	cfg := Config{Category: CategorySimpleNoPenalty, FailQuota: true, NumFailQuota: 1}
	data := PlayerData{}

	applyScore(cfg, &data, 0, true, false)
	if data.Score != 1 {
		t.Fatalf("expected score 1, got %v", data.Score)
	}

	data.FalseAns++
	if disable := applyScore(cfg, &data, 0, false, false); disable {
		t.Fatal("first wrong answer is within quota")
	}
	data.FalseAns++
	if disable := applyScore(cfg, &data, 0, false, false); !disable {
		t.Fatal("past the quota the player should be disabled")
	}
	if data.Score != 1 {
		t.Fatalf("wrong answers should never change the score, got %v", data.Score)
	}
}

func TestBuzzerScoring(t *testing.T) {
	cfg := Config{Category: CategoryBuzzer}

	data := PlayerData{}
	applyScore(cfg, &data, 0, true, true)
	if data.Score != 1 {
		t.Fatalf("first correct answer should score 1, got %v", data.Score)
	}

	data = PlayerData{}
	applyScore(cfg, &data, 0, true, false)
	if data.Score != 0 {
		t.Fatalf("a correct answer that was not first should not score, got %v", data.Score)
	}

	data = PlayerData{}
	applyScore(cfg, &data, 0, false, true)
	if data.Score != 0 {
		t.Fatalf("a wrong first answer should not score, got %v", data.Score)
	}
}
