package game

// applyScore mutates the player's scoring state for one time report and
// returns whether the player should be told to stop answering. The counters
// (CorrectAns, FalseAns) were already updated when the answer was recorded,
// so FalseAns includes the wrong answer being scored here.
func applyScore(cfg Config, data *PlayerData, elapsed float64, correct, first bool) bool {
	switch cfg.Category {
	case CategoryPointSystem:
		pointSystem(cfg, data, elapsed, correct)
	case CategoryPointSystemNoPenalty:
		pointSystemNoPenalty(cfg, data, elapsed, correct)
	case CategorySimple:
		return simple(cfg, data, correct)
	case CategorySimpleNoPenalty:
		return simpleNoPenalty(cfg, data, correct)
	case CategoryBuzzer:
		buzzer(data, correct, first)
	}
	return false
}

// pointSystem awards time-normalized points and shrinks the wrong-answer
// penalty as the player's wrong-answer count grows: -100, -50, -33.3, ...
func pointSystem(cfg Config, data *PlayerData, elapsed float64, correct bool) {
	if correct {
		data.Score += elapsed / cfg.TimeLimit * 100
		return
	}
	data.Score -= 100 / float64(data.FalseAns)
}

func pointSystemNoPenalty(cfg Config, data *PlayerData, elapsed float64, correct bool) {
	if correct {
		data.Score += elapsed / cfg.TimeLimit * 100
	}
}

// simple scores one point per correct answer. A wrong answer costs a point
// until the fail quota is spent; past the quota the player is disabled
// instead of penalized.
func simple(cfg Config, data *PlayerData, correct bool) bool {
	if correct {
		data.Score++
		return false
	}
	if cfg.FailQuota {
		if data.FalseAns <= cfg.NumFailQuota {
			data.Score--
			return false
		}
		return true
	}
	data.Score--
	return false
}

func simpleNoPenalty(cfg Config, data *PlayerData, correct bool) bool {
	if correct {
		data.Score++
		return false
	}
	return cfg.FailQuota && data.FalseAns > cfg.NumFailQuota
}

// buzzer awards a point only to the round's first recorded answerer, and
// only when that answer was correct.
func buzzer(data *PlayerData, correct, first bool) {
	if first && correct {
		data.Score++
	}
}
