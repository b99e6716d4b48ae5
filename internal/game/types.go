package game

import (
	"time"
)

// Category selects the scoring strategy for a session. Values match what the
// host client sends on host-join.
type Category int

const (
	CategoryPointSystem Category = iota + 1
	CategoryPointSystemNoPenalty
	CategorySimple
	CategorySimpleNoPenalty
	CategoryBuzzer
)

// Config is the host-chosen setup for one session.
type Config struct {
	ContentID    string   `json:"id"`
	Category     Category `json:"category"`
	FailQuota    bool     `json:"failQuota"`
	NumFailQuota int      `json:"numFailQuota"`
	TimeLimit    float64  `json:"time"` // seconds per question, normalization only
	Feedback     bool     `json:"feedback"`
}

// Question is one quiz question as delivered by the content service.
// Choices are answered as the letters A through E.
type Question struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
	Correct  string   `json:"correct"`
}

// BanEntry blocks an IP from rejoining one session until it expires.
type BanEntry struct {
	IP        string
	ExpiresAt time.Time
}

// BanWindow is how long a ban entry stays effective.
const BanWindow = 15 * time.Minute

// PlayerData is the mutable per-session scoring state of a player.
// CorrectAns and FalseAns accumulate for the whole session; Answer is the
// choice for the current question and is cleared on every question change.
type PlayerData struct {
	Score      float64 `json:"score"`
	Answer     string  `json:"answer"`
	CorrectAns int     `json:"correctAns"`
	FalseAns   int     `json:"falseAns"`
}

// Player is one participant in a session. ID is the current transport
// connection identity and is rebound on reconnect; Token is the stable
// server-issued identifier handed out at join time.
type Player struct {
	ID     string     `json:"playerId"`
	HostID string     `json:"hostId"`
	Token  string     `json:"-"`
	IP     string     `json:"-"`
	Name   string     `json:"name"`
	Data   PlayerData `json:"gameData"`
}

// Session is one hosted quiz game. HostID is the host's current transport
// connection identity and is rebound when the host reconnects from the game
// view; players reference it as their foreign key.
type Session struct {
	Pin    string
	HostID string
	Live   bool
	Config Config

	Questions       []Question
	CurrentQuestion int // 1-based
	QuestionLive    bool

	// per-question state, reset at every question transition
	PlayersAnswered int
	CountCorrect    int
	FirstAnswerer   string // token of the first player whose answer was recorded

	bans []BanEntry
}

func (s *Session) resetRound() {
	s.PlayersAnswered = 0
	s.CountCorrect = 0
	s.FirstAnswerer = ""
	s.QuestionLive = false
}

// currentQuestion returns the live question, or false when none is loaded.
func (s *Session) currentQuestion() (Question, bool) {
	if s.Questions == nil || s.CurrentQuestion < 1 || s.CurrentQuestion > len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestion-1], true
}

func (s *Session) banned(ip string, now time.Time) bool {
	for _, b := range s.bans {
		if b.IP == ip && b.ExpiresAt.After(now) {
			return true
		}
	}
	return false
}
