package game

import (
	"errors"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrBanned          = errors.New("ip is banned from this session")
	ErrRoundClosed     = errors.New("question is not live")
	ErrGameLive        = errors.New("not allowed while game is live")
	ErrNoQuestions     = errors.New("no questions loaded")
)

// Coordinator owns every session and player and serializes all mutation
// behind one lock: each inbound event maps to exactly one method call that
// runs to completion. The content fetch is the only thing that happens
// between two calls, which is why host-join-game is split into RebindHost
// and BeginGame.
type Coordinator struct {
	mu      sync.Mutex
	byHost  map[string]*Session
	byPin   map[string]*Session
	players []*Player // join order preserved

	now func() time.Time
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		byHost: make(map[string]*Session),
		byPin:  make(map[string]*Session),
		now:    time.Now,
	}
}

// QuestionState is everything the host screen needs to render one question.
type QuestionState struct {
	Pin             string
	Question        Question
	QuestionNum     int
	QuestionsLength int
	PlayersInGame   int
	Leaders         []string
}

// JoinResult is returned to a successfully admitted player.
type JoinResult struct {
	Pin    string
	Token  string
	Roster []Player
}

// AnswerResult reports what an accepted answer did to the round.
type AnswerResult struct {
	Pin             string
	Correct         bool
	RoundOver       bool
	Review          Review
	PlayersInGame   int
	PlayersAnswered int
}

// ScoreResult reports the outcome of applying a time report.
type ScoreResult struct {
	PlayerID string
	Disable  bool
}

// NextResult is either the next question or the final standings.
type NextResult struct {
	Pin      string
	Over     bool
	Question QuestionState
	Roster   []Player // sorted by descending score when Over
}

// RemovalResult is the roster left behind after a kick or ban.
type RemovalResult struct {
	Pin      string
	PlayerID string
	Roster   []Player
}

// CreateSession registers a new lobby for the given host connection and
// returns its join pin. Pins are random five-digit codes, retried until
// unused across all active sessions.
func (c *Coordinator) CreateSession(hostID string, cfg Config) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	pin := randomPin()
	for c.byPin[pin] != nil {
		pin = randomPin()
	}
	s := &Session{
		Pin:             pin,
		HostID:          hostID,
		Config:          cfg,
		CurrentQuestion: 1,
	}
	c.byHost[hostID] = s
	c.byPin[pin] = s
	return pin
}

// RebindHost moves a session from the host's lobby connection to its game
// view connection, updating the foreign key on every player in lockstep.
// Returns the pin and content id needed to continue host-join-game.
func (c *Coordinator) RebindHost(oldHostID, newHostID string) (pin, contentID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[oldHostID]
	if s == nil {
		return "", "", ErrSessionNotFound
	}
	delete(c.byHost, oldHostID)
	s.HostID = newHostID
	c.byHost[newHostID] = s
	for _, p := range c.players {
		if p.HostID == oldHostID {
			p.HostID = newHostID
		}
	}
	return s.Pin, s.Config.ContentID, nil
}

// BeginGame stores the fetched questions and opens the first round. The
// session is looked up again by host id because the fetch ran outside the
// lock; a host that disconnected in the meantime yields ErrSessionNotFound.
func (c *Coordinator) BeginGame(hostID string, questions []Question) (QuestionState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[hostID]
	if s == nil {
		return QuestionState{}, ErrSessionNotFound
	}
	if len(questions) == 0 {
		return QuestionState{}, ErrNoQuestions
	}
	s.Questions = questions
	s.QuestionLive = true
	return c.questionState(s, []string{"", ""}), nil
}

// Join admits a player into the session with the given pin. A join from an
// IP with a non-expired ban entry is refused; callers surface the refusal
// the same way as an unknown pin.
func (c *Coordinator) Join(pin, connID, ip, name string) (JoinResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byPin[pin]
	if s == nil {
		return JoinResult{}, ErrSessionNotFound
	}
	if s.banned(ip, c.now()) {
		return JoinResult{}, ErrBanned
	}
	p := &Player{
		ID:     connID,
		HostID: s.HostID,
		Token:  uuid.NewString(),
		IP:     ip,
		Name:   name,
	}
	c.players = append(c.players, p)
	return JoinResult{Pin: s.Pin, Token: p.Token, Roster: c.roster(s.HostID)}, nil
}

// BindPlayer resolves a player by its join token and rebinds its transport
// connection identity, so a player arriving on the game view keeps the
// score state it registered with in the lobby.
func (c *Coordinator) BindPlayer(token, connID string) (pin string, roster []Player, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.playerByToken(token)
	if p == nil {
		return "", nil, ErrPlayerNotFound
	}
	s := c.byHost[p.HostID]
	if s == nil {
		return "", nil, ErrSessionNotFound
	}
	p.ID = connID
	return s.Pin, c.roster(s.HostID), nil
}

// StartGame marks the session live, which locks the roster against kicks
// and lobby-style removal.
func (c *Coordinator) StartGame(hostID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[hostID]
	if s == nil {
		return ErrSessionNotFound
	}
	s.Live = true
	return nil
}

// Answer records a player's choice for the live question. When the last
// rostered player answers, the round ends immediately and the review
// payload is included in the result.
func (c *Coordinator) Answer(playerConnID, choice string) (AnswerResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.playerByID(playerConnID)
	if p == nil {
		return AnswerResult{}, ErrPlayerNotFound
	}
	s := c.byHost[p.HostID]
	if s == nil {
		return AnswerResult{}, ErrSessionNotFound
	}
	if !s.QuestionLive {
		return AnswerResult{}, ErrRoundClosed
	}
	q, ok := s.currentQuestion()
	if !ok {
		return AnswerResult{}, ErrNoQuestions
	}

	p.Data.Answer = choice
	s.PlayersAnswered++
	if s.FirstAnswerer == "" {
		s.FirstAnswerer = p.Token
	}
	correct := choice == q.Correct
	if correct {
		s.CountCorrect++
		p.Data.CorrectAns++
	} else {
		p.Data.FalseAns++
	}

	roster := c.roster(s.HostID)
	res := AnswerResult{
		Pin:             s.Pin,
		Correct:         correct,
		PlayersInGame:   len(roster),
		PlayersAnswered: s.PlayersAnswered,
	}
	if s.PlayersAnswered == len(roster) {
		s.QuestionLive = false
		res.RoundOver = true
		res.Review = buildReview(s, roster)
	}
	return res, nil
}

// ApplyTime scores one player's self-reported elapsed time under the
// session's category. hostID is the reporting connection: time reports
// arrive from the host screen, which owns the round timer.
func (c *Coordinator) ApplyTime(hostID, playerConnID string, elapsed float64, correct bool) (ScoreResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[hostID]
	if s == nil {
		return ScoreResult{}, ErrSessionNotFound
	}
	p := c.playerByID(playerConnID)
	if p == nil {
		return ScoreResult{}, ErrPlayerNotFound
	}
	first := s.FirstAnswerer != "" && s.FirstAnswerer == p.Token
	disable := applyScore(s.Config, &p.Data, elapsed, correct, first)
	return ScoreResult{PlayerID: p.ID, Disable: disable}, nil
}

// TimeUp force-closes the round on the host's timer, scoring whatever
// answers were recorded, regardless of quorum.
func (c *Coordinator) TimeUp(hostID string) (string, Review, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[hostID]
	if s == nil {
		return "", Review{}, ErrSessionNotFound
	}
	s.QuestionLive = false
	return s.Pin, buildReview(s, c.roster(s.HostID)), nil
}

// NextQuestion advances the session. With questions remaining it resets the
// per-question state and opens the next round; past the last question it
// closes the game and returns the final standings. Calling it on a finished
// session returns the same standings again without changing state.
func (c *Coordinator) NextQuestion(hostID string) (NextResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[hostID]
	if s == nil {
		return NextResult{}, ErrSessionNotFound
	}
	if s.Questions == nil {
		return NextResult{}, ErrNoQuestions
	}
	if s.CurrentQuestion >= len(s.Questions) {
		s.Live = false
		s.QuestionLive = false
		return NextResult{Pin: s.Pin, Over: true, Roster: c.standings(s.HostID)}, nil
	}

	s.resetRound()
	s.CurrentQuestion++
	s.QuestionLive = true
	for _, p := range c.players {
		if p.HostID == s.HostID {
			p.Data.Answer = ""
		}
	}
	return NextResult{Pin: s.Pin, Question: c.questionState(s, c.leaders(s.HostID))}, nil
}

// EndGame ends the session immediately, whatever question it is on.
func (c *Coordinator) EndGame(hostID string) (string, []Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[hostID]
	if s == nil {
		return "", nil, ErrSessionNotFound
	}
	s.Live = false
	s.QuestionLive = false
	return s.Pin, c.standings(s.HostID), nil
}

// Leaderboard returns the current standings for a session looked up by the
// host connection identity.
func (c *Coordinator) Leaderboard(hostID string) ([]Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[hostID]
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return c.standings(s.HostID), nil
}

// Kick removes a player from a not-yet-live session.
func (c *Coordinator) Kick(playerConnID string) (RemovalResult, error) {
	return c.removePlayer(playerConnID, false)
}

// Ban removes a player like Kick and additionally records a ban entry for
// the player's join-time IP, expiring after BanWindow.
func (c *Coordinator) Ban(playerConnID string) (RemovalResult, error) {
	return c.removePlayer(playerConnID, true)
}

func (c *Coordinator) removePlayer(playerConnID string, ban bool) (RemovalResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.playerByID(playerConnID)
	if p == nil {
		return RemovalResult{}, ErrPlayerNotFound
	}
	s := c.byHost[p.HostID]
	if s == nil {
		return RemovalResult{}, ErrSessionNotFound
	}
	if s.Live {
		return RemovalResult{}, ErrGameLive
	}
	if ban {
		s.bans = append(s.bans, BanEntry{IP: p.IP, ExpiresAt: c.now().Add(BanWindow)})
	}
	c.deletePlayer(p)
	return RemovalResult{Pin: s.Pin, PlayerID: p.ID, Roster: c.roster(s.HostID)}, nil
}

// DisconnectHost tears down the session owned by the given connection and
// every player in it. Returns the pin so the room can be notified, and
// false when the connection was not hosting anything.
func (c *Coordinator) DisconnectHost(connID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.byHost[connID]
	if s == nil {
		return "", false
	}
	delete(c.byHost, connID)
	delete(c.byPin, s.Pin)
	kept := c.players[:0]
	for _, p := range c.players {
		if p.HostID != connID {
			kept = append(kept, p)
		}
	}
	c.players = kept
	return s.Pin, true
}

// PlayerGone describes what a player disconnect did to the session.
type PlayerGone struct {
	Pin     string
	Removed bool     // false while the session is live: the record is kept
	Roster  []Player // remaining roster when Removed
}

// DisconnectPlayer handles a player connection going away. In the lobby the
// player is removed and the roster shrinks; during live play the record is
// kept so the score survives the player navigating between views.
func (c *Coordinator) DisconnectPlayer(connID string) (PlayerGone, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.playerByID(connID)
	if p == nil {
		return PlayerGone{}, false
	}
	s := c.byHost[p.HostID]
	if s == nil {
		return PlayerGone{}, false
	}
	if s.Live {
		return PlayerGone{Pin: s.Pin}, true
	}
	c.deletePlayer(p)
	return PlayerGone{Pin: s.Pin, Removed: true, Roster: c.roster(s.HostID)}, true
}

// Roster returns the join-ordered players of the session owned by hostID.
func (c *Coordinator) Roster(hostID string) []Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster(hostID)
}

// HasSession reports whether a pin is currently in use.
func (c *Coordinator) HasSession(pin string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byPin[pin] != nil
}

// internal helpers, callers hold c.mu

func (c *Coordinator) playerByID(connID string) *Player {
	for _, p := range c.players {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

func (c *Coordinator) playerByToken(token string) *Player {
	for _, p := range c.players {
		if p.Token == token {
			return p
		}
	}
	return nil
}

func (c *Coordinator) deletePlayer(target *Player) {
	for i, p := range c.players {
		if p == target {
			c.players = append(c.players[:i], c.players[i+1:]...)
			return
		}
	}
}

func (c *Coordinator) roster(hostID string) []Player {
	out := []Player{}
	for _, p := range c.players {
		if p.HostID == hostID {
			out = append(out, *p)
		}
	}
	return out
}

// standings is the roster sorted by descending score.
func (c *Coordinator) standings(hostID string) []Player {
	out := c.roster(hostID)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Data.Score > out[j].Data.Score
	})
	return out
}

// leaders returns the top two names by score, padded with empty strings.
func (c *Coordinator) leaders(hostID string) []string {
	byScore := c.standings(hostID)
	leaders := []string{"", ""}
	for i := 0; i < len(byScore) && i < 2; i++ {
		leaders[i] = byScore[i].Name
	}
	return leaders
}

func (c *Coordinator) questionState(s *Session, leaders []string) QuestionState {
	q, _ := s.currentQuestion()
	return QuestionState{
		Pin:             s.Pin,
		Question:        q,
		QuestionNum:     s.CurrentQuestion,
		QuestionsLength: len(s.Questions),
		PlayersInGame:   len(c.roster(s.HostID)),
		Leaders:         leaders,
	}
}

func randomPin() string {
	return strconv.Itoa(rand.Intn(90000) + 10000)
}
