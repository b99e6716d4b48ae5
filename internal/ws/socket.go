package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/quizlive/quizlive/internal/content"
	"github.com/quizlive/quizlive/internal/game"
)

// Server wires Socket.IO connections to the game coordinator. It holds no
// game state itself, only the connection map needed for targeted emits and
// forced disconnects (kick/ban, playerDisable).
type Server struct {
	coord   *game.Coordinator
	content *content.Client

	mu    sync.Mutex
	conns map[string]socketio.Conn
}

func New(coord *game.Coordinator, cc *content.Client) *Server {
	return &Server{coord: coord, content: cc, conns: make(map[string]socketio.Conn)}
}

// Mount attaches the Socket.IO server with all game event handlers to the
// given Gin engine. Rooms are keyed by the session pin.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		srv.track(s)
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// Host opens a lobby: a fresh pin is assigned and shown on the host
	// screen so players can join.
	io.OnEvent("/", "host-join", func(s socketio.Conn, cfg game.Config) {
		pin := srv.coord.CreateSession(s.ID(), cfg)
		s.Join(pin)
		log.Info().Str("sid", s.ID()).Str("pin", pin).Msg("game created")
		s.Emit("showGamePin", map[string]any{"pin": pin})
	})

	// Host arrives on the game view with a new connection: rebind the
	// session to it, then fetch the questions. The fetch is the only
	// suspension point in the whole event model, so the session is looked
	// up again by the new host id once it returns.
	io.OnEvent("/", "host-join-game", func(s socketio.Conn, payload struct {
		OldHostID string `json:"id"`
		Token     string `json:"token"`
	}) {
		pin, contentID, err := srv.coord.RebindHost(payload.OldHostID, s.ID())
		if err != nil {
			s.Emit("noGameFound")
			return
		}
		s.Join(pin)
		hostID := s.ID()
		go func() {
			qs, err := srv.content.Questions(context.Background(), contentID, payload.Token)
			if err != nil {
				log.Error().Err(err).Str("pin", pin).Msg("question fetch failed")
				s.Emit("noGameFound")
				return
			}
			st, err := srv.coord.BeginGame(hostID, qs)
			if err != nil {
				s.Emit("noGameFound")
				return
			}
			s.Emit("gameQuestions", questionPayload(st))
			io.BroadcastToRoom("/", st.Pin, "gameStartedPlayer")
			log.Info().Str("pin", st.Pin).Int("questions", st.QuestionsLength).Msg("game started")
		}()
	})

	// Player joins the lobby by pin. A banned IP is refused the same way
	// as an unknown pin, on purpose.
	io.OnEvent("/", "player-join", func(s socketio.Conn, payload struct {
		Pin  string `json:"pin"`
		Name string `json:"name"`
	}) {
		res, err := srv.coord.Join(payload.Pin, s.ID(), clientIP(s), payload.Name)
		if err != nil {
			if errors.Is(err, game.ErrBanned) {
				log.Warn().Str("ip", clientIP(s)).Str("pin", payload.Pin).Msg("banned ip refused")
			}
			s.Emit("noGameFound")
			return
		}
		s.Join(res.Pin)
		log.Info().Str("sid", s.ID()).Str("pin", res.Pin).Str("name", payload.Name).Msg("player joined")
		s.Emit("successPlayerJoin", map[string]any{"playerToken": res.Token})
		io.BroadcastToRoom("/", res.Pin, "updatePlayerLobby", res.Roster)
	})

	// Player arrives on the game view: resolve by join token and rebind
	// the connection identity so the score state carries over.
	io.OnEvent("/", "player-join-game", func(s socketio.Conn, payload struct {
		Token string `json:"id"`
	}) {
		pin, roster, err := srv.coord.BindPlayer(payload.Token, s.ID())
		if err != nil {
			s.Emit("noGameFound")
			return
		}
		s.Join(pin)
		s.Emit("playerGameData", roster)
	})

	io.OnEvent("/", "startGame", func(s socketio.Conn) {
		if err := srv.coord.StartGame(s.ID()); err != nil {
			return
		}
		s.Emit("getStarted", s.ID())
	})

	io.OnEvent("/", "playerAnswer", func(s socketio.Conn, choice string) {
		res, err := srv.coord.Answer(s.ID(), choice)
		if err != nil {
			// answers outside the live window are dropped
			return
		}
		s.Emit("answerResult", res.Correct)
		io.BroadcastToRoom("/", res.Pin, "getTime", map[string]any{
			"playerId": s.ID(),
			"ansFlag":  res.Correct,
		})
		if res.RoundOver {
			io.BroadcastToRoom("/", res.Pin, "questionOver", res.Review)
			return
		}
		io.BroadcastToRoom("/", res.Pin, "updatePlayersAnswered", map[string]any{
			"playersInGame":   res.PlayersInGame,
			"playersAnswered": res.PlayersAnswered,
		})
	})

	// The host screen owns the round timer and reports each player's
	// elapsed time back for scoring.
	io.OnEvent("/", "time", func(s socketio.Conn, payload struct {
		PlayerID string `json:"playerId"`
		AnsFlag  bool   `json:"ansFlag"`
		Time     struct {
			Current float64 `json:"current"`
		} `json:"time"`
	}) {
		res, err := srv.coord.ApplyTime(s.ID(), payload.PlayerID, payload.Time.Current, payload.AnsFlag)
		if err != nil {
			return
		}
		if res.Disable {
			srv.emitTo(res.PlayerID, "playerDisable")
		}
	})

	io.OnEvent("/", "timeUp", func(s socketio.Conn) {
		pin, review, err := srv.coord.TimeUp(s.ID())
		if err != nil {
			return
		}
		io.BroadcastToRoom("/", pin, "questionOver", review)
	})

	io.OnEvent("/", "nextQuestion", func(s socketio.Conn) {
		res, err := srv.coord.NextQuestion(s.ID())
		if err != nil {
			return
		}
		if res.Over {
			io.BroadcastToRoom("/", res.Pin, "GameOver", res.Roster)
			return
		}
		s.Emit("gameQuestions", questionPayload(res.Question))
		io.BroadcastToRoom("/", res.Pin, "nextQuestionPlayer")
	})

	io.OnEvent("/", "hostEndGame", func(s socketio.Conn) {
		pin, standings, err := srv.coord.EndGame(s.ID())
		if err != nil {
			return
		}
		io.BroadcastToRoom("/", pin, "GameOver", standings)
	})

	io.OnEvent("/", "player-kick", func(s socketio.Conn, payload struct {
		ID string `json:"id"`
	}) {
		res, err := srv.coord.Kick(payload.ID)
		if err != nil {
			return
		}
		srv.expel(res, "kickPlayer")
		io.BroadcastToRoom("/", res.Pin, "updatePlayerLobby", res.Roster)
	})

	io.OnEvent("/", "player-ban", func(s socketio.Conn, payload struct {
		ID string `json:"id"`
	}) {
		res, err := srv.coord.Ban(payload.ID)
		if err != nil {
			return
		}
		srv.expel(res, "banPlayer")
		io.BroadcastToRoom("/", res.Pin, "updatePlayerLobby", res.Roster)
	})

	io.OnEvent("/", "liveGame-leaderboard", func(s socketio.Conn, lookup string) {
		standings, err := srv.coord.Leaderboard(lookup)
		if err != nil {
			s.Emit("noGameFound")
			return
		}
		s.Emit("live-score", standings)
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.untrack(s)
		if pin, ok := srv.coord.DisconnectHost(s.ID()); ok {
			io.BroadcastToRoom("/", pin, "hostDisconnect")
			log.Info().Str("pin", pin).Msg("host disconnected, game ended")
			return
		}
		if gone, ok := srv.coord.DisconnectPlayer(s.ID()); ok && gone.Removed {
			io.BroadcastToRoom("/", gone.Pin, "updatePlayerLobby", gone.Roster)
			log.Info().Str("sid", s.ID()).Str("pin", gone.Pin).Msg("player left lobby")
		}
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	return io
}

// expel notifies a removed player, pulls it out of the room, and drops the
// connection.
func (srv *Server) expel(res game.RemovalResult, event string) {
	srv.mu.Lock()
	target := srv.conns[res.PlayerID]
	srv.mu.Unlock()
	if target == nil {
		return
	}
	target.Emit(event)
	target.Leave(res.Pin)
	_ = target.Close()
}

func (srv *Server) emitTo(connID, event string) {
	srv.mu.Lock()
	c := srv.conns[connID]
	srv.mu.Unlock()
	if c != nil {
		c.Emit(event)
	}
}

func (srv *Server) track(s socketio.Conn) {
	srv.mu.Lock()
	srv.conns[s.ID()] = s
	srv.mu.Unlock()
}

func (srv *Server) untrack(s socketio.Conn) {
	srv.mu.Lock()
	delete(srv.conns, s.ID())
	srv.mu.Unlock()
}

func questionPayload(st game.QuestionState) map[string]any {
	return map[string]any{
		"data":            []game.Question{st.Question},
		"playersInGame":   st.PlayersInGame,
		"questionNum":     st.QuestionNum,
		"questionsLength": st.QuestionsLength,
		"leaders":         st.Leaders,
	}
}

func clientIP(s socketio.Conn) string {
	if ip := s.RemoteHeader().Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if addr := s.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
