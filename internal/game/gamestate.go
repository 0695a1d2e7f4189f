package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/kvstore"
)

// GameStateListener observes the end and restart of a game.
type GameStateListener interface {
	GameRestart()
	GameOver()
}

// LeaderboardRecorder stores the final result of a game.
type LeaderboardRecorder interface {
	RecordScore(mapID string, score, wave, lives int) error
}

// GameState tracks whether the game has started and whether it is over.
// The game ends when the scoreboard's lives drop below zero.
type GameState struct {
	log      *log.Logger
	board    *ScoreBoard
	recorder LeaderboardRecorder

	mapID      func() string
	waveNumber func() int

	started    bool
	gameOver   bool
	finalScore int

	listeners core.Listeners[GameStateListener]
}

// NewGameState creates a game state watching board. recorder may be nil.
func NewGameState(board *ScoreBoard, recorder LeaderboardRecorder, logger *log.Logger) *GameState {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &GameState{
		log:        logger.With("component", "gamestate"),
		board:      board,
		recorder:   recorder,
		mapID:      func() string { return "" },
		waveNumber: func() int { return 0 },
	}
	board.AddListener(s)
	return s
}

// bind supplies the current map and wave number recorded on game over.
func (s *GameState) bind(mapID func() string, waveNumber func() int) {
	s.mapID = mapID
	s.waveNumber = waveNumber
}

func (s *GameState) IsGameOver() bool    { return s.gameOver }
func (s *GameState) IsGameStarted() bool { return s.started }

// FinalScore returns the score at the moment the game ended.
func (s *GameState) FinalScore() int { return s.finalScore }

// AddListener registers l.
func (s *GameState) AddListener(l GameStateListener) { s.listeners.Add(l) }

// RemoveListener unregisters l.
func (s *GameState) RemoveListener(l GameStateListener) { s.listeners.Remove(l) }

// GameStarted marks the game as started. It is called when the first
// wave is sent.
func (s *GameState) GameStarted() { s.started = true }

func (s *GameState) CreditsChanged(int)    {}
func (s *GameState) BonusChanged(int, int) {}

// LivesChanged ends the game when lives drop below zero.
func (s *GameState) LivesChanged(lives int) {
	if s.gameOver || lives >= 0 {
		return
	}
	s.gameOver = true
	s.finalScore = s.board.Score()
	s.log.Info("game over", "map", s.mapID(), "score", s.finalScore, "wave", s.waveNumber())

	if s.recorder != nil {
		if err := s.recorder.RecordScore(s.mapID(), s.finalScore, s.waveNumber(), lives); err != nil {
			s.log.Error("record score", "err", err)
		}
	}
	s.notify()
}

func (s *GameState) notify() {
	for _, l := range s.listeners.Snapshot() {
		if s.gameOver {
			l.GameOver()
		} else {
			l.GameRestart()
		}
	}
}

// ResetState starts a fresh game.
func (s *GameState) ResetState() {
	s.started = false
	s.gameOver = false
	s.finalScore = 0
	s.notify()
}

// WriteState stores the state under "gameState".
func (s *GameState) WriteState(doc *kvstore.Store) {
	g := kvstore.New()
	g.PutInt("finalScore", s.finalScore)
	g.PutBool("started", s.started)
	doc.PutStore("gameState", g)
}

// ReadState restores the state. Whether the game is over follows from the
// saved lives; loading a finished game does not record it again.
func (s *GameState) ReadState(doc *kvstore.Store) error {
	g, err := doc.Store("gameState")
	if err != nil {
		g = kvstore.New()
	}
	lives := 0
	if board, err := doc.Store("scoreBoard"); err == nil {
		lives = board.IntOr("lives", 0)
	}
	s.started = g.BoolOr("started", false)
	s.finalScore = g.IntOr("finalScore", 0)
	s.gameOver = lives < 0
	s.notify()
	return nil
}
