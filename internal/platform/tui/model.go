package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-defense/internal/core"
	"github.com/vovakirdan/tui-defense/internal/engine"
	"github.com/vovakirdan/tui-defense/internal/game"
	"github.com/vovakirdan/tui-defense/internal/registry"
)

// Session is the game as seen by the front end. Every method may be
// called from the UI goroutine; *game.Game implements it.
type Session interface {
	Snapshot() *game.Snapshot
	TowerKinds() []registry.EntityInfo

	BuyTower(kind string, plateau engine.EntityID) error
	SellTower(id engine.EntityID) error
	UpgradeTower(id engine.EntityID) error
	StartNextWave() error

	TogglePause()
	CycleSpeed()
	SaveGame() error
	Restart() error
}

// reserved rows below the map: two HUD lines, tower panel, status, help.
const reservedRows = 5

// Model is the Bubble Tea model of the game screen.
type Model struct {
	session Session
	keys    KeyMap
	help    help.Model
	theme   Theme
	screen  *core.Screen
	fps     int

	width  int
	height int

	snap   *game.Snapshot
	towers []registry.EntityInfo
	cursor int
	tower  int

	status      string
	statusErr   bool
	statusTicks int

	quitting bool
}

// NewModel creates the game screen over session.
func NewModel(session Session, fps int, theme Theme) Model {
	return Model{
		session: session,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		theme:   theme,
		screen:  core.NewScreen(1, 1),
		fps:     max(fps, 1),
		width:   80,
		height:  24,
		towers:  session.TowerKinds(),
		snap:    session.Snapshot(),
	}
}

// Init starts the redraw loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.fps)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		m.refresh()
		if m.statusTicks > 0 {
			m.statusTicks--
			if m.statusTicks == 0 {
				m.status = ""
			}
		}
		return m, tickCmd(m.fps)
	}
	return m, nil
}

func (m *Model) refresh() {
	if s := m.session.Snapshot(); s != nil {
		m.snap = s
	}
	if n := len(m.plateaus()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) plateaus() []game.EntityView {
	if m.snap == nil {
		return nil
	}
	return m.snap.Plateaus()
}

// selected returns the plateau under the cursor.
func (m *Model) selected() (game.EntityView, bool) {
	p := m.plateaus()
	if m.cursor < 0 || m.cursor >= len(p) {
		return game.EntityView{}, false
	}
	return p[m.cursor], true
}

// selectedTower returns the tower on the selected plateau.
func (m *Model) selectedTower() (game.EntityView, bool) {
	p, ok := m.selected()
	if !ok || !p.Occupied {
		return game.EntityView{}, false
	}
	return m.snap.TowerAt(p.Position)
}

func (m *Model) info(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
	m.statusTicks = 3 * m.fps
}

func (m *Model) fail(err error) {
	m.status = strings.TrimPrefix(err.Error(), "game: ")
	m.statusErr = true
	m.statusTicks = 3 * m.fps
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.MapKey(msg)
	if action == ActionQuit {
		m.quitting = true
		return m, tea.Quit
	}
	if m.snap == nil {
		return m, nil
	}

	switch action {
	case ActionUp:
		m.cursor = moveCursor(m.plateaus(), m.cursor, core.V(0, -1))
	case ActionDown:
		m.cursor = moveCursor(m.plateaus(), m.cursor, core.V(0, 1))
	case ActionLeft:
		m.cursor = moveCursor(m.plateaus(), m.cursor, core.V(-1, 0))
	case ActionRight:
		m.cursor = moveCursor(m.plateaus(), m.cursor, core.V(1, 0))
	case ActionCycleTower:
		if len(m.towers) > 0 {
			m.tower = (m.tower + 1) % len(m.towers)
		}
	case ActionBuy:
		m.buy()
	case ActionSell:
		m.sell()
	case ActionUpgrade:
		m.upgrade()
	case ActionNextWave:
		m.nextWave()
	case ActionPause:
		m.session.TogglePause()
	case ActionSpeed:
		m.session.CycleSpeed()
	case ActionSave:
		if err := m.session.SaveGame(); err != nil {
			m.fail(err)
		} else {
			m.info("game saved")
		}
	case ActionRestart:
		if err := m.session.Restart(); err != nil {
			m.fail(err)
		} else {
			m.cursor = 0
			m.info("map restarted")
		}
	}
	return m, nil
}

func (m *Model) buy() {
	if m.snap.GameOver {
		m.fail(game.ErrGameOver)
		return
	}
	p, ok := m.selected()
	if !ok || len(m.towers) == 0 {
		return
	}
	kind := m.towers[m.tower]
	switch {
	case p.Occupied:
		m.fail(game.ErrPlateauTaken)
		return
	case kind.Value > m.snap.Credits:
		m.fail(game.ErrNotEnoughCredits)
		return
	}
	if err := m.session.BuyTower(kind.Kind, p.ID); err != nil {
		m.fail(err)
		return
	}
	m.info("%s built for %d", kind.Title, kind.Value)
}

func (m *Model) sell() {
	t, ok := m.selectedTower()
	if !ok {
		m.fail(game.ErrNotATower)
		return
	}
	if err := m.session.SellTower(t.ID); err != nil {
		m.fail(err)
		return
	}
	m.info("tower sold for %d", t.SellValue)
}

func (m *Model) upgrade() {
	t, ok := m.selectedTower()
	switch {
	case !ok:
		m.fail(game.ErrNotATower)
		return
	case t.UpgradeCost == 0:
		m.fail(game.ErrMaxLevel)
		return
	case t.UpgradeCost > m.snap.Credits:
		m.fail(game.ErrNotEnoughCredits)
		return
	}
	if err := m.session.UpgradeTower(t.ID); err != nil {
		m.fail(err)
		return
	}
	m.info("tower upgraded to level %d", t.Level+1)
}

func (m *Model) nextWave() {
	if m.snap.GameOver {
		m.fail(game.ErrGameOver)
		return
	}
	if !m.snap.NextWaveReady {
		m.fail(game.ErrWaveNotReady)
		return
	}
	if err := m.session.StartNextWave(); err != nil {
		m.fail(err)
		return
	}
	if m.snap.EarlyBonus > 0 {
		m.info("wave %d called early, +%d", m.snap.WaveNumber+1, m.snap.EarlyBonus)
		return
	}
	m.info("wave %d started", m.snap.WaveNumber+1)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.snap == nil {
		return m.theme.HUDLabel.Render("loading...")
	}

	v := newMapView(m.snap, m.width, m.height-reservedRows)
	if m.screen.Width() != v.cols || m.screen.Height() != v.rows {
		m.screen.Resize(v.cols, v.rows)
	}
	var cursor *game.EntityView
	if p, ok := m.selected(); ok {
		cursor = &p
	}
	drawMap(m.screen, m.snap, v, cursor)

	body := lipgloss.JoinVertical(lipgloss.Left,
		RenderScreen(m.screen),
		m.hudLine1(),
		m.hudLine2(),
		m.towerPanel(),
		m.statusLine(),
		m.theme.Help.Render(m.help.View(m.keys)),
	)
	if m.snap.GameOver {
		return m.gameOverOverlay(body)
	}
	return body
}

func (m Model) field(label string, value any) string {
	return m.theme.HUDLabel.Render(label+" ") + m.theme.HUDValue.Render(fmt.Sprint(value))
}

func (m Model) join(parts ...string) string {
	return strings.Join(parts, m.theme.HUDSeparator.Render(" │ "))
}

func (m Model) hudLine1() string {
	s := m.snap
	title := s.MapTitle
	if title == "" {
		title = s.MapID
	}
	parts := []string{
		m.theme.HUDTitle.Render(title),
		m.field("Wave", s.WaveNumber),
		m.field("Enemies", s.RemainingEnemies),
	}
	switch {
	case s.Paused:
		parts = append(parts, m.theme.HUDWarning.Render("PAUSED"))
	case s.Speed > 1:
		parts = append(parts, m.theme.HUDWarning.Render(fmt.Sprintf("x%d", s.Speed)))
	}
	if s.NextWaveReady && !s.GameOver {
		parts = append(parts, m.theme.HUDLabel.Render("next wave ready"))
	}
	return m.join(parts...)
}

func (m Model) hudLine2() string {
	s := m.snap
	lives := m.field("Lives", s.Lives)
	if s.Lives <= 3 {
		lives = m.theme.HUDLabel.Render("Lives ") + m.theme.HUDWarning.Render(fmt.Sprint(s.Lives))
	}
	return m.join(
		m.field("Credits", s.Credits),
		lives,
		m.field("Score", s.Score),
		m.field("Bonus", fmt.Sprintf("%d/%d", s.WaveBonus, s.EarlyBonus)),
	)
}

func (m Model) towerPanel() string {
	if t, ok := m.selectedTower(); ok {
		stats := fmt.Sprintf("L%d/%d dmg %.0f rng %.1f sell %d", t.Level, t.MaxLevel, t.Damage, t.Range, t.SellValue)
		if t.UpgradeCost > 0 {
			stats += fmt.Sprintf(" upgrade %d", t.UpgradeCost)
		}
		return m.theme.TowerName.Render(m.towerTitle(t.Kind)) + " " + m.theme.TowerStats.Render(stats)
	}
	if len(m.towers) == 0 {
		return ""
	}
	kind := m.towers[m.tower]
	return m.theme.HUDLabel.Render("Build ") +
		m.theme.TowerName.Render(kind.Title) + " " +
		m.theme.TowerStats.Render(fmt.Sprintf("cost %d  %s", kind.Value, kind.Description))
}

func (m Model) towerTitle(kind string) string {
	for _, t := range m.towers {
		if t.Kind == kind {
			return t.Title
		}
	}
	return kind
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.theme.StatusError.Render(m.status)
	}
	return m.theme.StatusInfo.Render(m.status)
}

func (m Model) gameOverOverlay(body string) string {
	text := fmt.Sprintf("Final score %d\nWave %d\n\nr restart   q quit", m.snap.FinalScore, m.snap.WaveNumber)
	box := m.theme.OverlayBorder.Render(lipgloss.JoinVertical(lipgloss.Center,
		m.theme.OverlayTitle.Render("GAME OVER"),
		"",
		m.theme.OverlayText.Render(text),
	))
	return lipgloss.Place(
		max(m.width, lipgloss.Width(body)), max(m.height, lipgloss.Height(body)),
		lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
	)
}

// Run shows the game screen until the player quits or ctx is done.
func Run(ctx context.Context, session Session, fps int, theme Theme) error {
	p := tea.NewProgram(
		NewModel(session, fps, theme),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
