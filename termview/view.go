// Package termview is a text-mode front end: the world rasterised into
// terminal cells, a placement cursor, and a status line.
package termview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/server"
	"github.com/pthm-cable/colony/telemetry"
)

// View draws a runner's simulation on a tcell screen and turns keys and
// mouse clicks into commands. The caller owns the screen's Init and Fini.
type View struct {
	screen tcell.Screen
	runner *server.Runner
	cfg    config.TerminalConfig
	max    float32 // Pheromone saturation
	logger *slog.Logger

	raster    *Raster
	last      *telemetry.Snapshot
	cursorCol int
	cursorRow int
	centred   bool
	kind      string // Placed by mouse clicks
	showHome  bool
	showFood  bool
	message   string
	ticks     int
}

// New creates a view. pheromoneMax is the value drawn at full intensity.
func New(screen tcell.Screen, runner *server.Runner, cfg config.TerminalConfig, pheromoneMax float32) *View {
	return &View{
		screen:   screen,
		runner:   runner,
		cfg:      cfg,
		max:      pheromoneMax,
		logger:   slog.Default(),
		kind:     server.KindFood,
		showHome: true,
		showFood: true,
	}
}

// SetLogger replaces the view's logger.
func (v *View) SetLogger(l *slog.Logger) {
	v.logger = l
}

// Cursor returns the cursor's character position.
func (v *View) Cursor() (col, row int) {
	return v.cursorCol, v.cursorRow
}

// SetCursor moves the cursor, clamped to the world area.
func (v *View) SetCursor(col, row int) {
	v.cursorCol, v.cursorRow = col, row
	v.clampCursor()
}

// Message returns the last status message.
func (v *View) Message() string {
	return v.message
}

// Run ticks the simulation and redraws until ctx is cancelled or the user
// quits.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(v.runner.TickInterval())
	defer ticker.Stop()
	drawEvery := max(v.cfg.DrawEvery, 1)

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !v.HandleEvent(ev) {
				v.logger.Info("terminal view closed")
				return nil
			}
		case <-ticker.C:
			v.runner.Step()
			v.ticks++
			if v.ticks%drawEvery == 0 {
				v.Draw()
			}
		}
	}
}

// HandleEvent applies one input event. It returns false when the user asked
// to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		step := 1
		if ev.Modifiers()&tcell.ModShift != 0 {
			step = max(v.cfg.CursorStep, 1)
		}
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.SetCursor(v.cursorCol, v.cursorRow-step)
		case tcell.KeyDown:
			v.SetCursor(v.cursorCol, v.cursorRow+step)
		case tcell.KeyLeft:
			v.SetCursor(v.cursorCol-step, v.cursorRow)
		case tcell.KeyRight:
			v.SetCursor(v.cursorCol+step, v.cursorRow)
		case tcell.KeyRune:
			return v.handleRune(ev.Rune())
		}

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			if v.raster != nil && y < v.raster.Rows {
				v.SetCursor(x, y)
				v.place(v.kind)
			}
		}

	case *tcell.EventResize:
		v.screen.Sync()
		v.Draw()
	}
	return true
}

func (v *View) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case 'f':
		v.place(server.KindFood)
	case 'o':
		v.place(server.KindObstacle)
	case 'p':
		v.place(server.KindPredator)
	case '1':
		v.kind = server.KindFood
	case '2':
		v.kind = server.KindObstacle
	case '3':
		v.kind = server.KindPredator
	case ' ':
		v.togglePause()
	case 'r':
		v.runner.Handle(server.Command{Type: server.CmdReset})
		v.message = "reset"
	case 'h':
		v.showHome = !v.showHome
	case 'g':
		v.showFood = !v.showFood
	}
	return true
}

// place puts an object of kind under the cursor.
func (v *View) place(kind string) {
	if v.raster == nil {
		return
	}
	v.kind = kind
	wx, wy := v.raster.WorldOf(v.cursorCol, v.cursorRow)
	msg := v.runner.Handle(server.Command{Type: server.CmdPlace, Kind: kind, X: wx, Y: wy})
	if !msg.OK {
		v.message = fmt.Sprintf("%s: %s", kind, msg.Error)
		return
	}
	v.message = fmt.Sprintf("%s placed at (%.0f, %.0f)", kind, wx, wy)
}

func (v *View) togglePause() {
	var paused bool
	v.runner.Do(func(sim *game.Simulation) { paused = sim.Paused() })
	v.runner.Handle(server.Command{Type: server.CmdPause, Paused: !paused})
	if paused {
		v.message = "resumed"
	} else {
		v.message = "paused"
	}
}

// Draw renders the current state. The bottom row is the status line.
func (v *View) Draw() {
	cols, rows := v.screen.Size()
	rows--
	if cols < 1 || rows < 1 {
		return
	}
	if v.raster == nil || v.raster.Cols != cols || v.raster.Rows != rows {
		v.raster = NewRaster(cols, rows)
		v.clampCursor()
	}

	snap := v.runner.Snapshot()
	v.last = snap
	v.raster.Fill(snap)
	if !v.centred {
		if col, row, ok := v.raster.CellOf(snap.Nest.X, snap.Nest.Y); ok {
			v.cursorCol, v.cursorRow = col, row
		}
		v.centred = true
	}

	v.screen.Clear()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := v.raster.At(col, row)
			style := CellStyle(c, v.max, v.showHome, v.showFood)
			glyph := c.Glyph
			if col == v.cursorCol && row == v.cursorRow {
				style = style.Reverse(true)
				if glyph == GlyphEmpty {
					glyph = '+'
				}
			}
			v.screen.SetContent(col, row, glyph, nil, style)
		}
	}
	v.drawStatus(rows, cols, snap)
	v.screen.Show()
}

func (v *View) drawStatus(row, cols int, snap *telemetry.Snapshot) {
	stats := game.Stats{
		FoodCollected: snap.FoodCollected,
		ActiveAgents:  len(snap.Ants),
		ElapsedTime:   snap.ElapsedSec,
		Efficiency:    snap.Efficiency,
	}
	state := "run"
	if snap.Paused {
		state = "PAUSED"
	}
	text := fmt.Sprintf(" food %s | agents %s | %s | eff %d%% | tick %s | %s | click: %s | %s",
		humanize.Comma(int64(stats.FoodCollected)),
		humanize.Comma(int64(stats.ActiveAgents)),
		stats.Clock(),
		stats.Efficiency,
		humanize.Comma(int64(snap.Tick)),
		state,
		v.kind,
		v.message,
	)

	style := tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	runes := []rune(text)
	for col := 0; col < cols; col++ {
		r := ' '
		if col < len(runes) {
			r = runes[col]
		}
		v.screen.SetContent(col, row, r, nil, style)
	}
}

func (v *View) clampCursor() {
	if v.raster == nil {
		return
	}
	v.cursorCol = max(0, min(v.cursorCol, v.raster.Cols-1))
	v.cursorRow = max(0, min(v.cursorRow, v.raster.Rows-1))
}

// CellStyle colours a character: pheromones tint the background, the glyph
// sets the foreground.
func CellStyle(c Cell, max float32, showHome, showFood bool) tcell.Style {
	var h, f float32
	if max > 0 {
		if showHome {
			h = unit(c.Home / max)
		}
		if showFood {
			f = unit(c.Food / max)
		}
	}
	bg := tcell.NewRGBColor(int32(16+24*h), int32(16+180*f), int32(20+200*h))
	st := tcell.StyleDefault.Background(bg)

	switch c.Glyph {
	case GlyphNest:
		return st.Foreground(tcell.NewRGBColor(205, 133, 63)).Bold(true)
	case GlyphFood:
		fill := unit(c.Fill)
		return st.Foreground(tcell.NewRGBColor(int32(190-130*fill), int32(170+10*fill), int32(90-15*fill)))
	case GlyphObstacle:
		return st.Foreground(tcell.ColorGray)
	case GlyphPredator:
		return st.Foreground(tcell.ColorRed).Bold(true)
	case GlyphCarrier:
		return st.Foreground(tcell.ColorLime)
	case GlyphAnt:
		return st.Foreground(tcell.ColorWhite)
	}
	return st
}

func unit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
