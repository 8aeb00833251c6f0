package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/telemetry"
)

// HUDData holds everything the stats overlay shows.
type HUDData struct {
	Stats    game.Stats
	Tick     int32
	Daylight float32
	Night    bool
	DayNight bool
	Paused   bool
	FPS      int32
	Tool     Tool
	Perf     telemetry.PerfStats
}

// HUD renders the stats box in the top-right corner of the world view.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), width: 220}
}

// Draw renders the HUD with its right edge at screenW.
func (h *HUD) Draw(data HUDData, screenW int32) {
	r := h.renderer
	pad := r.Theme.Padding
	x := screenW - h.width - pad
	y := pad

	lines := int32(8)
	if data.DayNight {
		lines++
	}
	r.DrawPanel(x, y, h.width, lines*r.Theme.LineHeight+2*pad+4)

	x += pad
	y += pad
	y = r.DrawLabelValue(x, y, "Food", humanize.Comma(int64(data.Stats.FoodCollected)))
	y = r.DrawLabelValue(x, y, "Agents", humanize.Comma(int64(data.Stats.ActiveAgents)))
	y = r.DrawLabelValue(x, y, "Time", data.Stats.Clock())
	y = r.DrawRatioBar(x, y, "Efficiency", float32(data.Stats.Efficiency)/100, h.width-2*pad)
	y = r.DrawLabelValue(x, y, "Tick", humanize.Comma(int64(data.Tick)))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Tick time", fmt.Sprintf("%s (p95 %s)",
		data.Perf.MeanTick.Round(time.Microsecond), data.Perf.P95Tick.Round(time.Microsecond)))
	if data.DayNight {
		phase := "Day"
		if data.Night {
			phase = "Night"
		}
		y = r.DrawLabelValue(x, y, "Phase", fmt.Sprintf("%s (%.0f%%)", phase, data.Daylight*100))
	}
	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
}

// DrawFooter renders the key legend and current tool along the bottom.
func (h *HUD) DrawFooter(x, screenH int32, tool Tool) {
	text := fmt.Sprintf("Tool: %s | Space pause | R reset | 1-3 tools | Wheel zoom | Right-drag pan", tool)
	rl.DrawText(text, x+10, screenH-22, 14, rl.Gray)
}
