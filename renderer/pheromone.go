package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
)

// PheromoneLayer draws both pheromone grids as one texture, one texel per
// cell: home trail in blue, food trail in green.
type PheromoneLayer struct {
	tex         rl.Texture2D
	texW, texH  int
	pixels      []color.RGBA
	max         float32
	ShowHome    bool
	ShowFood    bool
	initialized bool
}

// NewPheromoneLayer creates a layer for grids whose cells saturate at max.
func NewPheromoneLayer(max float32) *PheromoneLayer {
	return &PheromoneLayer{max: max, ShowHome: true, ShowFood: true}
}

// init (re)creates the GPU texture for a w x h grid. Must run after the
// raylib window exists.
func (p *PheromoneLayer) init(w, h int) {
	if p.initialized {
		rl.UnloadTexture(p.tex)
	}
	img := rl.GenImageColor(w, h, rl.Blank)
	p.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(p.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	p.texW, p.texH = w, h
	p.pixels = make([]color.RGBA, w*h)
	p.initialized = true
}

// Update uploads the grids. A changed grid size reallocates the texture.
func (p *PheromoneLayer) Update(home, food []float32, w, h int) {
	if len(home) != w*h || len(food) != w*h || w == 0 || h == 0 {
		return
	}
	if !p.initialized || w != p.texW || h != p.texH {
		p.init(w, h)
	}
	for i := range p.pixels {
		var hv, fv float32
		if p.ShowHome {
			hv = home[i]
		}
		if p.ShowFood {
			fv = food[i]
		}
		p.pixels[i] = PheromoneColor(hv, fv, p.max)
	}
	rl.UpdateTexture(p.tex, p.pixels)
}

// Draw stretches the texture over the world rectangle, tiling it across
// the wrap so a panned camera still shows a continuous field.
func (p *PheromoneLayer) Draw(cam *camera.Camera) {
	if !p.initialized {
		return
	}
	src := rl.Rectangle{Width: float32(p.texW), Height: float32(p.texH)}
	w := cam.WorldW * cam.Zoom
	h := cam.WorldH * cam.Zoom
	x0 := cam.OriginX + cam.ViewportW/2 - cam.X*cam.Zoom
	y0 := cam.OriginY + cam.ViewportH/2 - cam.Y*cam.Zoom

	rl.BeginScissorMode(int32(cam.OriginX), int32(cam.OriginY), int32(cam.ViewportW), int32(cam.ViewportH))
	for ty := -1; ty <= 1; ty++ {
		for tx := -1; tx <= 1; tx++ {
			dst := rl.Rectangle{X: x0 + float32(tx)*w, Y: y0 + float32(ty)*h, Width: w, Height: h}
			rl.DrawTexturePro(p.tex, src, dst, rl.Vector2{}, 0, rl.White)
		}
	}
	rl.EndScissorMode()
}

// Unload frees GPU resources.
func (p *PheromoneLayer) Unload() {
	if !p.initialized {
		return
	}
	rl.UnloadTexture(p.tex)
	p.initialized = false
}

// PheromoneColor maps a pair of cell values to a translucent colour.
func PheromoneColor(home, food, max float32) color.RGBA {
	if max <= 0 {
		return color.RGBA{}
	}
	h := unit(home / max)
	f := unit(food / max)
	a := h
	if f > a {
		a = f
	}
	return color.RGBA{
		R: uint8(40 * h),
		G: uint8(220 * f),
		B: uint8(230 * h),
		A: uint8(200 * a),
	}
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
