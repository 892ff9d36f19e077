// Package preview shows the moonclock framebuffer in a desktop window.
package preview

import (
	"context"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/flavioheleno/moonclock"
	"github.com/flavioheleno/moonclock/textsurface"
)

// Scale is the window magnification of the panel pixels.
const Scale = 3

// Game is an ebiten.Game ticking a scheduler and drawing its surface.
type Game struct {
	ctx     context.Context
	sched   *moonclock.Scheduler
	surface *textsurface.Surface

	rgba  *image.RGBA
	fbImg *ebiten.Image
}

var _ ebiten.Game = (*Game)(nil)

// NewGame returns a game for an initialized scheduler rendering on surface.
// Update stops the game once ctx is done.
func NewGame(ctx context.Context, sched *moonclock.Scheduler, surface *textsurface.Surface) *Game {
	return &Game{ctx: ctx, sched: sched, surface: surface}
}

// Run opens the window and blocks until it closes or ctx is done.
func Run(ctx context.Context, title string, tick time.Duration, sched *moonclock.Scheduler, surface *textsurface.Surface) error {
	g := NewGame(ctx, sched, surface)
	b := surface.Image().Bounds()

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(b.Dx()*Scale, b.Dy()*Scale)
	ebiten.SetTPS(TPS(tick))
	return ebiten.RunGame(g)
}

// TPS converts a tick interval to ebiten ticks per second, at least one.
func TPS(tick time.Duration) int {
	if tick <= 0 {
		return ebiten.DefaultTPS
	}
	tps := int(time.Second / tick)
	if tps < 1 {
		tps = 1
	}
	return tps
}

func (g *Game) Update() error {
	if g.ctx != nil && g.ctx.Err() != nil {
		return ebiten.Termination
	}
	return g.sched.Tick()
}

func (g *Game) Draw(screen *ebiten.Image) {
	fb := g.surface.Image()
	b := fb.Bounds()
	if g.fbImg == nil {
		g.fbImg = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.rgba = fb.RGBA(g.rgba)
	g.fbImg.WritePixels(g.rgba.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.surface.Image().Bounds()
	return b.Dx(), b.Dy()
}
