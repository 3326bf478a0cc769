// Command ebitenview explores fractals in an Ebitengine window.
//
// Controls match the GTK and GLFW viewers: drag to pan or rotate, Shift
// drag to move along z, wheel to zoom, 1 to 7 to pick a fractal and R to
// reset the view.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/stewi1014/fractalexplorer/controller"
	"github.com/stewi1014/fractalexplorer/programs"
	"github.com/stewi1014/fractalexplorer/render"
)

var fractalKeys = []ebiten.Key{
	ebiten.KeyDigit1,
	ebiten.KeyDigit2,
	ebiten.KeyDigit3,
	ebiten.KeyDigit4,
	ebiten.KeyDigit5,
	ebiten.KeyDigit6,
	ebiten.KeyDigit7,
}

// Game adapts a render session to ebiten's update and draw callbacks.
type Game struct {
	session *render.Session
	loop    *render.Loop
	cancel  context.CancelCauseFunc
	ctx     context.Context

	mu      sync.Mutex
	latest  *gg.Pixmap
	changed bool

	screen    *ebiten.Image
	dragging  bool
	outWidth  int
	outHeight int
}

func NewGame(kind programs.Kind, params programs.Parameters, workers int) (*Game, error) {
	session, err := render.NewSession(kind, controller.DefaultConfig())
	if err != nil {
		return nil, err
	}
	session.SetParameters(params)
	renderer, err := render.NewRenderer(render.WithWorkers(workers))
	if err != nil {
		return nil, err
	}

	g := &Game{session: session}
	g.loop = render.NewLoop(renderer, session, g.present)
	g.ctx, g.cancel = context.WithCancelCause(context.Background())

	go func() {
		if err := g.loop.Run(g.ctx); !errors.Is(err, context.Canceled) {
			g.cancel(err)
		}
	}()
	return g, nil
}

func (g *Game) present(f render.Frame, pix *gg.Pixmap) {
	g.mu.Lock()
	g.latest = pix
	g.changed = true
	g.mu.Unlock()
}

func (g *Game) Update() error {
	if err := context.Cause(g.ctx); err != nil {
		return err
	}

	for i, key := range fractalKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.selectFractal(programs.Kind(i))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.selectFractal(g.session.Program().Kind)
	}

	mx, my := ebiten.CursorPosition()
	pos := mgl64.Vec2{float64(mx), float64(my)}
	var mods controller.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= controller.ModShift
	}

	inside := mx >= 0 && my >= 0 && mx < g.outWidth && my < g.outHeight
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && inside:
		g.session.PointerDown(pos, mods)
		g.dragging = true
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.session.PointerUp()
		g.dragging = false
	case g.dragging && !inside:
		g.session.PointerLeave()
		g.dragging = false
	case g.dragging:
		viewport := mgl64.Vec2{float64(g.outWidth), float64(g.outHeight)}
		if g.session.PointerMove(pos, mods, viewport) {
			g.loop.Request()
		}
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		// Ebiten reports scrolling up as positive.
		if g.session.Wheel(-dy) {
			g.loop.Supersede()
		}
	}
	return nil
}

func (g *Game) selectFractal(kind programs.Kind) {
	if err := g.session.SetKind(kind); err != nil {
		log.Println(err)
		return
	}
	g.dragging = false
	ebiten.SetWindowTitle("Fractal Explorer: " + g.session.Program().Name)
	g.loop.Supersede()
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	pix, changed := g.latest, g.changed
	g.changed = false
	g.mu.Unlock()

	if pix == nil {
		return
	}
	if changed {
		w, h := pix.Width(), pix.Height()
		if g.screen == nil || g.screen.Bounds().Dx() != w || g.screen.Bounds().Dy() != h {
			if g.screen != nil {
				g.screen.Deallocate()
			}
			g.screen = ebiten.NewImage(w, h)
		}
		g.screen.WritePixels(pix.Data())
	}

	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(g.screen.Bounds().Dx()), float64(sh)/float64(g.screen.Bounds().Dy()))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.screen, op)
}

// Layout renders at the window size in device pixels. Cursor positions
// arrive in the same units.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	g.outWidth = int(float64(outsideWidth) * scale)
	g.outHeight = int(float64(outsideHeight) * scale)

	if g.session.Resize(g.outWidth, g.outHeight) {
		g.loop.Supersede()
	}
	return g.outWidth, g.outHeight
}

type options struct {
	fractal       programs.Kind
	params        programs.Parameters
	width, height int
	workers       int
	verbose       bool
}

func parseOptions(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("ebitenview", flag.ContinueOnError)
	fs.SetOutput(output)

	fractal := fs.String("fractal", "mandelbrot", "fractal to start with")
	params := fs.String("params", "", "parameters as a JSON object, or a file holding one")
	width := fs.Int("width", 1200, "window width")
	height := fs.Int("height", 400, "window height")
	workers := fs.Int("workers", runtime.GOMAXPROCS(0), "render goroutines")
	verbose := fs.Bool("v", false, "log render diagnostics to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	kind, err := programs.ParseKind(*fractal)
	if err != nil {
		return options{}, err
	}
	parameters, err := programs.LoadParameters(*params)
	if err != nil {
		return options{}, err
	}
	if *width <= 0 || *height <= 0 {
		return options{}, fmt.Errorf("%w: %dx%d", render.ErrEmptySurface, *width, *height)
	}

	return options{
		fractal: kind,
		params:  parameters,
		width:   *width,
		height:  *height,
		workers: *workers,
		verbose: *verbose,
	}, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	if opts.verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	g, err := NewGame(opts.fractal, opts.params, opts.workers)
	if err != nil {
		log.Fatal(err)
	}
	defer g.cancel(nil)

	ebiten.SetWindowSize(opts.width, opts.height)
	ebiten.SetWindowTitle("Fractal Explorer: " + g.session.Program().Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
