// Command glfwview explores fractals in a plain GLFW window.
//
// Drag to pan (plane fractals) or rotate (spatial fractals), hold Shift
// while dragging to move along z, scroll to zoom. Keys 1 to 7 pick the
// fractal and R resets the view.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/stewi1014/fractalexplorer/controller"
	"github.com/stewi1014/fractalexplorer/internal/glview"
	"github.com/stewi1014/fractalexplorer/programs"
	"github.com/stewi1014/fractalexplorer/render"
)

func init() {
	// GLFW calls must come from the main thread.
	runtime.LockOSThread()
}

func main() {
	fractal := flag.String("fractal", "mandelbrot", "fractal to start with")
	paramsArg := flag.String("params", "", "parameters as a JSON object, or a file holding one")
	width := flag.Int("width", 1200, "window width")
	height := flag.Int("height", 400, "window height")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "render goroutines")
	verbose := flag.Bool("v", false, "log render diagnostics to stderr")
	glDebug := flag.Bool("gldebug", false, "log OpenGL debug messages")
	flag.Parse()

	if *verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	kind, err := programs.ParseKind(*fractal)
	if err != nil {
		log.Fatal(err)
	}
	params, err := programs.LoadParameters(*paramsArg)
	if err != nil {
		log.Fatal(err)
	}

	if err := run(kind, params, *width, *height, *workers, *glDebug); err != nil {
		log.Fatal(err)
	}
}

func run(kind programs.Kind, params programs.Parameters, width, height, workers int, glDebug bool) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(width, height, "Fractal Explorer", nil, nil)
	if err != nil {
		return fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}
	defer window.Destroy()

	window.MakeContextCurrent()
	if err := glview.Init(glDebug); err != nil {
		return err
	}
	view, err := glview.New()
	if err != nil {
		return err
	}
	defer view.Delete()

	session, err := render.NewSession(kind, controller.DefaultConfig())
	if err != nil {
		return err
	}
	session.SetParameters(params)
	renderer, err := render.NewRenderer(render.WithWorkers(workers))
	if err != nil {
		return err
	}

	frames := make(chan *gg.Pixmap, 1)
	loop := render.NewLoop(renderer, session, func(f render.Frame, pix *gg.Pixmap) {
		// Keep only the newest frame.
		select {
		case <-frames:
		default:
		}
		frames <- pix
		glfw.PostEmptyEvent()
	})

	w := &viewer{window: window, session: session, loop: loop}
	w.attach()

	fbw, fbh := window.GetFramebufferSize()
	session.Resize(fbw, fbh)
	w.setTitle()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	go func() {
		if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
			cancel(err)
			glfw.PostEmptyEvent()
		}
	}()
	loop.Request()

	for !window.ShouldClose() && ctx.Err() == nil {
		glfw.WaitEvents()

		select {
		case pix := <-frames:
			view.Upload(pix)
		default:
		}

		fbw, fbh := window.GetFramebufferSize()
		view.Draw(fbw, fbh)
		window.SwapBuffers()
	}

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// viewer routes GLFW input into a render session.
type viewer struct {
	window  *glfw.Window
	session *render.Session
	loop    *render.Loop
}

func (v *viewer) attach() {
	v.window.SetFramebufferSizeCallback(v.framebufferSize)
	v.window.SetMouseButtonCallback(v.mouseButton)
	v.window.SetCursorPosCallback(v.cursorPos)
	v.window.SetCursorEnterCallback(v.cursorEnter)
	v.window.SetScrollCallback(v.scroll)
	v.window.SetKeyCallback(v.key)
}

// viewport is the window size in cursor coordinates. On scaled displays it
// differs from the framebuffer size that frames render at.
func (v *viewer) viewport() mgl64.Vec2 {
	w, h := v.window.GetSize()
	return mgl64.Vec2{float64(w), float64(h)}
}

func (v *viewer) framebufferSize(w *glfw.Window, width, height int) {
	if v.session.Resize(width, height) {
		v.loop.Supersede()
	}
}

func (v *viewer) mouseButton(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	switch action {
	case glfw.Press:
		x, y := w.GetCursorPos()
		v.session.PointerDown(mgl64.Vec2{x, y}, modifiers(mods))
	case glfw.Release:
		v.session.PointerUp()
	}
}

func (v *viewer) cursorPos(w *glfw.Window, x, y float64) {
	var mods glfw.ModifierKey
	if w.GetKey(glfw.KeyLeftShift) == glfw.Press || w.GetKey(glfw.KeyRightShift) == glfw.Press {
		mods |= glfw.ModShift
	}
	if v.session.PointerMove(mgl64.Vec2{x, y}, modifiers(mods), v.viewport()) {
		v.loop.Request()
	}
}

func (v *viewer) cursorEnter(w *glfw.Window, entered bool) {
	if !entered {
		v.session.PointerLeave()
	}
}

func (v *viewer) scroll(w *glfw.Window, xoff, yoff float64) {
	// GLFW reports scrolling up as positive.
	if v.session.Wheel(-yoff) {
		v.loop.Supersede()
	}
}

func (v *viewer) key(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	switch {
	case key >= glfw.Key1 && key <= glfw.Key7:
		v.selectFractal(programs.Kind(key - glfw.Key1))
	case key == glfw.KeyR:
		v.selectFractal(v.session.Program().Kind)
	case key == glfw.KeyEscape:
		w.SetShouldClose(true)
	}
}

func (v *viewer) selectFractal(kind programs.Kind) {
	if err := v.session.SetKind(kind); err != nil {
		log.Println(err)
		return
	}
	v.setTitle()
	v.loop.Supersede()
}

func (v *viewer) setTitle() {
	v.window.SetTitle("Fractal Explorer: " + v.session.Program().Name)
}

func modifiers(mods glfw.ModifierKey) controller.Modifiers {
	var m controller.Modifiers
	if mods&glfw.ModShift != 0 {
		m |= controller.ModShift
	}
	return m
}
