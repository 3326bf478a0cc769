package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gg"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fractalexplorer/controller"
	"github.com/stewi1014/fractalexplorer/internal/glview"
	"github.com/stewi1014/fractalexplorer/programs"
	"github.com/stewi1014/fractalexplorer/render"
)

const (
	defaultWidth  = 1200
	defaultHeight = 400
)

func NewRenderWindow(
	app *gtk.Application,
	conn net.Conn,
	ctx context.Context,
	quit context.CancelCauseFunc,
	opts options,
) *RenderWindow {
	var err error
	w := &RenderWindow{
		ctx:         ctx,
		quit:        quit,
		glDebug:     opts.glDebug,
		msg:         newMessenger(conn),
		sendMessage: make(chan any, 8),
	}

	w.session, err = render.NewSession(opts.fractal, controller.DefaultConfig())
	if err != nil {
		quit(err)
		return nil
	}
	w.session.SetParameters(opts.params)

	w.renderer, err = render.NewRenderer(render.WithWorkers(opts.workers))
	if err != nil {
		quit(err)
		return nil
	}
	w.loop = render.NewLoop(w.renderer, w.session, w.present)

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}

	w.SetDefaultSize(getWindowSize())
	w.setTitle(w.session.Program())

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		quit(fmt.Errorf("gtk.GLAreaNew: %w", err))
		return nil
	}

	w.gla.SetRequiredVersion(4, 6)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("unrealize", w.glaUnrealize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.POINTER_MOTION_MASK) |
			int(gdk.LEAVE_NOTIFY_MASK) |
			int(gdk.SCROLL_MASK),
	)
	w.gla.Connect("resize", w.resize)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.button)
	w.gla.Connect("button-release-event", w.button)
	w.gla.Connect("motion-notify-event", w.motion)
	w.gla.Connect("leave-notify-event", w.leave)
	w.Connect("key-press-event", w.key)

	w.Add(w.gla)
	w.ShowAll()

	go w.handleSend()
	go w.handleReceive()
	go func() {
		defer CatchPanicToContext(quit)
		if err := w.loop.Run(ctx); !errors.Is(err, context.Canceled) {
			quit(err)
		}
	}()

	return w
}

func getWindowSize() (width, height int) {
	width = defaultWidth
	height = defaultHeight

	display, err := gdk.DisplayGetDefault()
	if err != nil {
		return
	}

	monitor, err := display.GetPrimaryMonitor()
	if err != nil {
		return
	}

	// Keep the default aspect, up to 60% of the monitor width.
	if limit := int(float32(monitor.GetGeometry().GetWidth()) * .6); limit < width {
		height = height * limit / width
		width = limit
	}
	return
}

type RenderWindow struct {
	*gtk.ApplicationWindow
	gla *gtk.GLArea

	ctx         context.Context
	quit        context.CancelCauseFunc
	msg         *messenger
	sendMessage chan any

	session  *render.Session
	renderer *render.Renderer
	loop     *render.Loop

	// Owned by the GTK main thread.
	view    *glview.View
	glDebug bool
	pending *gg.Pixmap
	width   int
	height  int
}

// present hands a finished frame to the GTK main thread.
func (w *RenderWindow) present(f render.Frame, pix *gg.Pixmap) {
	glib.IdleAdd(func() {
		w.pending = pix
		w.gla.QueueRender()
	})
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()

	if err := glview.Init(w.glDebug); err != nil {
		w.quit(err)
		return
	}

	view, err := glview.New()
	if err != nil {
		w.quit(err)
		return
	}
	w.view = view
	w.loop.Request()
}

func (w *RenderWindow) glaRender(gla *gtk.GLArea) bool {
	if w.view == nil {
		return false
	}
	if w.pending != nil {
		w.view.Upload(w.pending)
		w.pending = nil
	}
	w.view.Draw(w.width, w.height)
	return true
}

func (w *RenderWindow) glaUnrealize(gla *gtk.GLArea) {
	if w.view == nil {
		return
	}
	gla.MakeCurrent()
	w.view.Delete()
	w.view = nil
}

// resize receives the drawable size in device pixels, which is also the
// render size.
func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	w.width, w.height = width, height
	if w.session.Resize(width, height) {
		w.loop.Supersede()
	}
}

// viewport is the size of the GL area in event coordinates.
func (w *RenderWindow) viewport() mgl64.Vec2 {
	return mgl64.Vec2{
		float64(w.gla.GetAllocatedWidth()),
		float64(w.gla.GetAllocatedHeight()),
	}
}

func (w *RenderWindow) button(gla *gtk.GLArea, event *gdk.Event) bool {
	button := gdk.EventButtonNewFromEvent(event)
	if button.Button() != 1 {
		return false
	}

	switch button.Type() {
	case gdk.EVENT_BUTTON_PRESS:
		w.session.PointerDown(mgl64.Vec2{button.X(), button.Y()}, modifiers(button.State()))
	case gdk.EVENT_BUTTON_RELEASE:
		w.session.PointerUp()
		w.reportView()
	}
	return true
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) bool {
	motion := gdk.EventMotionNewFromEvent(event)
	x, y := motion.MotionVal()
	if w.session.PointerMove(mgl64.Vec2{x, y}, modifiers(motion.State()), w.viewport()) {
		w.loop.Request()
	}
	return true
}

func (w *RenderWindow) leave(gla *gtk.GLArea, event *gdk.Event) bool {
	if w.session.Mode() != controller.Idle {
		w.session.PointerLeave()
		w.reportView()
	}
	return false
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) bool {
	scroll := gdk.EventScrollNewFromEvent(event)

	var deltaY float64
	switch scroll.Direction() {
	case gdk.SCROLL_DOWN:
		deltaY = 1
	case gdk.SCROLL_UP:
		deltaY = -1
	case gdk.SCROLL_SMOOTH:
		deltaY = scroll.DeltaY()
	}

	if w.session.Wheel(deltaY) {
		w.loop.Supersede()
		w.reportView()
	}
	return true
}

func (w *RenderWindow) key(win *gtk.ApplicationWindow, event *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(event)
	switch kv := key.KeyVal(); {
	case kv >= gdk.KEY_1 && kv <= gdk.KEY_7:
		w.selectFractal(programs.Kind(kv - gdk.KEY_1))
	case kv == gdk.KEY_r || kv == gdk.KEY_R:
		w.selectFractal(w.session.Program().Kind)
	default:
		return false
	}
	return true
}

// selectFractal switches fractal, or resets the view if kind is current.
func (w *RenderWindow) selectFractal(kind programs.Kind) {
	if err := w.session.SetKind(kind); err != nil {
		log.Println(err)
		return
	}
	w.loop.Supersede()
	w.reportView()

	p := w.session.Program()
	glib.IdleAdd(func() {
		w.setTitle(p)
	})
}

func (w *RenderWindow) setTitle(p programs.Program) {
	w.SetTitle("Fractal Explorer: " + p.Name)
}

// reportView tells the configuration window about the current view.
func (w *RenderWindow) reportView() {
	msg := &viewChanged{
		Kind:     w.session.Program().Kind,
		Uniforms: w.session.Uniforms(),
	}
	select {
	case w.sendMessage <- msg:
	case <-w.ctx.Done():
	}
}

func (w *RenderWindow) handleSend() {
	defer CatchPanicToContext(w.quit)
	defer w.msg.Close()

	for {
		select {
		case msg := <-w.sendMessage:
			if err := w.msg.Send(msg); err != nil {
				w.quit(err)
				return
			}
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *RenderWindow) handleReceive() {
	defer CatchPanicToContext(w.quit)

	for {
		v, err := w.msg.Receive()
		if err != nil {
			if w.ctx.Err() == nil {
				w.quit(fmt.Errorf("render window receive: %w", err))
			}
			return
		}

		switch msg := v.(type) {
		case *programs.Parameters:
			w.session.SetParameters(*msg)
			w.loop.Supersede()

		case *programs.Uniforms:
			w.session.SetUniforms(*msg)
			w.loop.Supersede()

		case *selectFractal:
			w.selectFractal(msg.Kind)

		default:
			log.Printf("unknown message received %T", v)
		}
	}
}

func modifiers[T ~uint | ~uint32 | ~int](state T) controller.Modifiers {
	var mods controller.Modifiers
	if gdk.ModifierType(state)&gdk.SHIFT_MASK != 0 {
		mods |= controller.ModShift
	}
	return mods
}
