package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"runtime"
	"sync"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fractalexplorer/programs"
	"github.com/stewi1014/fractalexplorer/render"
)

// parameterField is one spin button of the configuration window. Key is
// the parameter name understood by programs.ParametersFromMap.
type parameterField struct {
	Key    string
	Label  string
	Min    float64
	Max    float64
	Step   float64
	Digits uint
}

var parameterFields = []parameterField{
	{"zr", "Initial Z (real)", -4, 4, 0.01, 4},
	{"zi", "Initial Z (imaginary)", -4, 4, 0.01, 4},
	{"cr", "Julia C (real)", -4, 4, 0.001, 4},
	{"ci", "Julia C (imaginary)", -4, 4, 0.001, 4},
	{"qw", "Quaternion C (w)", -2, 2, 0.01, 3},
	{"qx", "Quaternion C (x)", -2, 2, 0.01, 3},
	{"qy", "Quaternion C (y)", -2, 2, 0.01, 3},
	{"qz", "Quaternion C (z)", -2, 2, 0.01, 3},
	{"r", "Red", 0, 10, 0.05, 2},
	{"g", "Green", 0, 10, 0.05, 2},
	{"b", "Blue", 0, 10, 0.05, 2},
}

func NewConfigWindow(
	app *gtk.Application,
	conn net.Conn,
	ctx context.Context,
	quit context.CancelCauseFunc,
	opts options,
) *ConfigWindow {
	var err error
	w := &ConfigWindow{
		ctx:         ctx,
		quit:        quit,
		msg:         newMessenger(conn),
		sendMessage: make(chan any, 8),
		spins:       make(map[string]*gtk.SpinButton),
		kind:        opts.fractal,
		params:      opts.params,
	}
	if p, err := programs.Get(opts.fractal); err == nil {
		w.uniforms = programs.DefaultUniforms(p)
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		quit(fmt.Errorf("gtk.ApplicationWindowNew: %w", err))
		return nil
	}
	w.SetDefaultSize(280, 700)

	if err := w.build(); err != nil {
		quit(err)
		return nil
	}
	w.setParameterWidgets(opts.params)

	w.ShowAll()

	go w.handleSend()
	go w.handleReceive()

	return w
}

type ConfigWindow struct {
	*gtk.ApplicationWindow

	ctx         context.Context
	quit        context.CancelCauseFunc
	msg         *messenger
	sendMessage chan any

	fractal   *gtk.ComboBoxText
	spins     map[string]*gtk.SpinButton
	insideBW  *gtk.CheckButton
	paramJSON *gtk.Entry
	viewLabel *gtk.Label

	saveName      *gtk.Entry
	saveWidth     *gtk.SpinButton
	saveHeight    *gtk.SpinButton
	saveAntialias *gtk.SpinButton

	// Set while widgets are updated from a message, so their change
	// signals are not sent back.
	syncing bool

	mu       sync.Mutex
	kind     programs.Kind
	params   programs.Parameters
	uniforms programs.Uniforms
}

func (w *ConfigWindow) build() error {
	grid, err := gtk.GridNew()
	if err != nil {
		return err
	}
	grid.SetColumnSpacing(6)
	grid.SetRowSpacing(4)
	grid.SetBorderWidth(8)
	row := 0

	addRow := func(label string, widget gtk.IWidget) error {
		l, err := gtk.LabelNew(label)
		if err != nil {
			return err
		}
		l.SetHAlign(gtk.ALIGN_START)
		grid.Attach(l, 0, row, 1, 1)
		grid.Attach(widget, 1, row, 1, 1)
		row++
		return nil
	}

	w.fractal, err = gtk.ComboBoxTextNew()
	if err != nil {
		return err
	}
	for _, k := range programs.Kinds() {
		w.fractal.AppendText(k.String())
	}
	w.fractal.SetActive(int(w.kind))
	w.fractal.Connect("changed", func() {
		if w.syncing {
			return
		}
		kind := programs.Kind(w.fractal.GetActive())
		w.mu.Lock()
		w.kind = kind
		w.mu.Unlock()
		w.send(&selectFractal{Kind: kind})
	})
	if err := addRow("Fractal", w.fractal); err != nil {
		return err
	}

	for _, f := range parameterFields {
		spin, err := gtk.SpinButtonNewWithRange(f.Min, f.Max, f.Step)
		if err != nil {
			return err
		}
		spin.SetDigits(f.Digits)
		spin.Connect("value-changed", w.parametersChanged)
		w.spins[f.Key] = spin
		if err := addRow(f.Label, spin); err != nil {
			return err
		}
	}

	w.insideBW, err = gtk.CheckButtonNewWithLabel("Black and white inside")
	if err != nil {
		return err
	}
	w.insideBW.Connect("toggled", w.parametersChanged)
	grid.Attach(w.insideBW, 0, row, 2, 1)
	row++

	w.paramJSON, err = gtk.EntryNew()
	if err != nil {
		return err
	}
	w.paramJSON.SetPlaceholderText(`{"cr": -0.7, "ci": 0.27}`)
	w.paramJSON.Connect("activate", w.applyJSON)
	if err := addRow("Parameters JSON", w.paramJSON); err != nil {
		return err
	}

	reset, err := gtk.ButtonNewWithLabel("Reset view")
	if err != nil {
		return err
	}
	reset.Connect("clicked", func() {
		w.mu.Lock()
		kind := w.kind
		w.mu.Unlock()
		w.send(&selectFractal{Kind: kind})
	})
	grid.Attach(reset, 0, row, 2, 1)
	row++

	w.viewLabel, err = gtk.LabelNew("")
	if err != nil {
		return err
	}
	w.viewLabel.SetSelectable(true)
	w.viewLabel.SetHAlign(gtk.ALIGN_START)
	grid.Attach(w.viewLabel, 0, row, 2, 1)
	row++
	w.updateViewLabel()

	if err := w.buildSave(grid, addRow, &row); err != nil {
		return err
	}

	w.Add(grid)
	return nil
}

func (w *ConfigWindow) buildSave(grid *gtk.Grid, addRow func(string, gtk.IWidget) error, row *int) error {
	var err error

	w.saveName, err = gtk.EntryNew()
	if err != nil {
		return err
	}
	w.saveName.SetText("fractal.png")
	if err := addRow("File", w.saveName); err != nil {
		return err
	}

	w.saveWidth, err = gtk.SpinButtonNewWithRange(1, 16384, 1)
	if err != nil {
		return err
	}
	w.saveWidth.SetValue(defaultWidth * 2)
	if err := addRow("Width", w.saveWidth); err != nil {
		return err
	}

	w.saveHeight, err = gtk.SpinButtonNewWithRange(1, 16384, 1)
	if err != nil {
		return err
	}
	w.saveHeight.SetValue(defaultHeight * 2)
	if err := addRow("Height", w.saveHeight); err != nil {
		return err
	}

	w.saveAntialias, err = gtk.SpinButtonNewWithRange(0, 1, 0.05)
	if err != nil {
		return err
	}
	w.saveAntialias.SetDigits(2)
	w.saveAntialias.SetValue(0.33)
	if err := addRow("Antialias", w.saveAntialias); err != nil {
		return err
	}

	saveButton, err := gtk.ButtonNewWithLabel("Save image")
	if err != nil {
		return err
	}
	saveButton.Connect("clicked", w.save)
	grid.Attach(saveButton, 0, *row, 2, 1)
	*row++
	return nil
}

// parametersChanged sends the parameters shown by the widgets.
func (w *ConfigWindow) parametersChanged() {
	if w.syncing {
		return
	}

	m := make(map[string]any, len(w.spins)+1)
	for key, spin := range w.spins {
		m[key] = spin.GetValue()
	}
	m["insideBW"] = w.insideBW.GetActive()
	p := programs.ParametersFromMap(m)

	w.mu.Lock()
	w.params = p
	w.mu.Unlock()
	w.send(&p)
}

// applyJSON loads parameters typed into the JSON entry.
func (w *ConfigWindow) applyJSON() {
	text, err := w.paramJSON.GetText()
	if err != nil {
		log.Println(err)
		return
	}
	p := programs.ParametersFromJSON([]byte(text))
	w.setParameterWidgets(p)
	w.parametersChanged()
}

func (w *ConfigWindow) setParameterWidgets(p programs.Parameters) {
	w.syncing = true
	defer func() { w.syncing = false }()

	for key, v := range p.Map() {
		if spin, ok := w.spins[key]; ok {
			spin.SetValue(v.(float64))
		}
	}
	w.insideBW.SetActive(p.Inside == programs.InsideBlackWhite)
}

func (w *ConfigWindow) updateViewLabel() {
	w.mu.Lock()
	u, kind := w.uniforms, w.kind
	w.mu.Unlock()

	text := fmt.Sprintf("Zoom %.6g\nCentre (%.6g, %.6g)", u.Zoom, u.Center[0], u.Center[1])
	if p, err := programs.Get(kind); err == nil && p.Dimensions() == 3 {
		text = fmt.Sprintf("Zoom %.6g\nCentre (%.4g, %.4g, %.4g)\nYaw %.1f° Pitch %.1f°",
			u.Zoom, u.Center[0], u.Center[1], u.Center[2], u.Yaw, u.Pitch)
	}
	w.viewLabel.SetText(text)
}

func (w *ConfigWindow) save() {
	name, err := w.saveName.GetText()
	if err != nil {
		NewErrorDialog(w.ApplicationWindow, err)
		return
	}

	w.mu.Lock()
	kind, params, uniforms := w.kind, w.params, w.uniforms
	w.mu.Unlock()

	p, err := programs.Get(kind)
	if err != nil {
		NewErrorDialog(w.ApplicationWindow, err)
		return
	}

	save(w.ctx, w.ApplicationWindow, SaveOptions{
		Name:      name,
		Width:     w.saveWidth.GetValueAsInt(),
		Height:    w.saveHeight.GetValueAsInt(),
		Antialias: w.saveAntialias.GetValue(),
		Workers:   runtime.GOMAXPROCS(0),
	}, render.Frame{
		Program:    p,
		Uniforms:   uniforms,
		Parameters: params,
	})
}

func (w *ConfigWindow) send(msg any) {
	select {
	case w.sendMessage <- msg:
	case <-w.ctx.Done():
	}
}

func (w *ConfigWindow) handleSend() {
	defer CatchPanicToContext(w.quit)
	defer w.msg.Close()

	// Bring the render window in line with the starting widgets.
	w.mu.Lock()
	params := w.params
	w.mu.Unlock()
	if err := w.msg.Send(&params); err != nil {
		w.quit(err)
		return
	}

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

func (w *ConfigWindow) handleReceive() {
	defer CatchPanicToContext(w.quit)

	for {
		v, err := w.msg.Receive()
		if err != nil {
			if w.ctx.Err() == nil {
				w.quit(fmt.Errorf("config window receive: %w", err))
			}
			return
		}

		switch msg := v.(type) {
		case *viewChanged:
			w.mu.Lock()
			w.kind = msg.Kind
			w.uniforms = msg.Uniforms
			w.mu.Unlock()

			glib.IdleAdd(func() {
				if programs.Kind(w.fractal.GetActive()) != msg.Kind {
					w.syncing = true
					w.fractal.SetActive(int(msg.Kind))
					w.syncing = false
				}
				w.updateViewLabel()
			})

		default:
			log.Printf("unknown message received %T", v)
		}
	}
}
