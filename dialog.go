package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

// CatchPanicToContext must be deferred. A recovered panic becomes the cancel
// cause, stack included.
func CatchPanicToContext(cancel context.CancelCauseFunc) {
	v := recover()
	if v == nil {
		return
	}
	err := panicError(v, debug.Stack())
	if cancel == nil {
		log.Println(err)
		return
	}
	cancel(err)
}

func panicError(v any, stack []byte) error {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	return fmt.Errorf("%w\n%s", err, stack)
}

// WithErrorDialogCancelCause returns a context whose cancellation cause,
// unless it is context.Canceled, is shown in an error dialog over parent.
func WithErrorDialogCancelCause(parent gtk.IWindow, ctx context.Context) (context.Context, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	go func() {
		<-ctx.Done()
		err := context.Cause(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		log.Println(err)
		glib.IdleAdd(func() { NewErrorDialog(parent, err) })
	}()
	return ctx, cancel
}

// splitError separates the first line of an error from the rest, which for
// recovered panics is the stack.
func splitError(err error) (summary, detail string) {
	summary, detail, _ = strings.Cut(err.Error(), "\n")
	return summary, strings.TrimSpace(detail)
}

// NewErrorDialog shows err over parent without blocking the main loop.
func NewErrorDialog(parent gtk.IWindow, err error) {
	summary, detail := splitError(err)

	dialog := gtk.MessageDialogNew(
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"%s", summary,
	)
	if detail != "" {
		dialog.FormatSecondaryText("%s", detail)
	}
	dialog.SetTitle("Fractal Explorer")
	dialog.SetKeepAbove(true)
	dialog.Connect("response", dialog.Destroy)
	dialog.ShowAll()
}

// progressSuppliers averages any number of progress sources, each reporting
// a fraction in [0, 1]. Safe for concurrent use.
type progressSuppliers struct {
	mu    sync.Mutex
	funcs []func() float64
}

func (p *progressSuppliers) add(f func() float64) {
	p.mu.Lock()
	p.funcs = append(p.funcs, f)
	p.mu.Unlock()
}

// average reports false when there is nothing to average.
func (p *progressSuppliers) average() (float64, bool) {
	p.mu.Lock()
	funcs := p.funcs
	p.mu.Unlock()

	if len(funcs) == 0 {
		return 0, false
	}
	var sum float64
	for _, f := range funcs {
		sum += min(max(f(), 0), 1)
	}
	return sum / float64(len(funcs)), true
}

// ProgressDialog shows a progress bar until its context is done. It pulses
// until a supplier is added.
type ProgressDialog struct {
	*gtk.Dialog
	bar       *gtk.ProgressBar
	suppliers progressSuppliers
}

// NewProgressDialog builds a dialog that closes itself when ctx is done.
// Pressing Cancel calls onCancel.
func NewProgressDialog(
	ctx context.Context,
	parent gtk.IWindow,
	title, description string,
	onCancel func(),
) (*ProgressDialog, error) {
	d, err := gtk.DialogNewWithButtons(
		title, parent, gtk.DIALOG_DESTROY_WITH_PARENT,
		[]interface{}{"Cancel", gtk.RESPONSE_CANCEL},
	)
	if err != nil {
		return nil, err
	}
	d.SetKeepAbove(true)
	d.Connect("response", func(_ *gtk.Dialog, response gtk.ResponseType) {
		if response == gtk.RESPONSE_CANCEL && onCancel != nil {
			onCancel()
		}
	})

	box, err := d.GetContentArea()
	if err != nil {
		return nil, err
	}
	label, err := gtk.LabelNew(description)
	if err != nil {
		return nil, err
	}
	bar, err := gtk.ProgressBarNew()
	if err != nil {
		return nil, err
	}
	bar.SetShowText(true)
	bar.SetSizeRequest(480, -1)
	box.SetSpacing(8)
	box.Add(label)
	box.Add(bar)

	pd := &ProgressDialog{Dialog: d, bar: bar}
	go pd.run(ctx)
	return pd, nil
}

// AddProgressSupplier adds a progress source. Several are averaged.
func (d *ProgressDialog) AddProgressSupplier(f func() float64) {
	d.suppliers.add(f)
}

func (d *ProgressDialog) run(ctx context.Context) {
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			glib.IdleAdd(d.Destroy)
			return
		case <-tick.C:
			fraction, ok := d.suppliers.average()
			glib.IdleAdd(func() {
				if !ok {
					d.bar.Pulse()
					return
				}
				d.bar.SetFraction(fraction)
			})
		}
	}
}

// ImagePreview is a window showing a freshly saved image.
type ImagePreview struct {
	*gtk.ApplicationWindow
}

// NewImagePreview shows pixbuf with Keep and Delete buttons. Delete runs
// onDelete before closing.
func NewImagePreview(
	app *gtk.Application,
	title string,
	pixbuf *gdk.Pixbuf,
	onDelete func(),
) (*ImagePreview, error) {
	win, err := gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, err
	}
	win.SetTitle(title)

	img, err := gtk.ImageNewFromPixbuf(pixbuf)
	if err != nil {
		return nil, err
	}
	img.SetHExpand(true)
	img.SetVExpand(true)

	keep, err := gtk.ButtonNewWithLabel("Keep")
	if err != nil {
		return nil, err
	}
	keep.Connect("clicked", win.Destroy)

	discard, err := gtk.ButtonNewWithLabel("Delete")
	if err != nil {
		return nil, err
	}
	discard.Connect("clicked", func() {
		if onDelete != nil {
			onDelete()
		}
		win.Destroy()
	})

	buttons, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 8)
	if err != nil {
		return nil, err
	}
	buttons.PackStart(keep, false, false, 0)
	buttons.PackEnd(discard, false, false, 0)

	layout, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 8)
	if err != nil {
		return nil, err
	}
	layout.PackStart(img, true, true, 0)
	layout.PackStart(buttons, false, false, 0)

	win.Add(layout)
	win.ShowAll()
	return &ImagePreview{ApplicationWindow: win}, nil
}
