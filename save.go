package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gogpu/gg"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fractalexplorer/render"
)

type SaveOptions struct {
	Name          string
	Width, Height int
	// Antialias is the 9x sample spacing in pixels. Zero disables it.
	Antialias float64
	Workers   int
}

// save renders frame at the requested size to a PNG file, showing progress
// and then a preview. It must be called on the GTK main thread.
func save(
	ctx context.Context,
	window *gtk.ApplicationWindow,
	opts SaveOptions,
	frame render.Frame,
) {
	ctx, cancel := WithErrorDialogCancelCause(window, ctx)
	defer CatchPanicToContext(cancel)

	frame.Width, frame.Height = opts.Width, opts.Height

	renderOpts := []render.Option{render.WithWorkers(opts.Workers)}
	if opts.Antialias > 0 {
		renderOpts = append(renderOpts, render.WithAntialias(opts.Antialias))
	}
	renderer, err := render.NewRenderer(renderOpts...)
	if err != nil {
		cancel(err)
		return
	}

	app, err := window.GetApplication()
	if err != nil {
		cancel(err)
		return
	}

	progress := &render.Progress{}
	progressDialog, err := NewProgressDialog(
		ctx, window, "Save Image",
		fmt.Sprintf("Saving %v", opts.Name),
		func() { cancel(context.Canceled) },
	)
	if err != nil {
		cancel(err)
		return
	}
	progressDialog.AddProgressSupplier(progress.Fraction)
	progressDialog.ShowAll()

	go func() {
		defer CatchPanicToContext(cancel)

		pix := gg.NewPixmap(frame.Width, frame.Height)
		if err := renderer.Render(ctx, frame, pix, progress); err != nil {
			cancel(err)
			return
		}
		if err := pix.SavePNG(opts.Name); err != nil {
			cancel(fmt.Errorf("save %v: %w", opts.Name, err))
			return
		}
		log.Println("saved", opts.Name)

		preview := previewPixmap(pix)
		// Closes the progress dialog.
		cancel(nil)

		glib.IdleAdd(func() {
			pixbuf, err := pixbufFromPixmap(preview)
			if err != nil {
				NewErrorDialog(window, err)
				return
			}

			_, err = NewImagePreview(app, opts.Name, pixbuf, func() {
				if err := os.Remove(opts.Name); err != nil {
					NewErrorDialog(window, err)
				}
			})
			if err != nil {
				NewErrorDialog(window, err)
			}
		})
	}()
}
