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

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/fractalexplorer/programs"
	"github.com/stewi1014/fractalexplorer/render"
)

const appID = "com.github.stewi1014.fractalexplorer"

type options struct {
	fractal programs.Kind
	params  programs.Parameters
	workers int
	verbose bool
	glDebug bool

	// Arguments left for GTK.
	gtkArgs []string
}

func parseFlags(name string, args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fractal := fs.String("fractal", "mandelbrot", "fractal to start with")
	params := fs.String("params", "", "parameters as a JSON object, or a file holding one")
	workers := fs.Int("workers", runtime.GOMAXPROCS(0), "render goroutines")
	verbose := fs.Bool("v", false, "log render diagnostics to stderr")
	glDebug := fs.Bool("gldebug", false, "log OpenGL debug messages")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	kind, err := programs.ParseKind(*fractal)
	if err != nil {
		return options{}, err
	}

	p, err := programs.LoadParameters(*params)
	if err != nil {
		return options{}, err
	}

	return options{
		fractal: kind,
		params:  p,
		workers: *workers,
		verbose: *verbose,
		glDebug: *glDebug,
		gtkArgs: append([]string{name}, fs.Args()...),
	}, nil
}

func main() {
	opts, err := parseFlags(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	if opts.verbose {
		render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	mainContext, mainQuit := context.WithCancelCause(context.Background())

	go func() {
		defer CatchPanicToContext(mainQuit)
		mainQuit(gtkMain(mainContext, opts))
	}()

	<-mainContext.Done()
	if err := context.Cause(mainContext); err != nil && !errors.Is(err, context.Canceled) {
		log.Println(err)
		os.Exit(1)
	}
}

func gtkMain(ctx context.Context, opts options) error {
	runtime.LockOSThread()

	gtk.Init(&opts.gtkArgs)
	app, err := gtk.ApplicationNew(appID, glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	appContext, appQuit := context.WithCancelCause(ctx)
	app.Connect("activate", func() {
		client, listener := NewPipeListener()
		server, err := listener.Accept()
		if err != nil {
			appQuit(err)
			return
		}
		context.AfterFunc(appContext, func() {
			listener.Close()
			client.Close()
		})

		renderWindow := NewRenderWindow(app, client, appContext, appQuit, opts)
		if renderWindow == nil {
			return
		}
		renderWindow.Connect("destroy", func() {
			appQuit(nil)
		})

		configWindow := NewConfigWindow(app, server, appContext, appQuit, opts)
		if configWindow == nil {
			return
		}
		configWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		configWindow.SetTitle("Fractal Explorer Config")
	})

	go func() {
		<-appContext.Done()
		glib.IdleAdd(app.Quit)
	}()
	app.Run(nil)
	return context.Cause(appContext)
}
