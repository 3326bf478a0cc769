package main

import (
	"errors"
	"net"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fractalexplorer/programs"
)

func TestMessengerRoundTrip(t *testing.T) {
	client, listener := NewPipeListener()
	defer listener.Close()

	server, err := listener.Accept()
	if err != nil {
		t.Fatal(err)
	}

	a, b := newMessenger(client), newMessenger(server)
	params := programs.DefaultParameters()
	params.JuliaC = complex(0.3, -0.1)

	sent := []any{
		&params,
		&selectFractal{Kind: programs.Kleinian},
		&viewChanged{Kind: programs.Julia, Uniforms: programs.Uniforms{Zoom: 2, Center: mgl64.Vec3{1, 2, 0}}},
	}

	go func() {
		for _, msg := range sent {
			if err := a.Send(msg); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for i := range sent {
		got, err := b.Receive()
		if err != nil {
			t.Fatal(err)
		}
		switch msg := got.(type) {
		case *programs.Parameters:
			if *msg != params {
				t.Errorf("parameters %+v", *msg)
			}
		case *selectFractal:
			if msg.Kind != programs.Kleinian {
				t.Errorf("kind %v", msg.Kind)
			}
		case *viewChanged:
			if msg.Uniforms.Zoom != 2 || msg.Uniforms.Center[1] != 2 {
				t.Errorf("view %+v", msg.Uniforms)
			}
		default:
			t.Errorf("message %d has type %T", i, got)
		}
	}
}

func TestPipeListenerAcceptsOnce(t *testing.T) {
	_, listener := NewPipeListener()
	if _, err := listener.Accept(); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := listener.Accept()
		done <- err
	}()

	listener.Close()
	if err := <-done; !errors.Is(err, net.ErrClosed) {
		t.Errorf("second accept returned %v", err)
	}
}
