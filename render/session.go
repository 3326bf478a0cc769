package render

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/fractalexplorer/controller"
	"github.com/stewi1014/fractalexplorer/programs"
)

// Session owns the view of one explorer: the selected program, its view
// state, its parameters, the interaction controller and the surface size.
// All methods are safe for concurrent use. Input methods report whether the
// view changed and a frame should be requested.
type Session struct {
	mu         sync.Mutex
	program    programs.Program
	uniforms   programs.Uniforms
	params     programs.Parameters
	ctrl       *controller.Controller
	width      int
	height     int
	generation uint64
}

// NewSession starts a session on kind with default view and parameters.
func NewSession(kind programs.Kind, cfg controller.Config) (*Session, error) {
	p, err := programs.Get(kind)
	if err != nil {
		return nil, err
	}
	return &Session{
		program:  p,
		uniforms: programs.DefaultUniforms(p),
		params:   programs.DefaultParameters(),
		ctrl:     controller.New(cfg),
	}, nil
}

// SetKind switches fractal. The view and any drag are reset; parameters are kept.
func (s *Session) SetKind(kind programs.Kind) error {
	p, err := programs.Get(kind)
	if err != nil {
		return fmt.Errorf("select fractal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
	s.uniforms.DefaultValues(p)
	s.ctrl.Reset()
	s.generation++
	Logger().Info("fractal selected", "fractal", p.Name)
	return nil
}

func (s *Session) Program() programs.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// SetParameters replaces the parameters after sanitising them.
func (s *Session) SetParameters(params programs.Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params.Sanitize()
	s.generation++
}

func (s *Session) Parameters() programs.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetUniforms replaces the view, clamped to the program's ranges.
func (s *Session) SetUniforms(u programs.Uniforms) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Clamp(s.program)
	s.uniforms = u
	s.generation++
}

func (s *Session) Uniforms() programs.Uniforms {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uniforms
}

// Reset restores the default view of the current program.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniforms.DefaultValues(s.program)
	s.ctrl.Reset()
	s.generation++
}

// Resize sets the render surface size in pixels.
func (s *Session) Resize(width, height int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width == s.width && height == s.height {
		return false
	}
	s.width, s.height = width, height
	s.generation++
	return true
}

func (s *Session) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Session) Mode() controller.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Mode()
}

// Wheel zooms one step. deltaY > 0 is a scroll down.
func (s *Session) Wheel(deltaY float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed(s.ctrl.Wheel(&s.uniforms, s.program, deltaY))
}

func (s *Session) PointerDown(pos mgl64.Vec2, mods controller.Modifiers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.PointerDown(s.program, pos, mods)
}

// PointerMove drags the view. viewport is the input surface size in the
// units of pos, which may differ from the render size on scaled displays.
func (s *Session) PointerMove(pos mgl64.Vec2, mods controller.Modifiers, viewport mgl64.Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed(s.ctrl.PointerMove(&s.uniforms, s.program, pos, mods, viewport))
}

func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.PointerUp()
}

func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.PointerLeave()
}

// Generation increases with every change to the session.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Snapshot captures the session as a Frame.
func (s *Session) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{
		Program:    s.program,
		Uniforms:   s.uniforms,
		Parameters: s.params,
		Width:      s.width,
		Height:     s.height,
		Generation: s.generation,
	}
}

func (s *Session) changed(ok bool) bool {
	if ok {
		s.generation++
	}
	return ok
}
