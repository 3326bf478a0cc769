// Package glview draws rendered frames into the current OpenGL context.
//
// A View owns one texture and a full-screen triangle. Callers make their
// context current, Upload frames as they arrive and Draw on every repaint.
package glview

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/stewi1014/fractalexplorer/internal/logger"
)

const vertexShader = `#version 460 core
in vec2 vert;
out vec2 uv;

void main() {
	uv = vert * 0.5 + 0.5;
	gl_Position = vec4(vert, 0.0, 1.0);
}
`

// Pixmap rows run top to bottom; texture rows bottom to top.
const fragmentShader = `#version 460 core
in vec2 uv;
out vec4 outputColor;
uniform sampler2D frame;

void main() {
	outputColor = texture(frame, vec2(uv.x, 1.0 - uv.y));
}
`

// Covers clip space with one triangle.
var triangle = []mgl32.Vec2{
	{-3, -2},
	{0, 3},
	{3, -2},
}

// Init loads the GL function pointers for the current context. With debug
// set, driver messages are logged.
func Init(debug bool) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl.Init: %w", err)
	}
	logger.Logger().Info("OpenGL ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	if debug {
		gl.DebugMessageCallback(debugMessage, nil)
		gl.Enable(gl.DEBUG_OUTPUT)
	}
	return nil
}

type View struct {
	vao      uint32
	vbo      uint32
	program  uint32
	texture  uint32
	frameLoc int32

	texWidth  int
	texHeight int
}

// New builds the shader program and buffers in the current context.
func New() (*View, error) {
	v := &View{}

	vs, err := compileShader(vertexShader+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(fragmentShader+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fs)

	v.program, err = linkProgram(vs, fs)
	if err != nil {
		return nil, err
	}
	gl.BindFragDataLocation(v.program, 0, gl.Str("outputColor\x00"))
	v.frameLoc = gl.GetUniformLocation(v.program, gl.Str("frame\x00"))

	gl.GenVertexArrays(1, &v.vao)
	gl.BindVertexArray(v.vao)

	gl.GenBuffers(1, &v.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, v.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(triangle)*2*4, gl.Ptr(triangle), gl.STATIC_DRAW)

	vertexAttrib := uint32(gl.GetAttribLocation(v.program, gl.Str("vert\x00")))
	gl.EnableVertexAttribArray(vertexAttrib)
	gl.VertexAttribPointerWithOffset(vertexAttrib, 2, gl.FLOAT, false, 2*4, 0)

	gl.GenTextures(1, &v.texture)
	gl.BindTexture(gl.TEXTURE_2D, v.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	return v, nil
}

// Upload replaces the displayed frame.
func (v *View) Upload(pix *gg.Pixmap) {
	w, h := pix.Width(), pix.Height()
	if w == 0 || h == 0 {
		return
	}

	gl.BindTexture(gl.TEXTURE_2D, v.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if w == v.texWidth && h == v.texHeight {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix.Data()))
		return
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix.Data()))
	v.texWidth, v.texHeight = w, h
}

// Draw stretches the last uploaded frame over a width by height viewport.
// Before the first Upload it only clears.
func (v *View) Draw(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if v.texWidth == 0 {
		return
	}

	gl.UseProgram(v.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, v.texture)
	gl.Uniform1i(v.frameLoc, 0)
	gl.BindVertexArray(v.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(triangle)))
}

// Delete frees the GL objects. The context must be current.
func (v *View) Delete() {
	gl.DeleteTextures(1, &v.texture)
	gl.DeleteBuffers(1, &v.vbo)
	gl.DeleteVertexArrays(1, &v.vao)
	gl.DeleteProgram(v.program)
	*v = View{}
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	defer runtime.KeepAlive(source)
	cstring, free := gl.Strs(source)
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, cstring, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetShaderInfoLog(shader, l, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader\n\"\n%v\n\"\nfailed to compile: %v", source, log)
	}

	return shader, nil
}

func linkProgram(shaders ...uint32) (uint32, error) {
	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var l int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &l)

		log := strings.Repeat("\x00", int(l+1))
		gl.GetProgramInfoLog(program, l, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func debugMessage(
	source,
	gltype,
	id,
	severity uint32,
	length int32,
	message string,
	user unsafe.Pointer,
) {
	l := logger.Logger()
	attrs := []any{
		"source", sourceName(source),
		"type", typeName(gltype),
		"id", id,
	}

	switch severity {
	case gl.DEBUG_SEVERITY_HIGH, gl.DEBUG_SEVERITY_MEDIUM:
		l.Warn(message, attrs...)
	default:
		l.Debug(message, attrs...)
	}
}

func sourceName(source uint32) string {
	switch source {
	case gl.DEBUG_SOURCE_API:
		return "api"
	case gl.DEBUG_SOURCE_APPLICATION:
		return "application"
	case gl.DEBUG_SOURCE_OTHER:
		return "other"
	case gl.DEBUG_SOURCE_SHADER_COMPILER:
		return "shaderCompiler"
	case gl.DEBUG_SOURCE_THIRD_PARTY:
		return "thirdParty"
	case gl.DEBUG_SOURCE_WINDOW_SYSTEM:
		return "windowSystem"
	}
	return "unknownSource"
}

func typeName(gltype uint32) string {
	switch gltype {
	case gl.DEBUG_TYPE_ERROR:
		return "error"
	case gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR:
		return "deprecatedBehavior"
	case gl.DEBUG_TYPE_MARKER:
		return "marker"
	case gl.DEBUG_TYPE_OTHER:
		return "other"
	case gl.DEBUG_TYPE_PERFORMANCE:
		return "performance"
	case gl.DEBUG_TYPE_POP_GROUP:
		return "popGroup"
	case gl.DEBUG_TYPE_PORTABILITY:
		return "portability"
	case gl.DEBUG_TYPE_PUSH_GROUP:
		return "pushGroup"
	case gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:
		return "undefinedBehavior"
	}
	return "unknownType"
}
