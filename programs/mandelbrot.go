package programs

// z <- z^2 + c, starting at the initial Z with c the pixel.
var mandelbrotProgram = Program{
	Kind:       Mandelbrot,
	Name:       "Mandelbrot",
	Family:     EscapeTime,
	Iterations: DefaultIterations,

	DefaultZoom: 2.5,
	MinZoom:     1e-13,
	MaxZoom:     20,
}
