package programs

// z <- z^2 + k, starting at the pixel with k fixed for the whole render.
var juliaProgram = Program{
	Kind:       Julia,
	Name:       "Julia",
	Family:     EscapeTime,
	Iterations: DefaultIterations,

	DefaultZoom: 2.5,
	MinZoom:     1e-13,
	MaxZoom:     20,
}
