package programs

// z <- (|Re z| + i|Im z|)^2 + c. Drawn with the imaginary axis flipped so the
// ship stands upright.
var burningShipProgram = Program{
	Kind:       BurningShip,
	Name:       "Burning Ship",
	Family:     EscapeTime,
	Iterations: DefaultIterations,
	FlipY:      true,

	DefaultZoom: 2.5,
	MinZoom:     1e-13,
	MaxZoom:     20,
}
