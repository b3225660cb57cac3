package rt

// Acoustic surface coefficients, all in [0,1]. Absorption removes energy
// on contact, transmission routes the remainder through the surface,
// diffusion widens reflected ray bundles and dispersion widens
// transmitted ones.
type Material struct {
	Absorption   float32
	Diffusion    float32
	Dispersion   float32
	Transmission float32
}

// The material assigned to objects that were never configured: a mostly
// reflective, slightly absorbing surface.
func DefaultMaterial() Material {
	return Material{Absorption: 0.02}
}
