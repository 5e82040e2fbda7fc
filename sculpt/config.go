package sculpt

// MeshConfig groups triangulation parameters passed to the kernel.
type MeshConfig struct {
	Tolerance        float64 // linear deflection for display meshes (must be > 0)
	AngularTolerance float64 // angular deflection in radians (default 0.5)
	CoarseTolerance  float64 // coarse tolerance for face-centroid meshes (default 4x Tolerance)
}

// MatchConfig groups face-matching parameters.
type MatchConfig struct {
	NormalCutoff float64 // strict lower bound on normal dot product (default 0.7, ~45 degrees)
}

// EngineConfig is the full engine configuration.
type EngineConfig struct {
	Mesh  MeshConfig
	Match MatchConfig
}

// DefaultEngineConfig returns the configuration used by the CLI and by most
// tests. Tolerances are in scene units.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Mesh: MeshConfig{
			Tolerance:        0.5,
			AngularTolerance: 0.5,
			CoarseTolerance:  2.0,
		},
		Match: MatchConfig{
			NormalCutoff: 0.7,
		},
	}
}

// withDefaults fills zero-valued fields so a partially specified config
// behaves like DefaultEngineConfig for the unspecified parts.
func (c EngineConfig) withDefaults() EngineConfig {
	d := DefaultEngineConfig()
	if c.Mesh.Tolerance <= 0 {
		c.Mesh.Tolerance = d.Mesh.Tolerance
	}
	if c.Mesh.AngularTolerance <= 0 {
		c.Mesh.AngularTolerance = d.Mesh.AngularTolerance
	}
	if c.Mesh.CoarseTolerance <= 0 {
		c.Mesh.CoarseTolerance = 4 * c.Mesh.Tolerance
	}
	if c.Match.NormalCutoff <= 0 {
		c.Match.NormalCutoff = d.Match.NormalCutoff
	}
	return c
}
