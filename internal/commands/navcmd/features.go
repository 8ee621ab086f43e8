package navcmd

// FeatureGates exposes the runtime toggles honoured by navigation command
// handlers. Callers supply closures reading their runtime configuration so
// handlers stay decoupled from the config layer.
type FeatureGates struct {
	SectionsEnabled   func() bool
	FileSourceEnabled func() bool
}

func (g FeatureGates) sectionsEnabled() bool {
	if g.SectionsEnabled == nil {
		return true
	}
	return g.SectionsEnabled()
}

func (g FeatureGates) fileSourceEnabled() bool {
	if g.FileSourceEnabled == nil {
		return true
	}
	return g.FileSourceEnabled()
}
