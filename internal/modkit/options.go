package modkit

// Option mutates build configuration for an adapter module
type Option func(*BuildCfg)

// BuildCfg is wiring state assembled from Options; adapter constructors call
// Build to resolve it
type BuildCfg struct {
	Name    string
	WorkDir string
}

// Build resolves a BuildCfg from options, applying defaults
func Build(opts ...Option) BuildCfg {
	var c BuildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	return c
}

// WithName overrides the module's default source name, used in logs and the
// adapter registry
func WithName(name string) Option {
	return func(c *BuildCfg) { c.Name = name }
}

// WithWorkDir sets the local directory the adapter downloads files into
func WithWorkDir(dir string) Option {
	return func(c *BuildCfg) { c.WorkDir = dir }
}
