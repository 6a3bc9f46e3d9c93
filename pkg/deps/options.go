package deps

// DefaultMaxPasses bounds the number of sorting passes. Dependency trees
// of practical depth settle in far fewer passes.
const DefaultMaxPasses = 10

// Options configures sorting and resolution.
type Options struct {
	MaxPasses int                  // Pass limit for Sort (default: 10, negative: no limit)
	Logger    func(string, ...any) // Debug callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxPasses == 0 {
		opts.MaxPasses = DefaultMaxPasses
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}
