package catalog

// Option applies a configuration option to catalog construction.
type Option func(*options)

type options struct {
	openPrerequisites []string
}

// WithOpenPrerequisites names courses whose real rule is computed elsewhere.
// Their declared prerequisite list must be empty.
func WithOpenPrerequisites(codes ...string) Option {
	return func(o *options) {
		o.openPrerequisites = append(o.openPrerequisites, codes...)
	}
}
