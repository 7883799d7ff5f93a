//go:build !windows

package hook

type unsupportedSource struct{}

// SystemSource returns a source that always fails with ErrUnsupported.
func SystemSource() Source { return unsupportedSource{} }

func (unsupportedSource) Start(func(Event)) (func() error, error) {
	return nil, ErrUnsupported
}
