//go:build !windows && !linux

package platform

// Open reports ErrUnsupported; only Windows and X11 sessions are handled.
func Open() (Backend, error) {
	return nil, ErrUnsupported
}
