//go:build !windows

package platform

// New returns the native window backend. Only the Win32 window manager is
// supported; other platforms can run the daemon against the simulator.
func New() (WindowAPI, error) {
	return nil, ErrUnsupported
}
