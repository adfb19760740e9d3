//go:build noebiten

package barcard

import "context"

// RunWindow reports ErrNoWindow in builds without a window backend.
func (e *Engine) RunWindow(ctx context.Context) error {
	return ErrNoWindow
}
