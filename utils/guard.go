package utils

// A Guard undoes a partial acquisition when a constructor bails out early, for example releasing
// the board lines already claimed when the second motor fails to come up.
//
//	guard := NewGuard(func() { b.Close(ctx) })
//	defer guard.OnFail()
//	...
//	guard.Success()
type Guard struct {
	cleanup func()
	success bool
}

// NewGuard returns a Guard that runs cleanup from OnFail unless Success was called first.
func NewGuard(cleanup func()) *Guard {
	return &Guard{cleanup: cleanup}
}

// OnFail runs the cleanup if the guarded operation never succeeded.
func (g *Guard) OnFail() {
	if !g.success && g.cleanup != nil {
		g.cleanup()
	}
}

// Success marks the guarded operation as done; OnFail becomes a no-op.
func (g *Guard) Success() {
	g.success = true
}
