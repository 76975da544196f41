package driver

import "context"

// Func adapts a plain function into a Driver. Useful for tests and for
// wiring in-process generators.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Name returns "func".
func (f Func) Name() string { return "func" }

// Capabilities returns an empty capability set.
func (f Func) Capabilities() Capabilities { return Capabilities{} }
