// Package visualizer selects, for every decoded instruction, the protocol visualizer that
// renders it into payload fields, falling back to an opaque display so that no instruction
// is ever dropped.
package visualizer

import "github.com/smartcontractkit/visualsign-go/payload"

// Visualizer renders the instructions of one protocol integration.
type Visualizer interface {
	// Name identifies the visualizer in logs and configuration errors.
	Name() string

	// Keys lists the instruction keys the visualizer claims.
	Keys() []Key

	// Visualize renders ins. Returning an error, or no fields, degrades the instruction
	// to opaque display.
	Visualize(ctx *Context, ins Instruction) ([]payload.Field, error)
}

// VisualizeFunc is the rendering function of a declarative visualizer.
type VisualizeFunc func(ctx *Context, ins Instruction) ([]payload.Field, error)

// New returns a Visualizer from a static key table and a rendering function.
func New(name string, keys []Key, fn VisualizeFunc) Visualizer {
	return &funcVisualizer{name: name, keys: keys, fn: fn}
}

type funcVisualizer struct {
	name string
	keys []Key
	fn   VisualizeFunc
}

func (v *funcVisualizer) Name() string { return v.name }

func (v *funcVisualizer) Keys() []Key { return v.keys }

func (v *funcVisualizer) Visualize(ctx *Context, ins Instruction) ([]payload.Field, error) {
	return v.fn(ctx, ins)
}
