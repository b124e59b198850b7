package visualizer

import (
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
)

// FallbackFunc renders an instruction no visualizer could handle. cause is nil when no
// visualizer matched.
type FallbackFunc func(ins Instruction, cause error) payload.Field

// OpaqueField is the default fallback: a TextV2 field with the instruction data as hex.
func OpaqueField(ins Instruction, _ error) payload.Field {
	text := "0x" + hex.EncodeToString(ins.Data)

	return payload.NewTextField(ins.Label, text)
}

// Dispatcher maps instruction keys to visualizers. It is built once at startup from a
// static registration table and is read-only afterwards.
type Dispatcher struct {
	entries     map[Key]Visualizer
	visualizers []Visualizer
	duplicates  []error
	fallback    FallbackFunc
	lggr        logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFallback replaces the opaque fallback rendering.
func WithFallback(fn FallbackFunc) Option {
	return func(d *Dispatcher) { d.fallback = fn }
}

// WithLogger sets the logger used to report degraded instructions.
func WithLogger(lggr logger.Logger) Option {
	return func(d *Dispatcher) { d.lggr = lggr }
}

// NewDispatcher returns a Dispatcher with the given visualizers registered in order.
func NewDispatcher(visualizers []Visualizer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		entries:  make(map[Key]Visualizer),
		fallback: OpaqueField,
		lggr:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Register(visualizers...)

	return d
}

// Register adds visualizers. When a key is already claimed the first registration keeps
// it and the duplicate is recorded for Validate.
func (d *Dispatcher) Register(visualizers ...Visualizer) *Dispatcher {
	for _, v := range visualizers {
		d.visualizers = append(d.visualizers, v)
		for _, k := range v.Keys() {
			if prev, ok := d.entries[k]; ok {
				d.duplicates = append(d.duplicates, fmt.Errorf("%w: %s claimed by %s and %s",
					ErrDuplicateKey, k, prev.Name(), v.Name()))

				continue
			}
			d.entries[k] = v
		}
	}

	return d
}

// Extend returns a copy of d with visualizers registered after the existing ones. Keys
// already claimed keep their visualizer. d is not modified, so request scoped
// visualizers can be layered over the static table.
func (d *Dispatcher) Extend(visualizers ...Visualizer) *Dispatcher {
	ext := &Dispatcher{
		entries:     maps.Clone(d.entries),
		visualizers: slices.Clone(d.visualizers),
		duplicates:  slices.Clone(d.duplicates),
		fallback:    d.fallback,
		lggr:        d.lggr,
	}

	return ext.Register(visualizers...)
}

// Validate returns every duplicate key found during registration. Chain decoders call it
// at construction so a misconfigured table fails at startup.
func (d *Dispatcher) Validate() error {
	return errors.Join(d.duplicates...)
}

// Visualizers returns the registered visualizers in registration order.
func (d *Dispatcher) Visualizers() []Visualizer {
	return append([]Visualizer(nil), d.visualizers...)
}

// Match returns the most specific visualizer claiming k.
func (d *Dispatcher) Match(k Key) (Visualizer, bool) {
	for _, c := range k.candidates() {
		if v, ok := d.entries[c]; ok {
			return v, true
		}
	}

	return nil, false
}

// Dispatch renders one instruction. The result always holds at least one field: when no
// visualizer matches, or the matched one fails or renders nothing, the instruction is
// rendered by the fallback.
func (d *Dispatcher) Dispatch(ctx *Context, ins Instruction) []payload.Field {
	if ins.Label == "" {
		ins.Label = fmt.Sprintf("Instruction %d", ins.Index+1)
	}

	v, ok := d.Match(ins.Key)
	if !ok {
		d.lggr.Debugw("no visualizer matched", "key", ins.Key.String(), "index", ins.Index)

		return []payload.Field{d.fallback(ins, nil)}
	}

	fields, err := d.visualize(v, ctx, ins)
	if err == nil && len(fields) == 0 {
		err = fmt.Errorf("%s rendered no fields", v.Name())
	}
	if err != nil {
		d.lggr.Warnw("instruction degraded to opaque display",
			"visualizer", v.Name(), "key", ins.Key.String(), "index", ins.Index, "depth", ctx.CallDepth, "err", err)

		return []payload.Field{d.fallback(ins, err)}
	}

	return fields
}

// DispatchAll renders instructions in order.
func (d *Dispatcher) DispatchAll(ctx *Context, instructions []Instruction) []payload.Field {
	var out []payload.Field
	for _, ins := range instructions {
		out = append(out, d.Dispatch(ctx, ins)...)
	}

	return out
}

// visualize runs v, converting a panic on adversarial input into an error.
func (d *Dispatcher) visualize(v Visualizer, ctx *Context, ins Instruction) (fields []payload.Field, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields = nil
			err = fmt.Errorf("%s panicked: %v", v.Name(), r)
		}
	}()

	return v.Visualize(ctx, ins)
}

func (d *Dispatcher) fallbackField(ins Instruction, cause error) payload.Field {
	if ins.Label == "" {
		ins.Label = fmt.Sprintf("Instruction %d", ins.Index+1)
	}

	return d.fallback(ins, cause)
}
