package visualizer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/pkg/logger"
)

func textVisualizer(name string, keys ...Key) Visualizer {
	return New(name, keys, func(_ *Context, ins Instruction) ([]payload.Field, error) {
		return []payload.Field{payload.NewTextField(ins.Label, name)}, nil
	})
}

func TestDispatcher_Match(t *testing.T) {
	t.Parallel()

	d := NewDispatcher([]Visualizer{
		textVisualizer("exact", NewKey("0x2", "pay", "split")),
		textVisualizer("module", NewKey("0x2", "pay", Any)),
		textVisualizer("package", NewKey("0x2", Any, Any)),
		textVisualizer("selector", ProgramKey(Any, "a9059cbb")),
	})
	require.NoError(t, d.Validate())

	tests := []struct {
		name     string
		give     Key
		want     string
		wantNone bool
	}{
		{name: "exact match wins", give: NewKey("0x2", "pay", "split"), want: "exact"},
		{name: "module wildcard", give: NewKey("0x2", "pay", "join"), want: "module"},
		{name: "package wildcard", give: NewKey("0x2", "coin", "mint"), want: "package"},
		{name: "any package selector", give: ProgramKey("0xdac17f958d2ee523a2206206994597c13d831ec7", "a9059cbb"), want: "selector"},
		{name: "no match", give: ProgramKey("0xdac17f958d2ee523a2206206994597c13d831ec7", "095ea7b3"), wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, ok := d.Match(tt.give)
			if tt.wantNone {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, v.Name())
		})
	}
}

func TestDispatcher_DuplicateKeys(t *testing.T) {
	t.Parallel()

	key := ProgramKey("11111111111111111111111111111111", "02000000")
	d := NewDispatcher([]Visualizer{
		textVisualizer("first", key),
		textVisualizer("second", key, ProgramKey("11111111111111111111111111111111", "00000000")),
	})

	err := d.Validate()
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")

	v, ok := d.Match(key)
	require.True(t, ok)
	assert.Equal(t, "first", v.Name(), "first registration wins")

	v, ok = d.Match(ProgramKey("11111111111111111111111111111111", "00000000"))
	require.True(t, ok)
	assert.Equal(t, "second", v.Name(), "non conflicting keys of the later visualizer stay registered")
	assert.Len(t, d.Visualizers(), 2)
}

func TestDispatcher_NeverDropsInstructions(t *testing.T) {
	t.Parallel()

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	d := NewDispatcher([]Visualizer{
		textVisualizer("ok", ProgramKey("prog", "01")),
		New("missing", []Key{ProgramKey("prog", "02")}, func(_ *Context, ins Instruction) ([]payload.Field, error) {
			_, err := AccountAt(3).Get(ins)
			return nil, err
		}),
		New("empty", []Key{ProgramKey("prog", "03")}, func(*Context, Instruction) ([]payload.Field, error) {
			return nil, nil
		}),
		New("panics", []Key{ProgramKey("prog", "04")}, func(_ *Context, ins Instruction) ([]payload.Field, error) {
			return []payload.Field{payload.NewTextField("x", fmt.Sprint(ins.Data[100]))}, nil
		}),
	}, WithLogger(lggr))
	ctx := NewContext(ContextParams{ChainID: "test", Dispatcher: d})

	var instructions []Instruction
	for i, disc := range []string{"01", "02", "03", "04", "05"} {
		instructions = append(instructions, Instruction{Key: ProgramKey("prog", disc), Index: i, Data: []byte{byte(i)}})
	}

	fields := d.DispatchAll(ctx, instructions)
	require.Len(t, fields, len(instructions))

	assert.Equal(t, payload.TextV2{Text: "ok"}, fields[0].Value)
	for i := 1; i < len(fields); i++ {
		assert.Equal(t, fmt.Sprintf("Instruction %d", i+1), fields[i].Label)
		assert.Equal(t, fmt.Sprintf("0x%02x", i), fields[i].FallbackText)
	}
	assert.Equal(t, 3, logs.FilterMessage("instruction degraded to opaque display").Len())
}

func TestDispatcher_UnmatchedInstructionIsOpaqueHex(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil)
	ctx := NewContext(ContextParams{Dispatcher: d})

	fields := d.Dispatch(ctx, Instruction{Key: ProgramKey("unknown", ""), Data: []byte{0xde, 0xad, 0xbe, 0xef}})
	require.Len(t, fields, 1)
	assert.Equal(t, payload.FieldTypeTextV2, fields[0].Type())
	assert.Equal(t, "Instruction 1", fields[0].Label)
	assert.Equal(t, payload.TextV2{Text: "0xdeadbeef"}, fields[0].Value)
}

func TestDispatcher_CustomFallback(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil, WithFallback(func(ins Instruction, cause error) payload.Field {
		return payload.NewUnknownField(ins.Label, "data", fmt.Sprint(cause == nil))
	}))
	fields := d.Dispatch(NewContext(ContextParams{Dispatcher: d}), Instruction{Label: "Call"})
	require.Len(t, fields, 1)
	assert.Equal(t, payload.Unknown{Data: "data", Explanation: "true"}, fields[0].Value)
}

func proxyVisualizer() Visualizer {
	return New("proxy", []Key{ProgramKey(Any, "proxy")}, func(ctx *Context, ins Instruction) ([]payload.Field, error) {
		if len(ins.Data) == 0 {
			return nil, errors.New("no inner call")
		}
		out := []payload.Field{payload.NewTextField("Proxy", fmt.Sprintf("depth %d", ctx.CallDepth))}
		inner := Instruction{
			Key:     ProgramKey(string(ins.Data), string(ins.Data)),
			Label:   "Inner Call",
			Program: "inner",
			Data:    ins.Data,
		}

		return append(out, ctx.VisualizeNested(inner)...), nil
	})
}

func TestContext_VisualizeNested(t *testing.T) {
	t.Parallel()

	d := NewDispatcher([]Visualizer{proxyVisualizer(), textVisualizer("leaf", ProgramKey(Any, "leaf"))})
	ctx := NewContext(ContextParams{ChainID: "1", Sender: "alice", Dispatcher: d})

	fields := d.Dispatch(ctx, Instruction{Key: ProgramKey("outer", "proxy"), Data: []byte("leaf")})
	require.Len(t, fields, 2)
	assert.Equal(t, "Proxy", fields[0].Label, "outer call first")
	assert.Equal(t, payload.TextV2{Text: "depth 0"}, fields[0].Value)
	assert.Equal(t, "Inner Call", fields[1].Label)
	assert.Equal(t, payload.TextV2{Text: "leaf"}, fields[1].Value)
}

func TestContext_VisualizeNested_BoundedDepth(t *testing.T) {
	t.Parallel()

	d := NewDispatcher([]Visualizer{proxyVisualizer()})
	ctx := NewContext(ContextParams{Dispatcher: d, MaxCallDepth: 3})

	// A proxy whose inner call is itself: recursion must stop at the depth bound.
	fields := d.Dispatch(ctx, Instruction{Key: ProgramKey("self", "proxy"), Data: []byte("proxy")})
	require.Len(t, fields, 5)
	for i := range 4 {
		assert.Equal(t, payload.TextV2{Text: fmt.Sprintf("depth %d", i)}, fields[i].Value)
	}
	assert.Equal(t, payload.TextV2{Text: "0x70726f7879"}, fields[4].Value)
}

func TestContext_ForNestedCall(t *testing.T) {
	t.Parallel()

	ctx := NewContext(ContextParams{
		ChainID:         "1",
		Sender:          "0xsender",
		CurrentContract: "0xouter",
		Calldata:        []byte{1},
		MaxCallDepth:    1,
	})
	assert.Equal(t, 0, ctx.CallDepth)
	require.NotNil(t, ctx.Registry)

	child, err := ctx.ForNestedCall("0xinner", []byte{2})
	require.NoError(t, err)
	assert.Equal(t, "1", child.ChainID)
	assert.Equal(t, "0xsender", child.Sender)
	assert.Equal(t, "0xinner", child.CurrentContract)
	assert.Equal(t, []byte{2}, child.Calldata)
	assert.Equal(t, 1, child.CallDepth)
	assert.Same(t, ctx.Registry, child.Registry)
	assert.Equal(t, "0xouter", ctx.CurrentContract, "parent is unchanged")

	_, err = child.ForNestedCall("0xdeeper", nil)
	require.ErrorIs(t, err, ErrMaxCallDepth)
}

func TestDispatcher_Extend(t *testing.T) {
	t.Parallel()

	base := NewDispatcher([]Visualizer{textVisualizer("builtin", ProgramKey(Any, "a9059cbb"))})
	ext := base.Extend(
		textVisualizer("request", ProgramKey("0xtoken", "deadbeef")),
		textVisualizer("shadow", ProgramKey(Any, "a9059cbb")),
	)

	v, ok := ext.Match(ProgramKey("0xtoken", "deadbeef"))
	require.True(t, ok)
	assert.Equal(t, "request", v.Name())

	v, ok = ext.Match(ProgramKey("0xtoken", "a9059cbb"))
	require.True(t, ok)
	assert.Equal(t, "builtin", v.Name())

	_, ok = base.Match(ProgramKey("0xtoken", "deadbeef"))
	assert.False(t, ok, "base dispatcher is unchanged")
	require.NoError(t, base.Validate())
	require.ErrorIs(t, ext.Validate(), ErrDuplicateKey)
}
