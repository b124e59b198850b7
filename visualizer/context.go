package visualizer

import (
	"fmt"
	"math/big"

	"github.com/smartcontractkit/visualsign-go/payload"
	"github.com/smartcontractkit/visualsign-go/registry"
)

// DefaultMaxCallDepth bounds nested call visualization.
const DefaultMaxCallDepth = 8

// ContextParams holds the values of a top level Context.
type ContextParams struct {
	ChainID         string
	Sender          string
	CurrentContract string
	Calldata        []byte
	Registry        registry.Reader
	Dispatcher      *Dispatcher
	MaxCallDepth    int
}

// Context is the per request visualization context. A nested call derives a child that
// shares the chain, sender, registry and dispatcher and overrides the contract and
// calldata.
type Context struct {
	ChainID         string
	Sender          string
	CurrentContract string
	Calldata        []byte
	CallDepth       int
	MaxCallDepth    int
	Registry        registry.Reader
	Dispatcher      *Dispatcher
}

// NewContext returns a top level Context. A nil registry is replaced by an empty one.
func NewContext(p ContextParams) *Context {
	reg := p.Registry
	if reg == nil {
		reg = registry.New().Freeze()
	}
	maxDepth := p.MaxCallDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxCallDepth
	}

	return &Context{
		ChainID:         p.ChainID,
		Sender:          p.Sender,
		CurrentContract: p.CurrentContract,
		Calldata:        p.Calldata,
		MaxCallDepth:    maxDepth,
		Registry:        reg,
		Dispatcher:      p.Dispatcher,
	}
}

// ForNestedCall derives the context of a call made by the current contract.
func (c *Context) ForNestedCall(contract string, calldata []byte) (*Context, error) {
	if c.CallDepth+1 > c.MaxCallDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", ErrMaxCallDepth, c.CallDepth+1, c.MaxCallDepth)
	}

	child := *c
	child.CurrentContract = contract
	child.Calldata = calldata
	child.CallDepth = c.CallDepth + 1

	return &child, nil
}

// VisualizeNested dispatches ins, a call made by the current contract, in a child context.
// Calls beyond the maximum depth are rendered opaquely.
func (c *Context) VisualizeNested(ins Instruction) []payload.Field {
	child, err := c.ForNestedCall(ins.Program, ins.Data)
	if err != nil {
		return []payload.Field{c.Dispatcher.fallbackField(ins, err)}
	}

	return c.Dispatcher.Dispatch(child, ins)
}

// TokenAmountField returns an AmountV2 field for raw units of token. A token known to the
// registry is shown in its decimals with its symbol; an unknown token shows the raw integer
// with fallbackUnit.
func (c *Context) TokenAmountField(label, token string, raw *big.Int, fallbackUnit string) (payload.Field, error) {
	if raw == nil {
		return payload.Field{}, fmt.Errorf("%w: amount", ErrMissingData)
	}
	if amount, symbol, ok := c.Registry.FormatAmount(c.ChainID, token, raw); ok {
		return payload.NewAmountField(label, amount, symbol)
	}

	return payload.NewAmountField(label, raw.String(), fallbackUnit)
}
