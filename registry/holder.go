package registry

import (
	"math/big"
	"sync/atomic"
)

// Holder publishes registry snapshots for hot reload. A snapshot is frozen before it is
// published and is never mutated afterwards; readers that loaded the previous snapshot
// keep using it until they finish.
type Holder struct {
	current atomic.Pointer[Registry]
}

// NewHolder returns a Holder publishing r, or an empty registry when r is nil.
func NewHolder(r *Registry) *Holder {
	if r == nil {
		r = New()
	}

	h := &Holder{}
	h.current.Store(r.Freeze())

	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Registry {
	return h.current.Load()
}

// Swap freezes r, publishes it and returns the previous snapshot.
func (h *Holder) Swap(r *Registry) *Registry {
	return h.current.Swap(r.Freeze())
}

// Layered returns a Reader consulting each layer in order; the first layer that knows a key
// answers. Request scoped metadata is layered behind the shared registry, so it can add
// tokens but never relabel a shared one.
func Layered(layers ...Reader) Reader {
	return layered(layers)
}

type layered []Reader

func (l layered) Lookup(chainID, address string) (TokenMetadata, bool) {
	for _, r := range l {
		if md, ok := r.Lookup(chainID, address); ok {
			return md, true
		}
	}

	return TokenMetadata{}, false
}

func (l layered) FormatAmount(chainID, address string, raw *big.Int) (string, string, bool) {
	for _, r := range l {
		if amount, symbol, ok := r.FormatAmount(chainID, address, raw); ok {
			return amount, symbol, true
		}
	}

	return "", "", false
}

func (l layered) ContractType(chainID, address string) (string, bool) {
	for _, r := range l {
		if t, ok := r.ContractType(chainID, address); ok {
			return t, true
		}
	}

	return "", false
}
