// Package registry maps (chain, address) pairs to token and contract metadata. A Registry
// is populated during startup or a metadata load and is read-only afterwards, so lookups
// need no locking and may be shared across concurrent decodes.
package registry

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math/big"
	"slices"
)

var (
	// ErrRegistryConflict is returned when a key is registered again with different metadata.
	ErrRegistryConflict = errors.New("registry conflict")

	// ErrFrozen is returned when a frozen registry is mutated.
	ErrFrozen = errors.New("registry is frozen")
)

// Reader is the read-only view of token and contract metadata used while decoding.
type Reader interface {
	// Lookup returns the metadata registered for the token at address on chainID.
	Lookup(chainID, address string) (TokenMetadata, bool)

	// FormatAmount renders raw in the token's decimals and returns it with the symbol.
	FormatAmount(chainID, address string, raw *big.Int) (amount string, symbol string, ok bool)

	// ContractType returns the registered contract type of address on chainID.
	ContractType(chainID, address string) (string, bool)
}

var _ Reader = &Registry{}

// Registry stores token metadata and contract types.
type Registry struct {
	tokens    map[tokenKey]TokenMetadata
	contracts map[tokenKey]string
	frozen    bool
}

// New returns an empty, mutable Registry.
func New() *Registry {
	return &Registry{
		tokens:    make(map[tokenKey]TokenMetadata),
		contracts: make(map[tokenKey]string),
	}
}

// RegisterToken adds metadata for its contract address on chainID. Registering identical
// metadata twice is a no-op; registering different metadata under an existing key fails
// and leaves the registry unchanged.
func (r *Registry) RegisterToken(chainID string, md TokenMetadata) error {
	if r.frozen {
		return ErrFrozen
	}

	key, md, err := prepareToken(chainID, md)
	if err != nil {
		return err
	}
	if err := r.checkConflict(key, md); err != nil {
		return err
	}
	r.tokens[key] = md

	return nil
}

func prepareToken(chainID string, md TokenMetadata) (tokenKey, TokenMetadata, error) {
	if err := md.Validate(); err != nil {
		return tokenKey{}, md, err
	}
	key := newTokenKey(chainID, md.ContractAddress)
	md.ContractAddress = key.address

	return key, md, nil
}

func (r *Registry) checkConflict(key tokenKey, md TokenMetadata) error {
	existing, ok := r.tokens[key]
	if ok && existing != md {
		return fmt.Errorf("%w: %s already registered as %s, refusing %s", ErrRegistryConflict, key, existing.Symbol, md.Symbol)
	}

	return nil
}

// CheckConflicts fails with ErrRegistryConflict when base knows any token of r with
// different metadata. Tokens unknown to base are not conflicts.
func (r *Registry) CheckConflicts(base Reader) error {
	var errs []error
	for _, key := range r.Tokens() {
		md := r.tokens[key.(tokenKey)]
		existing, ok := base.Lookup(key.ChainID(), key.Address())
		if ok && existing != md {
			errs = append(errs, fmt.Errorf("%w: %s already registered as %s, refusing %s",
				ErrRegistryConflict, key, existing.Symbol, md.Symbol))
		}
	}

	return errors.Join(errs...)
}

// Lookup implements Reader.
func (r *Registry) Lookup(chainID, address string) (TokenMetadata, bool) {
	md, ok := r.tokens[newTokenKey(chainID, address)]

	return md, ok
}

// FormatAmount implements Reader. Formatting is fixed point and never goes through floats.
func (r *Registry) FormatAmount(chainID, address string, raw *big.Int) (string, string, bool) {
	md, ok := r.Lookup(chainID, address)
	if !ok || raw == nil {
		return "", "", false
	}

	return FormatUnits(raw, md.Decimals), md.Symbol, true
}

// RegisterContract records contractType for each address on chainID.
func (r *Registry) RegisterContract(chainID, contractType string, addresses ...string) error {
	if r.frozen {
		return ErrFrozen
	}

	for _, addr := range addresses {
		key := newTokenKey(chainID, addr)
		if existing, ok := r.contracts[key]; ok && existing != contractType {
			return fmt.Errorf("%w: %s already registered as %s, refusing %s", ErrRegistryConflict, key, existing, contractType)
		}
	}
	for _, addr := range addresses {
		r.contracts[newTokenKey(chainID, addr)] = contractType
	}

	return nil
}

// ContractType implements Reader.
func (r *Registry) ContractType(chainID, address string) (string, bool) {
	t, ok := r.contracts[newTokenKey(chainID, address)]

	return t, ok
}

// Tokens returns every registered key in sorted order.
func (r *Registry) Tokens() []TokenKey {
	keys := slices.SortedFunc(maps.Keys(r.tokens), func(a, b tokenKey) int {
		if a.chainID != b.chainID {
			return cmp.Compare(a.chainID, b.chainID)
		}

		return cmp.Compare(a.address, b.address)
	})

	out := make([]TokenKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, k)
	}

	return out
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int { return len(r.tokens) }

// Freeze ends the mutation phase. Every later Register call fails with ErrFrozen.
func (r *Registry) Freeze() *Registry {
	r.frozen = true

	return r
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool { return r.frozen }

// Clone returns an unfrozen copy of r.
func (r *Registry) Clone() *Registry {
	return &Registry{
		tokens:    maps.Clone(r.tokens),
		contracts: maps.Clone(r.contracts),
	}
}
