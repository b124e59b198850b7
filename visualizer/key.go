package visualizer

import "strings"

// Any matches every value of a key component.
const Any = "*"

// Key identifies the instructions a visualizer handles. Move chains use the
// (package, module, function) triple; account chains put the program id or contract in
// Package and a hex discriminator or selector in Function, leaving Module empty.
type Key struct {
	Package  string
	Module   string
	Function string
}

// NewKey returns a key for the given triple.
func NewKey(pkg, module, function string) Key {
	return Key{Package: pkg, Module: module, Function: function}
}

// ProgramKey returns a key for an account model program and discriminator.
func ProgramKey(program, discriminator string) Key {
	return Key{Package: program, Function: discriminator}
}

func (k Key) String() string {
	return strings.Join([]string{k.Package, k.Module, k.Function}, "::")
}

// candidates lists the keys that may match k, most specific first: exact, then the same
// package with wildcards, then any package.
func (k Key) candidates() []Key {
	out := make([]Key, 0, 7)
	seen := make(map[Key]bool, 7)
	for _, pkg := range []string{k.Package, Any} {
		for _, mod := range []string{k.Module, Any} {
			for _, fn := range []string{k.Function, Any} {
				c := Key{Package: pkg, Module: mod, Function: fn}
				if c == (Key{Any, Any, Any}) || seen[c] {
					continue
				}
				seen[c] = true
				out = append(out, c)
			}
		}
	}

	return out
}
