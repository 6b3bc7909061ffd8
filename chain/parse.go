// Package chain turns a dotted property path into an ordered link list
// and maintains a live, self-healing subscription tree over it.
package chain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// ErrBadPath reports a path that is not a plain dotted sequence of
// identifiers. Indexers, calls and arbitrary expressions are rejected
// at construction time, never at activation.
var ErrBadPath = errors.New("chain: unsupported path shape")

// Link is one hop of a chain: a single property access. Declaring and
// Value carry the statically known types; Value is nil when the hop's
// type can only be discovered from a live instance.
type Link struct {
	Property  string
	Declaring reflect.Type
	Value     reflect.Type
}

// Options are fixed for the lifetime of a chain.
type Options struct {
	// SkipInitial withholds the value computed at subscription time.
	SkipInitial bool
	// Distinct suppresses consecutive equal emissions.
	Distinct bool
	// BeforeChange emits the value observed just before a mutation
	// commits, where the object supports pre-mutation notification.
	BeforeChange bool
}

// Chain is an immutable parsed path plus options. One chain may back
// any number of concurrent activations against different roots.
type Chain struct {
	Root  reflect.Type
	Links []Link
	opts  Options
}

func (c *Chain) Options() Options {
	return c.opts
}

// Path reassembles the dotted path.
func (c *Chain) Path() string {
	parts := make([]string, len(c.Links))
	for i, l := range c.Links {
		parts[i] = l.Property
	}
	return strings.Join(parts, ".")
}

type parseKey struct {
	root reflect.Type
	hash uint64
}

type parseEntry struct {
	path  string
	links []Link
	err   error
}

// Decomposition is pure, so results are memoized process-wide. The key
// hashes the path to keep the map small; the stored path guards against
// hash collisions.
var (
	parseMu    sync.RWMutex
	parseCache = map[parseKey]*parseEntry{}
)

// Parse decomposes path against the root type. The link list for a
// (root type, path) pair is computed once and cached; only the options
// vary per call site.
func Parse(root reflect.Type, path string, opts Options) (*Chain, error) {
	key := parseKey{root: root, hash: xxhash.Sum64String(path)}

	parseMu.RLock()
	e, ok := parseCache[key]
	parseMu.RUnlock()
	if ok && e.path == path {
		if e.err != nil {
			return nil, e.err
		}
		return &Chain{Root: root, Links: e.links, opts: opts}, nil
	}

	links, err := decompose(root, path)

	parseMu.Lock()
	parseCache[key] = &parseEntry{path: path, links: links, err: err}
	parseMu.Unlock()

	if err != nil {
		return nil, err
	}
	return &Chain{Root: root, Links: links, opts: opts}, nil
}

func decompose(root reflect.Type, path string) ([]Link, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrBadPath)
	}
	parts := strings.Split(path, ".")
	links := make([]Link, 0, len(parts))
	cur := root
	for _, name := range parts {
		if !isIdentifier(name) {
			return nil, fmt.Errorf("%w: %q is not a property name", ErrBadPath, name)
		}
		l := Link{Property: name, Declaring: cur}
		if cur != nil {
			l.Value = staticValueType(cur, name)
		}
		links = append(links, l)
		cur = l.Value
	}
	return links, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// staticValueType resolves the hop's type from static information
// alone. A nil result is not an error: interface-typed hops only reveal
// their concrete type once an instance is attached.
func staticValueType(t reflect.Type, property string) reflect.Type {
	elem := t
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() == reflect.Struct {
		if f, ok := elem.FieldByName(property); ok && f.IsExported() {
			return f.Type
		}
	}
	if m, ok := t.MethodByName(property); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		return m.Type.Out(0)
	}
	return nil
}
