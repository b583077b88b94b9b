// Package resolve maps class names to decoded class models, consulting a
// primary source and then a fallback reference source, memoized per run.
package resolve

import (
	"fmt"

	"classmend/internal/classfile"
)

// Source supplies raw class bytes by internal name. found=false is the
// normal "this source does not have it" outcome, not an error.
type Source interface {
	ReadClass(name string) (data []byte, found bool, err error)
}

// Resolver memoizes name -> model lookups for one pipeline run. Misses are
// memoized too: a class outside both sources stays unresolved for the whole
// run. Not safe for concurrent use; a run is single-threaded.
type Resolver struct {
	primary  Source
	fallback Source
	cache    map[string]*classfile.Class
}

// New builds a resolver over a primary source and an optional fallback
// (may be nil).
func New(primary, fallback Source) *Resolver {
	return &Resolver{
		primary:  primary,
		fallback: fallback,
		cache:    make(map[string]*classfile.Class),
	}
}

// Resolve returns the model for a class name, or (nil, nil) when neither
// source has it. Callers treat nil as "stop traversal here". Decode
// failures propagate; a class that exists but cannot be decoded is fatal
// to the run.
func (r *Resolver) Resolve(name string) (*classfile.Class, error) {
	if c, ok := r.cache[name]; ok {
		return c, nil
	}
	c, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	r.cache[name] = c
	return c, nil
}

func (r *Resolver) lookup(name string) (*classfile.Class, error) {
	sources := []Source{r.primary, r.fallback}
	for _, src := range sources {
		if src == nil {
			continue
		}
		data, found, err := src.ReadClass(name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		if !found {
			continue
		}
		c, err := classfile.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		return c, nil
	}
	return nil, nil
}
