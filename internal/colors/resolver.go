package colors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrUnresolved is returned by a Resolver that does not know a reference.
var ErrUnresolved = errors.New("unresolved color reference")

// maxReferenceDepth bounds chains of references pointing at references.
const maxReferenceDepth = 8

// Resolver turns an indirect color reference (a theme variable or named
// environment color) into a concrete color string.
type Resolver interface {
	Resolve(reference string) (string, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(reference string) (string, error)

// Resolve calls f(reference).
func (f ResolverFunc) Resolve(reference string) (string, error) {
	return f(reference)
}

// Resolve converts any color string into a Value without ever failing.
// References go through r first; when r cannot resolve them the raw string
// is parsed instead, and when that fails too the result is NeutralGray.
// Bare names that are not CSS colors are also offered to r, so theme tables
// can define plain names like "warning". The boolean is false whenever a
// fallback was taken.
func Resolve(r Resolver, s string) (Value, bool) {
	if IsReference(s) {
		if r != nil {
			if resolved, err := r.Resolve(s); err == nil {
				if v, err := Parse(resolved); err == nil {
					return v, true
				}
			}
		}
		if v, err := Parse(s); err == nil {
			return v, false
		}
		return NeutralGray, false
	}

	v, err := Parse(s)
	if err == nil {
		return v, true
	}
	if r != nil && errors.Is(err, ErrUnrecognizedFormat) {
		if resolved, rerr := r.Resolve(strings.TrimSpace(s)); rerr == nil {
			if v, perr := Parse(resolved); perr == nil {
				return v, true
			}
		}
	}
	return NeutralGray, false
}

// Theme is a static theme table usable wherever no live rendering context
// exists. Keys are variable names with or without the leading "--".
type Theme map[string]string

// Resolve looks up var(--name), var(--name, fallback), --name or name.
// Values that are themselves references are followed up to a fixed depth.
func (t Theme) Resolve(reference string) (string, error) {
	ref := reference
	for depth := 0; depth < maxReferenceDepth; depth++ {
		name, fallback := splitReference(ref)
		value, ok := t.lookup(name)
		if !ok {
			if fallback == "" {
				return "", fmt.Errorf("%w: %q", ErrUnresolved, reference)
			}
			value = fallback
		}
		if !IsReference(value) {
			return value, nil
		}
		ref = value
	}
	return "", fmt.Errorf("%w: %q exceeds reference depth", ErrUnresolved, reference)
}

func (t Theme) lookup(name string) (string, bool) {
	if v, ok := t[name]; ok {
		return v, true
	}
	if v, ok := t[strings.TrimPrefix(name, "--")]; ok {
		return v, true
	}
	if v, ok := t["--"+name]; ok {
		return v, true
	}
	return "", false
}

// splitReference extracts the variable name and optional fallback from
// "var(--name, fallback)". Other forms are returned trimmed with no fallback.
func splitReference(ref string) (name, fallback string) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "var(") || !strings.HasSuffix(ref, ")") {
		return ref, ""
	}
	inner := ref[4 : len(ref)-1]
	if idx := strings.IndexByte(inner, ','); idx >= 0 {
		return strings.TrimSpace(inner[:idx]), strings.TrimSpace(inner[idx+1:])
	}
	return strings.TrimSpace(inner), ""
}

// DefaultCacheTTL is how long CachedResolver keeps a resolved reference.
const DefaultCacheTTL = 30 * time.Second

// CachedResolver memoizes another Resolver. Only successful resolutions are
// cached, so a theme that later defines a missing variable is picked up.
type CachedResolver struct {
	next  Resolver
	cache *gocache.Cache
}

// NewCachedResolver wraps next. A non-positive ttl uses DefaultCacheTTL.
func NewCachedResolver(next Resolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Resolve returns the cached resolution of reference or asks the wrapped
// Resolver.
func (c *CachedResolver) Resolve(reference string) (string, error) {
	if v, found := c.cache.Get(reference); found {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	if c.next == nil {
		return "", fmt.Errorf("%w: %q", ErrUnresolved, reference)
	}
	s, err := c.next.Resolve(reference)
	if err != nil {
		return "", err
	}
	c.cache.Set(reference, s, gocache.DefaultExpiration)
	return s, nil
}

// Flush drops every cached resolution, e.g. after a theme change.
func (c *CachedResolver) Flush() {
	c.cache.Flush()
}

// Len returns the number of cached entries.
func (c *CachedResolver) Len() int {
	return c.cache.ItemCount()
}
