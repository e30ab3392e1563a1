package cache

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// BaseFactory constructs a base cache for a namespace id.
type BaseFactory func(id string) Cache

// EvictionFactory wraps a cache with an eviction policy decorator.
type EvictionFactory func(delegate Cache) Cache

// Sized is implemented by eviction decorators whose entry bound is
// configurable.
type Sized interface {
	SetSize(size int)
}

// Builder assembles a namespace cache chain from declarative attributes.
// The default stack is a PerpetualCache wrapped in an LRU decorator; the
// remaining decorators are applied in the standard order scheduled →
// serialized → logging → synchronized → blocking.
type Builder struct {
	id            string
	base          BaseFactory
	eviction      EvictionFactory
	clearInterval time.Duration
	size          int
	readWrite     bool
	blocking      bool
	properties    map[string]any
	logger        *zap.Logger
}

// NewBuilder creates a cache builder for the namespace id.
func NewBuilder(id string) *Builder {
	return &Builder{id: id}
}

// Base sets the base cache factory. Nil keeps the perpetual default.
func (b *Builder) Base(factory BaseFactory) *Builder {
	b.base = factory
	return b
}

// Eviction sets the eviction decorator factory. Nil keeps the LRU default.
func (b *Builder) Eviction(factory EvictionFactory) *Builder {
	b.eviction = factory
	return b
}

// ClearInterval enables interval-based flushing.
func (b *Builder) ClearInterval(interval time.Duration) *Builder {
	b.clearInterval = interval
	return b
}

// Size bounds the eviction decorator.
func (b *Builder) Size(size int) *Builder {
	b.size = size
	return b
}

// ReadWrite enables copy-on-read semantics.
func (b *Builder) ReadWrite(readWrite bool) *Builder {
	b.readWrite = readWrite
	return b
}

// Blocking enables per-key miss serialization.
func (b *Builder) Blocking(blocking bool) *Builder {
	b.blocking = blocking
	return b
}

// Properties attaches the arbitrary property bag. Recognized entries
// ("size", "flushInterval", "timeout") are coerced from their string forms
// and override the corresponding explicit attributes when present.
func (b *Builder) Properties(props map[string]any) *Builder {
	b.properties = props
	return b
}

// Logger sets the logger used by the logging decorator.
func (b *Builder) Logger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build assembles the decorator chain.
func (b *Builder) Build() (Cache, error) {
	if b.id == "" {
		return nil, fmt.Errorf("cache requires an id")
	}
	if err := b.applyProperties(); err != nil {
		return nil, err
	}

	base := b.base
	if base == nil {
		base = func(id string) Cache { return NewPerpetualCache(id) }
	}
	eviction := b.eviction
	if eviction == nil {
		eviction = func(delegate Cache) Cache { return NewLRUCache(delegate) }
	}

	chain := eviction(base(b.id))
	if sized, ok := chain.(Sized); ok && b.size > 0 {
		sized.SetSize(b.size)
	}
	if b.clearInterval > 0 {
		scheduled := NewScheduledCache(chain)
		scheduled.SetClearInterval(b.clearInterval)
		chain = scheduled
	}
	if b.readWrite {
		chain = NewSerializedCache(chain)
	}
	chain = NewLoggingCache(chain, b.logger)
	chain = NewSynchronizedCache(chain)
	if b.blocking {
		blocking := NewBlockingCache(chain)
		if timeout, ok := b.properties["timeout"]; ok {
			d, err := cast.ToDurationE(timeout)
			if err != nil {
				return nil, fmt.Errorf("cache %s: invalid timeout property %q: %w", b.id, timeout, err)
			}
			blocking.SetTimeout(d)
		}
		chain = blocking
	}
	return chain, nil
}

func (b *Builder) applyProperties() error {
	for name, raw := range b.properties {
		switch name {
		case "size":
			size, err := cast.ToIntE(raw)
			if err != nil {
				return fmt.Errorf("cache %s: invalid size property %q: %w", b.id, raw, err)
			}
			b.size = size
		case "flushInterval":
			interval, err := cast.ToDurationE(raw)
			if err != nil {
				return fmt.Errorf("cache %s: invalid flushInterval property %q: %w", b.id, raw, err)
			}
			b.clearInterval = interval
		}
	}
	return nil
}
