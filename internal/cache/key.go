package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// keySeparator delimits the serialized segments of a composite key.
const keySeparator = "::"

// Key is a value-equal composite cache key. Two keys built from the same
// statement id, parameter values, row bounds and environment compare equal
// regardless of the identity of the objects they were built from, so Key is
// usable directly as a map key.
type Key struct {
	digest    uint64
	canonical string
}

// String returns a short printable form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%x:%s", k.digest, k.canonical)
}

// KeyBuilder accumulates update parts into a Key. Parts are serialized
// deterministically and folded into an xxhash digest.
type KeyBuilder struct {
	parts []string
}

// NewKeyBuilder creates an empty KeyBuilder.
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{}
}

// Update appends one value to the key under construction.
func (b *KeyBuilder) Update(v any) *KeyBuilder {
	b.parts = append(b.parts, serializeKeyPart(v))
	return b
}

// Build finalizes the accumulated parts into a Key.
func (b *KeyBuilder) Build() Key {
	canonical := strings.Join(b.parts, keySeparator)
	return Key{
		digest:    xxhash.Sum64String(canonical),
		canonical: canonical,
	}
}

// StatementKey builds the standard query key: statement id, ordered
// parameter values, row bounds and the environment discriminator.
func StatementKey(statementID string, params []any, offset, limit int, environment string) Key {
	b := NewKeyBuilder().
		Update(statementID).
		Update(offset).
		Update(limit)
	for _, p := range params {
		b.Update(p)
	}
	b.Update(environment)
	return b.Build()
}

// serializeKeyPart produces a stable textual form for a key segment. Maps are
// rendered with sorted keys and pointers are dereferenced so that logically
// identical values serialize identically across runs.
func serializeKeyPart(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil"
		}
		return serializeKeyPart(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "slice:nil"
		}
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, serializeKeyPart(rv.Index(i).Interface()))
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		entries := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, serializeKeyPart(iter.Key().Interface())+"="+serializeKeyPart(iter.Value().Interface()))
		}
		sort.Strings(entries)
		return "{" + strings.Join(entries, ",") + "}"
	case reflect.Struct:
		rt := rv.Type()
		parts := make([]string, 0, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			if rt.Field(i).PkgPath != "" {
				continue
			}
			parts = append(parts, rt.Field(i).Name+"="+serializeKeyPart(rv.Field(i).Interface()))
		}
		return rt.String() + "{" + strings.Join(parts, ",") + "}"
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}
