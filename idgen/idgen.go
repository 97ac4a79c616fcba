// Package idgen produces identifiers for recorded actions.
package idgen

import (
	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns time-sortable RFC 9562 v7 UUIDs, so ids order like the
// actions they name.
func UUIDv7() Generator {
	return func() string { return uuid.Must(uuid.NewV7()).String() }
}

// Prefixed prepends prefix to every id of gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string { return prefix + gen() }
}

// Default is the generator used when none is configured.
var Default Generator = UUIDv7()
