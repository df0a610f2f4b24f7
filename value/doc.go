// Package value implements the JSON-shaped value model exchanged with the
// dynamic calling environment.
//
// A Value is one of Undefined, Null, Boolean, Number, String, Object or Array.
// The singletons (Undefined, Null, True, False, Zero, EmptyString, EmptyObject,
// EmptyArray) are immutable and shared. NewObject and NewArray return mutable
// containers; Freeze turns them immutable. Mutating an immutable value returns
// an error matching errors.ErrImmutable, and a kind-specific accessor called on
// the wrong kind returns a PhaseState/KindWrongKind error.
//
// Missing object keys and out-of-range array indexes read as Undefined.
//
// FromAny wraps decoded JSON (map[string]any, []any) without copying, so
// values received from an outer JSON layer can be used directly.
// Values are not safe for concurrent mutation.
package value
