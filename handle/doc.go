// Package handle provides per-type handle tables that give native objects a
// stable integer identity across the bridge boundary.
//
// A Table holds objects of one native type. Acquiring the same object twice
// returns the same handle; releasing it frees the slot. A handle packs a slot
// index with a generation counter, so a released handle never resolves to an
// object that later reuses the slot:
//
//	handle = generation<<32 | (slot + 1)
//
// Generations are limited to 21 bits, keeping every handle exactly
// representable as a JSON number. Handle 0 is always invalid and the first
// handle of a fresh table is 1.
//
// Object identity is pointer identity for pointers, maps, channels, funcs
// and slices, and value equality for other comparable values. Objects that
// are neither get a fresh handle on every Acquire.
//
// Observers subscribed to a Table or a Registry receive EventCreated and
// EventReleased notifications.
package handle
