// Package marshal converts between value.Value and native Go values.
//
// Native objects leave the bridge in one of three shapes:
//
//	scalars, slices and string-keyed maps   plain JSON values
//	by-value types and placeholders         {"type": T, ...properties} or {"type": T, "value": v}
//	everything else                         {"type": T, "handle": n}
//
// T is the virtual type name. Handles come from the per-type tables of a
// handle.Registry, so the same object always marshals to the same handle
// until it is released.
//
// By-value types are registered with RegisterByValue by simple or fully
// qualified name. Their properties are the exported fields plus every
// zero-argument GetX/IsX method, named in lower camel case. Converting a
// by-value object back builds a new instance and applies SetX methods or
// exported fields for every key but "type" and "handle".
//
// The placeholders map to time.Time (epoch milliseconds), uuid.UUID
// (upper-case string) and url.URL (string). Objects typed <application> or
// <window> resolve through the hostbridge.ApplicationContext.
package marshal
