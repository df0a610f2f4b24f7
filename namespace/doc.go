// Package namespace maps virtual type names used by the calling side to
// fully qualified Go type names and back.
//
// A virtual type name is "<namespace>.<Type>"; the namespace (everything up
// to the last dot) maps to a Go import path, giving "<import path>.<Type>".
// Mappings are unique in both directions.
//
// Five single-token placeholder names bypass namespace lookup:
//
//	<application>  the host application capability
//	<window>       the current top-level window capability
//	<uuid>         github.com/google/uuid.UUID
//	<uri>          net/url.URL
//	<date>         time.Time
package namespace
