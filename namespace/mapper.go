package namespace

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/wippyai/hostbridge/errors"
)

// Placeholder virtual type names
const (
	Application = "<application>"
	Window      = "<window>"
	UUID        = "<uuid>"
	URI         = "<uri>"
	Date        = "<date>"
)

// Native names the placeholders resolve to. Application and window have no
// Go type of their own and keep their placeholder name.
const (
	NativeUUID = "github.com/google/uuid.UUID"
	NativeURI  = "net/url.URL"
	NativeDate = "time.Time"
)

var placeholders = map[string]string{
	Application: Application,
	Window:      Window,
	UUID:        NativeUUID,
	URI:         NativeURI,
	Date:        NativeDate,
}

var nativePlaceholders = map[string]string{
	Application: Application,
	Window:      Window,
	NativeUUID:  UUID,
	NativeURI:   URI,
	NativeDate:  Date,
}

// IsPlaceholder reports whether name is one of the five placeholder names.
func IsPlaceholder(name string) bool {
	_, ok := placeholders[name]
	return ok
}

// Mapper is a bidirectional namespace <-> package registry.
type Mapper struct {
	toPackage   map[string]string
	toNamespace map[string]string
	mu          sync.RWMutex
}

// NewMapper creates an empty mapper.
func NewMapper() *Mapper {
	return &Mapper{
		toPackage:   make(map[string]string),
		toNamespace: make(map[string]string),
	}
}

// Register maps namespace to pkg. Registering the same pair twice is a
// no-op; mapping either side to something else is a conflict.
func (m *Mapper) Register(namespace, pkg string) error {
	if namespace == "" || pkg == "" {
		return errors.InvalidInput(errors.PhaseConfig, "namespace and package must be non-empty")
	}
	if IsPlaceholder(namespace) {
		return errors.New(errors.PhaseConfig, errors.KindConflict).
			Detail("%q is a reserved placeholder", namespace).
			Build()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.toPackage[namespace]; ok {
		if existing == pkg {
			return nil
		}
		return errors.Conflict("namespace", namespace, existing)
	}
	if existing, ok := m.toNamespace[pkg]; ok {
		return errors.Conflict("package", pkg, existing)
	}

	m.toPackage[namespace] = pkg
	m.toNamespace[pkg] = namespace
	return nil
}

// Package returns the Go import path registered for namespace.
func (m *Mapper) Package(namespace string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pkg, ok := m.toPackage[namespace]
	if !ok {
		return "", errors.Unregistered("namespace", namespace)
	}
	return pkg, nil
}

// Namespace returns the namespace registered for the Go import path pkg.
func (m *Mapper) Namespace(pkg string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.toNamespace[pkg]
	if !ok {
		return "", errors.Unregistered("package", pkg)
	}
	return ns, nil
}

// Mappings returns a copy of the namespace -> package table.
func (m *Mapper) Mappings() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.toPackage))
	for k, v := range m.toPackage {
		out[k] = v
	}
	return out
}

// ResolveType converts a virtual type name to a fully qualified Go type name.
func (m *Mapper) ResolveType(virtual string) (string, error) {
	dot := strings.LastIndexByte(virtual, '.')
	if dot < 0 {
		if native, ok := placeholders[virtual]; ok {
			return native, nil
		}
		return virtual, nil
	}
	pkg, err := m.Package(virtual[:dot])
	if err != nil {
		return "", err
	}
	return pkg + virtual[dot:], nil
}

// VirtualType converts a fully qualified Go type name to its virtual name.
func (m *Mapper) VirtualType(native string) (string, error) {
	if virtual, ok := nativePlaceholders[native]; ok {
		return virtual, nil
	}
	dot := strings.LastIndexByte(native, '.')
	if dot < 0 {
		return native, nil
	}
	ns, err := m.Namespace(native[:dot])
	if err != nil {
		return "", err
	}
	return ns + native[dot:], nil
}

// ResolveMember converts a virtual member name to the Go (exported) name.
func ResolveMember(virtual string) string {
	return foldFirst(virtual, unicode.ToUpper)
}

// VirtualMember converts a Go member name to the virtual camelCase name.
func VirtualMember(native string) string {
	return foldFirst(native, unicode.ToLower)
}

func foldFirst(s string, fold func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	f := fold(r)
	if f == r {
		return s
	}
	return string(f) + s[size:]
}

// SimpleName returns the part of a qualified type name after the last dot.
func SimpleName(name string) string {
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		return name[dot+1:]
	}
	return name
}
