package wasmhost

import "github.com/wippyai/hostbridge/errors"

var (
	errNoAllocator = errors.NotFound(errors.PhaseEnvelope, "guest allocator", "cabi_realloc|alloc|malloc")
	errNoResult    = errors.InvalidInput(errors.PhaseEnvelope, "guest allocator returned no result")
)
