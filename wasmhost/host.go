// Package wasmhost exposes a bridge engine to WebAssembly guests as the
// wazero host module "hostbridge".
//
// Guests call
//
//	call(ptr, len i32) i64   // JSON call envelope in, JSON reply out
//	poll_event() i64         // next queued event envelope, 0 if none
//
// Replies are written into guest memory through the guest's exported
// allocator (cabi_realloc, alloc or malloc) and returned packed as
// ptr<<32 | len. A zero result means nothing was written.
package wasmhost

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/envelope"
	"github.com/wippyai/hostbridge/value"
)

// ModuleName is the import module guests link against.
const ModuleName = "hostbridge"

// DefaultQueueLimit caps undelivered events per host.
const DefaultQueueLimit = 1024

var allocatorNames = []string{"cabi_realloc", "alloc", "malloc"}

// Host routes guest calls to a dispatcher and queues events for polling.
type Host struct {
	disp  *envelope.Dispatcher
	queue [][]byte
	limit int
	mu    sync.Mutex
}

// New creates a host for eng.
func New(eng *bridge.Engine) *Host {
	h := &Host{limit: DefaultQueueLimit}
	h.disp = envelope.New(eng, h.enqueue)
	return h
}

// Dispatcher returns the dispatcher guest calls are routed to.
func (h *Host) Dispatcher() *envelope.Dispatcher {
	return h.disp
}

// Pending returns the number of queued events.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// Instantiate registers the host module in rt.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	i32, i64 := api.ValueTypeI32, api.ValueTypeI64
	return rt.NewHostModuleBuilder(ModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.call), []api.ValueType{i32, i32}, []api.ValueType{i64}).
		WithParameterNames("ptr", "len").
		Export("call").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.pollEvent), nil, []api.ValueType{i64}).
		Export("poll_event").
		Instantiate(ctx)
}

func (h *Host) enqueue(token string, v value.Value) {
	data, err := value.Marshal(envelope.EventEnvelope(token, v))
	if err != nil {
		Logger().Warn("failed to encode event", zap.String("token", token), zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) >= h.limit {
		Logger().Warn("event queue full, dropping oldest", zap.Int("limit", h.limit))
		h.queue = h.queue[1:]
	}
	h.queue = append(h.queue, data)
}

func (h *Host) dequeue() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.queue) == 0 {
		return nil
	}
	data := h.queue[0]
	h.queue = h.queue[1:]
	return data
}

func (h *Host) call(ctx context.Context, mod api.Module, stack []uint64) {
	ptr, size := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	stack[0] = 0

	mem := mod.Memory()
	if mem == nil {
		Logger().Error("guest has no memory")
		return
	}
	req, ok := mem.Read(ptr, size)
	if !ok {
		Logger().Error("request out of range", zap.Uint32("ptr", ptr), zap.Uint32("len", size))
		return
	}
	// the guest may reuse its buffer once the reply is written
	req = append([]byte(nil), req...)

	reply := h.disp.HandleJSON(ctx, req)
	stack[0] = write(ctx, mod, reply)
}

func (h *Host) pollEvent(ctx context.Context, mod api.Module, stack []uint64) {
	stack[0] = 0
	data := h.dequeue()
	if data == nil {
		return
	}
	stack[0] = write(ctx, mod, data)
}

// write copies data into guest memory and returns ptr<<32 | len.
func write(ctx context.Context, mod api.Module, data []byte) uint64 {
	mem := mod.Memory()
	if mem == nil {
		Logger().Error("guest has no memory")
		return 0
	}
	ptr, err := allocate(ctx, mod, uint32(len(data)))
	if err != nil {
		Logger().Error("guest allocation failed", zap.Int("size", len(data)), zap.Error(err))
		return 0
	}
	if !mem.Write(ptr, data) {
		Logger().Error("reply out of range", zap.Uint32("ptr", ptr), zap.Int("len", len(data)))
		return 0
	}
	return uint64(ptr)<<32 | uint64(len(data))
}

func allocate(ctx context.Context, mod api.Module, size uint32) (uint32, error) {
	for _, name := range allocatorNames {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			continue
		}
		var params []uint64
		if name == "cabi_realloc" {
			params = []uint64{0, 0, 1, uint64(size)}
		} else {
			params = []uint64{uint64(size)}
		}
		out, err := fn.Call(ctx, params...)
		if err != nil {
			return 0, err
		}
		if len(out) == 0 {
			return 0, errNoResult
		}
		return api.DecodeU32(out[0]), nil
	}
	return 0, errNoAllocator
}
