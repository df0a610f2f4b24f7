// Package hostbridge exposes native Go objects to a dynamically typed caller
// (a script host, a WebAssembly guest, a JSON-lines client) by name.
//
// Callers address types by virtual names such as "Test.TestMethods" and
// members by camelCase names. Objects cross the boundary either by handle,
// as {"type": ..., "handle": n}, or by value, as a plain object of their
// getter values.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	hostbridge/          Root package with the ApplicationContext and ResultHandler interfaces
//	├── value/           Dynamic value model and JSON codec
//	├── namespace/       Virtual namespace <-> Go package mapping
//	├── native/          Reflection-based type registry and member lookup
//	├── handle/          Per-type handle tables with generation checks
//	├── marshal/         Conversion between values and native objects
//	├── promise/         Single-assignment promises with continuations
//	├── event/           Listener shapes, event registrations and delivery
//	├── bridge/          The twelve operations, async result draining
//	├── envelope/        Action dispatch, listener tokens, JSON envelopes
//	├── config/          YAML configuration
//	├── wasmhost/        wazero host module exposing the envelope to guests
//	├── testbed/         Fixture types exercising every feature end to end
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Register a type and call it:
//
//	eng := bridge.New(nil)
//	defer eng.Close()
//
//	eng.Mapper().Register("Example", "github.com/acme/example")
//	native.Register[example.Host](eng.Types())
//
//	d := envelope.New(eng, nil)
//	reply := d.HandleJSON(ctx, []byte(`{"id":1,"action":"createInstance","args":["Example.Host",[]]}`))
//	fmt.Println(string(reply)) // {"id":1,"result":{"type":"Example.Host","handle":...}}
//
// # Placeholder Types
//
// Five reserved virtual names stand for platform values:
//
//   - <application> and <window>: objects supplied by the ApplicationContext
//   - <uuid>: github.com/google/uuid.UUID, as an upper-case string
//   - <uri>: net/url.URL, as a string
//   - <date>: time.Time, as Unix milliseconds
//
// # Asynchronous Results
//
// Methods may return a promise.Promise, a promise.Future or a receive-only
// channel. The bridge settles the caller's promise when the result is
// available; futures and channels are drained on a bounded worker pool.
//
// # Thread Safety
//
// Engine, Dispatcher and the registries are safe for concurrent use. Native
// objects are called from the dispatching goroutine and are not locked by
// the bridge.
package hostbridge
