// Package bridge implements the dispatch engine.
//
// An Engine resolves virtual type names through its namespace mapper,
// finds members by convention on registered native types and converts
// arguments and results with the marshaller. Every operation returns a
// promise: synchronous results arrive already resolved, native promises
// are chained, and futures or channels are drained on a bounded pool of
// worker goroutines.
//
// Properties map to GetX/IsX (no arguments) and SetX (one argument).
// Methods map to the exported method whose name is the virtual name with
// its first rune upper-cased and whose parameter count equals the number
// of arguments. Constructors and statics are registered explicitly on the
// native registry.
//
//	eng := bridge.New(app)
//	defer eng.Close()
//
//	eng.Mapper().Register("Demo", "example.com/demo")
//	native.Register[demo.Counter](eng.Types(), native.Constructor(demo.NewCounter))
//
//	inst, err := eng.CreateInstance(ctx, "Demo.Counter", value.EmptyArray).Wait(ctx)
package bridge
