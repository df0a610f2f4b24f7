// Package native is the capability registry through which the bridge reaches
// Go types by name.
//
// Go cannot load a type from its name, so every type the calling side may
// name must be registered with Register. A registered Type carries its
// constructors and static members (plain functions) in registration order;
// instance methods come from the receiver's method set and are cached per
// receiver type.
//
//	native.Register[Counter](reg,
//		native.Constructor(NewCounter),
//		native.Static("GetDefault", DefaultCounter),
//	)
//
// Members are resolved by name and arity only. When several constructors or
// statics share a name and arity, the first registered wins. A leading
// context.Context parameter is supplied by the caller of Member.Call and is
// not counted toward arity. A trailing error result is the member's failure
// signal; it and any panic surface as errors.KindInvocation.
//
// Types reached only through returned objects are registered lazily by
// Ensure, with methods but no constructors or statics.
package native
