// Package envelope decodes action-tagged calls and routes them to a
// bridge.Engine.
//
// A call is an action name plus positional arguments:
//
//	getStaticProperty    (type, property)
//	setStaticProperty    (type, property, value)
//	invokeStaticMethod   (type, method, args)
//	addStaticEventListener    (type, event)           -> token
//	removeStaticEventListener (type, event, token)
//	createInstance       (type, args)
//	releaseInstance      (instance)
//	getProperty          (instance, property)
//	setProperty          (instance, property, value)
//	invokeMethod         (instance, method, args)
//	addEventListener     (instance, event)            -> token
//	removeEventListener  (instance, event, token)
//
// Add actions resolve to a registration token. Events raised for that
// registration are passed to the dispatcher's Sink with the token.
//
// The JSON form is {"id": ..., "action": "...", "args": [...]}; the reply
// carries the same id and either "result" or "error".
package envelope
