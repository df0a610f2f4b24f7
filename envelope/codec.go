package envelope

import (
	"context"
	stderrors "errors"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/value"
)

// Envelope keys
const (
	KeyID     = "id"
	KeyAction = "action"
	KeyArgs   = "args"
	KeyResult = "result"
	KeyError  = "error"
	KeyEvent  = "event"
)

// Request is a decoded call envelope.
type Request struct {
	ID     value.Value
	Action string
	Args   []value.Value
}

// DecodeRequest parses a JSON call envelope.
func DecodeRequest(data []byte) (*Request, error) {
	v, err := value.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEnvelope, errors.KindInvalidInput, err, "malformed envelope")
	}
	return RequestFrom(v)
}

// RequestFrom reads a call envelope from an already parsed value.
func RequestFrom(v value.Value) (*Request, error) {
	if v.Kind() != value.KindObject {
		return nil, errors.InvalidInput(errors.PhaseEnvelope, "envelope must be an object")
	}
	action, err := v.Field(KeyAction).Str()
	if err != nil || action == "" {
		return nil, errors.InvalidInput(errors.PhaseEnvelope, "an action is required")
	}
	req := &Request{ID: v.Field(KeyID), Action: action}

	switch args := v.Field(KeyArgs); args.Kind() {
	case value.KindUndefined, value.KindNull:
	case value.KindArray:
		req.Args = make([]value.Value, args.Len())
		for i := range req.Args {
			req.Args[i] = args.Index(i)
		}
	default:
		return nil, errors.TypeMismatch([]string{KeyArgs}, args.Kind().String(), "array")
	}
	return req, nil
}

// Handle dispatches req and waits for its outcome, returning the reply
// envelope.
func (d *Dispatcher) Handle(ctx context.Context, req *Request) value.Value {
	v, err := d.Dispatch(ctx, req.Action, req.Args).Wait(ctx)
	if err != nil {
		return ErrorReply(req.ID, err)
	}
	return Reply(req.ID, v)
}

// HandleJSON decodes data, dispatches it and encodes the reply.
func (d *Dispatcher) HandleJSON(ctx context.Context, data []byte) []byte {
	req, err := DecodeRequest(data)
	var reply value.Value
	if err != nil {
		reply = ErrorReply(value.Undefined, err)
	} else {
		reply = d.Handle(ctx, req)
	}
	out, err := value.Marshal(reply)
	if err != nil {
		out, _ = value.Marshal(ErrorReply(value.Undefined, err))
	}
	return out
}

// Reply builds a success envelope.
func Reply(id, result value.Value) value.Value {
	o := value.NewObject()
	if id != nil && id.Kind() != value.KindUndefined {
		_ = o.Put(KeyID, id)
	}
	if result == nil || result.Kind() == value.KindUndefined {
		result = value.Null
	}
	_ = o.Put(KeyResult, result)
	return o
}

// ErrorReply builds a failure envelope. Errors outside the taxonomy are
// reported as invocation failures.
func ErrorReply(id value.Value, err error) value.Value {
	phase, kind := string(errors.PhaseInvoke), string(errors.KindInvocation)
	var e *errors.Error
	if stderrors.As(err, &e) {
		phase, kind = string(e.Phase), string(e.Kind)
	}
	o := value.NewObject()
	if id != nil && id.Kind() != value.KindUndefined {
		_ = o.Put(KeyID, id)
	}
	_ = o.Put(KeyError, value.ObjectOf(
		"phase", value.FromString(phase),
		"kind", value.FromString(kind),
		"message", value.FromString(err.Error()),
	))
	return o
}

// EventEnvelope builds the envelope for an event delivered to token.
func EventEnvelope(token string, v value.Value) value.Value {
	return value.ObjectOf(KeyEvent, value.FromString(token), KeyResult, v)
}
