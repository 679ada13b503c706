package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soypat/mould/engine"
	"github.com/soypat/mould/kernel"
	"github.com/soypat/mould/mesh"
	"github.com/soypat/mould/profile"
)

// Command names a call across the execution boundary.
type Command string

const (
	CmdInit          Command = "init"
	CmdRevolve       Command = "revolve"
	CmdGenerateMould Command = "generateMould"
	CmdHeapSize      Command = "heapSize"
	CmdMemoryTest    Command = "memoryTest"
)

// Call is one of InitCall, RevolveCall, GenerateCall, HeapSizeCall and
// MemoryTestCall.
type Call interface {
	Command() Command
	isCall()
}

// InitCall starts the execution context. It is implied by every other call.
type InitCall struct{}

// RevolveCall meshes the unscaled profile for instant preview.
type RevolveCall struct {
	Profile profile.Profile `json:"profile"`
	Quality mesh.Quality    `json:"quality"`
}

// GenerateCall generates the mould parts. GenerationID is assigned by the
// bridge and ignored on input.
type GenerateCall struct {
	engine.Request
}

// HeapSizeCall reports kernel heap statistics.
type HeapSizeCall struct{}

// MemoryTestCall runs generation Runs times and reports the heap after each.
type MemoryTestCall struct {
	Profile profile.Profile `json:"profile"`
	Params  engine.Params   `json:"params"`
	Quality mesh.Quality    `json:"quality"`
	Runs    int             `json:"runs"`
}

// DefaultMemoryTestRuns is used when a MemoryTestCall carries no run count.
const DefaultMemoryTestRuns = 20

func (*InitCall) Command() Command       { return CmdInit }
func (*RevolveCall) Command() Command    { return CmdRevolve }
func (*GenerateCall) Command() Command   { return CmdGenerateMould }
func (*HeapSizeCall) Command() Command   { return CmdHeapSize }
func (*MemoryTestCall) Command() Command { return CmdMemoryTest }

func (*InitCall) isCall()       {}
func (*RevolveCall) isCall()    {}
func (*GenerateCall) isCall()   {}
func (*HeapSizeCall) isCall()   {}
func (*MemoryTestCall) isCall() {}

var (
	// ErrUnknownCommand is returned when decoding an envelope with an
	// unrecognized command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadEnvelope wraps envelope decoding failures.
	ErrBadEnvelope = errors.New("bad envelope")
)

// newCall returns the zero call of cmd with unset parameters at their defaults.
func newCall(cmd Command) (Call, error) {
	switch cmd {
	case CmdInit:
		return &InitCall{}, nil
	case CmdRevolve:
		return &RevolveCall{}, nil
	case CmdGenerateMould:
		return &GenerateCall{Request: engine.Request{Params: engine.DefaultParams()}}, nil
	case CmdHeapSize:
		return &HeapSizeCall{}, nil
	case CmdMemoryTest:
		return &MemoryTestCall{Params: engine.DefaultParams(), Runs: DefaultMemoryTestRuns}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
}

// Envelope is a request across the execution boundary:
//
//	{"id": 3, "command": "generateMould", "profile": {...}, "params": {...}}
type Envelope struct {
	ID   uint64
	Call Call
}

type envelopeHead struct {
	ID      uint64  `json:"id"`
	Command Command `json:"command"`
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var head envelopeHead
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	e.ID = head.ID
	call, err := newCall(head.Command)
	if err != nil {
		return err
	}
	switch call.(type) {
	case *InitCall, *HeapSizeCall:
		// No parameters.
	default:
		if err := json.Unmarshal(b, call); err != nil {
			return fmt.Errorf("%s parameters: %w", head.Command, err)
		}
	}
	e.Call = call
	return nil
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Call == nil {
		return nil, errors.New("envelope without call")
	}
	fields := make(map[string]json.RawMessage)
	switch e.Call.(type) {
	case *InitCall, *HeapSizeCall:
	default:
		b, err := json.Marshal(e.Call)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
	}
	delete(fields, "generationId")
	head, err := json.Marshal(envelopeHead{ID: e.ID, Command: e.Call.Command()})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(head, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// Response answers the Envelope of the same ID. Exactly one of Data and
// Error is encoded; a nil Data with no Error encodes as "data": null.
type Response struct {
	ID    uint64
	Data  any
	Error *ErrorInfo
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			ID    uint64     `json:"id"`
			Error *ErrorInfo `json:"error"`
		}{r.ID, r.Error})
	}
	return json.Marshal(struct {
		ID   uint64 `json:"id"`
		Data any    `json:"data"`
	}{r.ID, r.Data})
}

// ErrorInfo is the wire form of an error.
type ErrorInfo struct {
	Kind    string                    `json:"kind"`
	Message string                    `json:"message"`
	Fields  []profile.StructuralError `json:"fields,omitempty"`
}

// Error kinds of ErrorInfo.
const (
	KindStructural = "structural"
	KindKernel     = "kernel"
	KindContext    = "context"
	KindCanceled   = "canceled"
	KindRequest    = "request"
	KindInternal   = "internal"
)

// NewErrorInfo classifies err for the wire.
func NewErrorInfo(err error) *ErrorInfo {
	info := &ErrorInfo{Kind: KindInternal, Message: err.Error()}
	var structural profile.StructuralErrors
	var kerr *kernel.Error
	switch {
	case errors.As(err, &structural):
		info.Kind = KindStructural
		info.Fields = structural
	case errors.As(err, &kerr):
		info.Kind = KindKernel
	case errors.Is(err, ErrContextLost), errors.Is(err, ErrClosed), errors.Is(err, ErrHung):
		info.Kind = KindContext
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		info.Kind = KindCanceled
	case errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrBadEnvelope):
		info.Kind = KindRequest
	}
	return info
}

// Reply builds the response to the envelope id from a call's outcome.
func Reply(id uint64, data any, err error) Response {
	if err != nil {
		return Response{ID: id, Error: NewErrorInfo(err)}
	}
	return Response{ID: id, Data: data}
}

// InitInfo describes a started execution context.
type InitInfo struct {
	Session string        `json:"session"`
	Tuning  engine.Tuning `json:"tuning"`
}

// MemoryReport is the answer to a MemoryTestCall.
type MemoryReport struct {
	Sizes []int64      `json:"sizes"`
	Heap  kernel.Stats `json:"heap"`
}
