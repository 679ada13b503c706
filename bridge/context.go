package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soypat/mould/engine"
	"github.com/soypat/mould/kernel"
	"go.uber.org/zap"
)

var (
	// ErrContextLost is returned for calls on an execution context that
	// crashed. The next call starts a new context.
	ErrContextLost = errors.New("execution context lost")
	// ErrHung is reported when a call outlives the hang timeout.
	ErrHung = errors.New("execution context hung")
	// ErrClosed is returned after the bridge is closed.
	ErrClosed = errors.New("bridge closed")
)

// Handler serves calls inside an execution context. Calls are never
// concurrent. A panicking Handler takes its context down with it.
type Handler interface {
	Handle(call Call) (any, error)
}

// Factory starts the handler of a new execution context.
type Factory func() (Handler, error)

// EngineFactory returns a Factory of handlers each owning a fresh kernel.
func EngineFactory(opts ...engine.Option) Factory {
	return func() (Handler, error) {
		return &engineHandler{e: engine.New(kernel.New(), opts...)}, nil
	}
}

type engineHandler struct {
	e *engine.Engine
}

func (h *engineHandler) Handle(call Call) (any, error) {
	switch c := call.(type) {
	case *InitCall:
		return h.e.Tuning(), nil
	case *RevolveCall:
		m, err := h.e.Revolve(c.Profile, c.Quality)
		if err != nil {
			return nil, err
		}
		return m.Transfer(), nil
	case *GenerateCall:
		res, err := h.e.Generate(c.Request)
		if err != nil {
			return nil, err
		}
		return res.Transfer(), nil
	case *HeapSizeCall:
		return h.e.Heap(), nil
	case *MemoryTestCall:
		sizes, err := h.e.MemoryTest(engine.Request{Profile: c.Profile, Params: c.Params, Quality: c.Quality}, c.Runs)
		if err != nil {
			return nil, err
		}
		return MemoryReport{Sizes: sizes, Heap: h.e.Heap()}, nil
	}
	return nil, fmt.Errorf("%w %T", ErrUnknownCommand, call)
}

type job struct {
	call  Call
	reply chan reply
}

type reply struct {
	data any
	err  error
}

// execContext is a goroutine serving calls one at a time on a Handler.
type execContext struct {
	id      uuid.UUID
	h       Handler
	jobs    chan job
	quit    chan struct{}
	dead    chan struct{}
	hang    time.Duration
	onFail  func(*execContext, error)
	log     *zap.Logger
	once    sync.Once
	failMu  sync.Mutex
	failErr error
}

func startContext(h Handler, hang time.Duration, onFail func(*execContext, error)) *execContext {
	c := &execContext{
		id:     uuid.New(),
		h:      h,
		jobs:   make(chan job),
		quit:   make(chan struct{}),
		dead:   make(chan struct{}),
		hang:   hang,
		onFail: onFail,
	}
	c.log = Logger().With(zap.Stringer("session", c.id))
	go c.loop()
	return c
}

func (c *execContext) loop() {
	for {
		select {
		case j := <-c.jobs:
			if !c.serve(j) {
				return
			}
		case <-c.quit:
			c.fail(ErrClosed)
			return
		case <-c.dead:
			return
		}
	}
}

// serve runs j and reports whether the context survived it.
func (c *execContext) serve(j job) (alive bool) {
	if c.hang > 0 {
		timer := time.AfterFunc(c.hang, func() {
			c.fail(fmt.Errorf("%w: %s call exceeded %s", ErrHung, j.call.Command(), c.hang))
		})
		defer timer.Stop()
	}
	defer func() {
		if a := recover(); a != nil {
			err := fmt.Errorf("%w: %s call panicked: %v", ErrContextLost, j.call.Command(), a)
			c.fail(err)
			j.reply <- reply{err: err}
			alive = false
		}
	}()
	data, err := c.h.Handle(j.call)
	j.reply <- reply{data: data, err: err}
	return !c.failed()
}

// fail marks the context dead once. Pending and future calls return err.
func (c *execContext) fail(err error) {
	c.failMu.Lock()
	if c.failErr != nil {
		c.failMu.Unlock()
		return
	}
	c.failErr = err
	close(c.dead)
	c.failMu.Unlock()
	if c.onFail != nil {
		c.onFail(c, err)
	}
}

func (c *execContext) failed() bool {
	c.failMu.Lock()
	defer c.failMu.Unlock()
	return c.failErr != nil
}

func (c *execContext) err() error {
	c.failMu.Lock()
	defer c.failMu.Unlock()
	return c.failErr
}

func (c *execContext) close() {
	c.once.Do(func() { close(c.quit) })
}

// do runs call on the context. The caller may stop waiting through ctx; the
// call itself always runs to completion.
func (c *execContext) do(ctx context.Context, call Call) (any, error) {
	j := job{call: call, reply: make(chan reply, 1)}
	select {
	case c.jobs <- j:
	case <-c.dead:
		return nil, c.err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-j.reply:
		return r.data, r.err
	case <-c.dead:
		// A reply sent before the context died wins.
		select {
		case r := <-j.reply:
			return r.data, r.err
		default:
			return nil, c.err()
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
