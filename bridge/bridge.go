// Package bridge runs the mould engine in an isolated execution context and
// carries calls to it.
//
// The context is a single goroutine owning its own kernel, so kernel work is
// serialized while callers stay free to issue new requests. It is started
// lazily by the first call and replaced after a crash. Generation follows a
// latest-wins contract: work is never interrupted, but the result of a
// generation superseded by a newer one is discarded.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soypat/mould/engine"
	"github.com/soypat/mould/kernel"
	"github.com/soypat/mould/mesh"
	"github.com/soypat/mould/profile"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Bridge is safe for concurrent use.
type Bridge struct {
	factory Factory
	hang    time.Duration

	group  singleflight.Group
	mu     sync.Mutex
	cur    *execContext
	info   InitInfo
	closed bool

	gen  atomic.Uint64
	errs chan error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithFactory sets how execution contexts are started. The default runs an
// engine with default tuning.
func WithFactory(f Factory) Option {
	return func(b *Bridge) { b.factory = f }
}

// WithHangTimeout reports a context as hung when one call runs longer than d.
// The hung context is abandoned and the next call starts a new one. Zero
// disables the watchdog.
func WithHangTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.hang = d }
}

// WithErrorBuffer sets the capacity of the Errors channel.
func WithErrorBuffer(n int) Option {
	return func(b *Bridge) { b.errs = make(chan error, n) }
}

func New(opts ...Option) *Bridge {
	b := &Bridge{factory: EngineFactory(), errs: make(chan error, 8)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Errors delivers context level failures: crashes and hangs. Failures are
// dropped while the channel is full.
func (b *Bridge) Errors() <-chan error { return b.errs }

// Generation returns the id of the most recent generation request.
func (b *Bridge) Generation() uint64 { return b.gen.Load() }

// Init starts the execution context if none is running. Concurrent callers
// wait on the same start.
func (b *Bridge) Init(ctx context.Context) (InitInfo, error) {
	_, info, err := b.context(ctx)
	return info, err
}

type started struct {
	c    *execContext
	info InitInfo
}

func (b *Bridge) context(ctx context.Context) (*execContext, InitInfo, error) {
	b.mu.Lock()
	switch {
	case b.closed:
		b.mu.Unlock()
		return nil, InitInfo{}, ErrClosed
	case b.cur != nil:
		c, info := b.cur, b.info
		b.mu.Unlock()
		return c, info, nil
	}
	b.mu.Unlock()
	ch := b.group.DoChan("init", b.start)
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, InitInfo{}, r.Err
		}
		s := r.Val.(started)
		return s.c, s.info, nil
	case <-ctx.Done():
		return nil, InitInfo{}, ctx.Err()
	}
}

func (b *Bridge) start() (any, error) {
	b.mu.Lock()
	if b.cur != nil || b.closed {
		s, closed := started{b.cur, b.info}, b.closed
		b.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}
		return s, nil
	}
	b.mu.Unlock()

	h, err := b.factory()
	if err != nil {
		Logger().Error("starting execution context", zap.Error(err))
		return nil, fmt.Errorf("starting execution context: %w", err)
	}
	c := startContext(h, b.hang, b.lost)
	v, err := c.do(context.Background(), &InitCall{})
	if err != nil {
		c.close()
		return nil, fmt.Errorf("initializing execution context: %w", err)
	}
	info := InitInfo{Session: c.id.String()}
	if t, ok := v.(engine.Tuning); ok {
		info.Tuning = t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		c.close()
		return nil, ErrClosed
	}
	b.cur, b.info = c, info
	c.log.Info("execution context started")
	return started{c, info}, nil
}

// lost forgets c so the next call starts a new context.
func (b *Bridge) lost(c *execContext, err error) {
	b.mu.Lock()
	if b.cur == c {
		b.cur, b.info = nil, InitInfo{}
	}
	closed := b.closed
	b.mu.Unlock()
	if closed || errors.Is(err, ErrClosed) {
		return
	}
	c.log.Error("execution context lost", zap.Error(err))
	select {
	case b.errs <- err:
	default:
		c.log.Warn("error channel full, dropping failure", zap.Error(err))
	}
}

// Close stops the execution context. Calls in flight finish, later calls
// return ErrClosed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.cur != nil {
		b.cur.close()
		b.cur = nil
	}
	return nil
}

// Call dispatches call. A GenerateCall follows the latest-wins contract of
// Generate, so a nil result with a nil error means it was superseded.
func (b *Bridge) Call(ctx context.Context, call Call) (any, error) {
	switch c := call.(type) {
	case *InitCall:
		return b.Init(ctx)
	case *GenerateCall:
		res, err := b.Generate(ctx, c.Request)
		if res == nil {
			return nil, err
		}
		return res, nil
	}
	return b.call(ctx, call)
}

func (b *Bridge) call(ctx context.Context, call Call) (any, error) {
	c, _, err := b.context(ctx)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, call)
}

// Generate assigns req the next generation id and runs it. If a newer
// generation was requested by the time it completes, Generate returns
// (nil, nil) and the result is discarded. The request's GenerationID is
// ignored.
func (b *Bridge) Generate(ctx context.Context, req engine.Request) (*engine.Result, error) {
	id := b.gen.Add(1)
	req.GenerationID = id
	v, err := b.call(ctx, &GenerateCall{Request: req})
	if latest := b.gen.Load(); latest != id {
		Logger().Debug("dropping stale generation", zap.Uint64("generation", id), zap.Uint64("latest", latest))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res, _ := v.(*engine.Result)
	return res, nil
}

// Revolve meshes the unscaled profile for instant preview.
func (b *Bridge) Revolve(ctx context.Context, p profile.Profile, q mesh.Quality) (*mesh.Mesh, error) {
	v, err := b.call(ctx, &RevolveCall{Profile: p, Quality: q})
	if err != nil {
		return nil, err
	}
	m, _ := v.(*mesh.Mesh)
	return m, nil
}

// HeapSize returns the kernel heap statistics of the execution context.
func (b *Bridge) HeapSize(ctx context.Context) (kernel.Stats, error) {
	v, err := b.call(ctx, &HeapSizeCall{})
	if err != nil {
		return kernel.Stats{}, err
	}
	st, _ := v.(kernel.Stats)
	return st, nil
}

// MemoryTest runs generation call.Runs times in the execution context.
func (b *Bridge) MemoryTest(ctx context.Context, call MemoryTestCall) (MemoryReport, error) {
	v, err := b.call(ctx, &call)
	if err != nil {
		return MemoryReport{}, err
	}
	rep, _ := v.(MemoryReport)
	return rep, nil
}
