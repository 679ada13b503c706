// Package track guarantees release of manually managed kernel objects.
//
// Every object a kernel call returns is passed through Track before use. When
// the function given to WithTracking returns, fails or panics, each tracked
// object is released exactly once, most recent first.
package track

import (
	"errors"
	"fmt"
)

// Deleter is a manually managed object. Delete should tolerate being called
// on an already released object.
type Deleter interface {
	Delete()
}

// Tracker owns the objects tracked during one WithTracking call.
type Tracker struct {
	objs     []Deleter
	released int
}

// Add tracks d. Nil interfaces are ignored.
func (t *Tracker) Add(d Deleter) {
	if d == nil {
		return
	}
	t.objs = append(t.objs, d)
}

// Len returns the number of objects awaiting release.
func (t *Tracker) Len() int { return len(t.objs) }

// Released returns the number of release calls made so far.
func (t *Tracker) Released() int { return t.released }

// Release deletes every tracked object in reverse tracking order and forgets
// them, so a second call is a no-op. A panicking Delete does not stop the
// release of the remaining objects; panics are returned joined as an error.
func (t *Tracker) Release() error {
	var errs []error
	for i := len(t.objs) - 1; i >= 0; i-- {
		if err := release(t.objs[i]); err != nil {
			errs = append(errs, err)
		}
		t.objs[i] = nil
		t.released++
	}
	t.objs = t.objs[:0]
	return errors.Join(errs...)
}

func release(d Deleter) (err error) {
	defer func() {
		if a := recover(); a != nil {
			err = fmt.Errorf("releasing %T: %v", d, a)
		}
	}()
	d.Delete()
	return nil
}

// Track adds obj to t and returns it, so calls can be chained:
//
//	wire := track.Track(t, k.MakeWire(pts))
func Track[D Deleter](t *Tracker, obj D) D {
	t.Add(obj)
	return obj
}

// Result tracks obj when err is nil, for kernel calls returning (obj, error).
//
//	solid, err := track.Result(t)(k.Revolve(wire))
func Result[D Deleter](t *Tracker) func(D, error) (D, error) {
	return func(obj D, err error) (D, error) {
		if err == nil {
			t.Add(obj)
		}
		return obj, err
	}
}

// WithTracking calls fn with a fresh Tracker and releases every tracked
// object once fn returns or panics. Release failures are joined into the
// returned error. A panic in fn propagates after release.
func WithTracking[T any](fn func(t *Tracker) (T, error)) (res T, err error) {
	t := &Tracker{}
	defer func() {
		if relErr := t.Release(); relErr != nil {
			err = errors.Join(err, relErr)
		}
	}()
	return fn(t)
}
