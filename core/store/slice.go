// Package store holds the client-side state: one Slice per backend resource,
// each tracking the data, loading flag and error of its last request.
package store

import (
	"context"
	"sync"

	"github.com/trezcool/masomo-portal/core"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// State is the {data, loading, error} triplet of a resource.
type State[T any] struct {
	Data    T
	Loading bool
	Error   string

	status Status
}

func (s State[T]) Status() Status {
	if s.status == "" {
		return StatusIdle
	}
	return s.status
}

// Thunk performs the side-effecting call (usually one HTTP request) of an action.
type Thunk[T any] func(ctx context.Context) (T, error)

type Option func(*options)

type options struct {
	keepDataOnError bool
	fallback        string
}

// KeepDataOnError makes a rejected request leave the previous data in place.
func KeepDataOnError() Option {
	return func(o *options) { o.keepDataOnError = true }
}

// WithFallbackMessage sets the error stored when a failure carries no message.
func WithFallbackMessage(msg string) Option {
	return func(o *options) { o.fallback = msg }
}

// Slice is a named partition of the store scoped to one resource.
// Overlapping runs are not serialized: whichever finishes last wins.
type Slice[T any] struct {
	name string
	opts options

	mu        sync.RWMutex
	state     State[T]
	listeners []func(State[T])
}

func NewSlice[T any](name string, opts ...Option) *Slice[T] {
	o := options{fallback: core.DefaultFallbackErrorMessage}
	for _, opt := range opts {
		opt(&o)
	}
	return &Slice[T]{name: name, opts: o}
}

func (s *Slice[T]) Name() string { return s.name }

// State returns a snapshot of the slice.
func (s *Slice[T]) State() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called after every transition.
func (s *Slice[T]) Subscribe(fn func(State[T])) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Run dispatches thunk through the pending -> fulfilled | rejected lifecycle
// and returns the thunk's result.
func (s *Slice[T]) Run(ctx context.Context, thunk Thunk[T]) (T, error) {
	s.pending()
	data, err := thunk(ctx)
	if err != nil {
		s.rejected(err)
		var zero T
		return zero, err
	}
	s.fulfilled(data)
	return data, nil
}

// Set replaces the data outside of a request, e.g. after logging out.
func (s *Slice[T]) Set(data T) {
	s.update(func(st *State[T]) {
		st.Data = data
		st.Error = ""
	})
}

// Reset puts the slice back in its idle state.
func (s *Slice[T]) Reset() {
	s.update(func(st *State[T]) { *st = State[T]{} })
}

func (s *Slice[T]) pending() {
	s.update(func(st *State[T]) {
		st.Loading = true
		st.status = StatusPending
	})
}

func (s *Slice[T]) fulfilled(data T) {
	s.update(func(st *State[T]) {
		st.Data = data
		st.Loading = false
		st.Error = ""
		st.status = StatusFulfilled
	})
}

func (s *Slice[T]) rejected(err error) {
	s.update(func(st *State[T]) {
		if !s.opts.keepDataOnError {
			var zero T
			st.Data = zero
		}
		st.Loading = false
		st.Error = core.ErrorMessage(err, s.opts.fallback)
		st.status = StatusRejected
	})
}

func (s *Slice[T]) update(fn func(*State[T])) {
	s.mu.Lock()
	fn(&s.state)
	st := s.state
	listeners := make([]func(State[T]), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
}
