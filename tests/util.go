package testutil

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/trezcool/masomo-portal/core"
)

// Call is a request received by a FakeAPI.
type Call struct {
	Method string
	Path   string
	Body   interface{}
	Public bool
}

// Responder answers a request. The returned value is JSON round-tripped into `out`.
type Responder func(req core.Request) (interface{}, error)

// FakeAPI is an in-process core.APIClient recording every call.
type FakeAPI struct {
	mu     sync.Mutex
	routes map[string]Responder
	calls  []Call
}

var _ core.APIClient = (*FakeAPI)(nil)

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{routes: make(map[string]Responder)}
}

// On registers r for method + path; it replaces any previous responder.
func (f *FakeAPI) On(method, path string, r Responder) *FakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = r
	return f
}

// Reply registers a responder always returning `data`.
func (f *FakeAPI) Reply(method, path string, data interface{}) *FakeAPI {
	return f.On(method, path, func(core.Request) (interface{}, error) { return data, nil })
}

// Fail registers a responder always failing with a *core.RequestError.
func (f *FakeAPI) Fail(method, path string, code int, msg string) *FakeAPI {
	return f.On(method, path, func(core.Request) (interface{}, error) {
		return nil, &core.RequestError{StatusCode: code, Message: msg}
	})
}

func (f *FakeAPI) Do(_ context.Context, req core.Request, out interface{}) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: req.Method, Path: req.Path, Body: req.Body, Public: req.Public})
	r, ok := f.routes[req.Method+" "+req.Path]
	f.mu.Unlock()

	if !ok {
		return &core.RequestError{StatusCode: http.StatusNotFound, Message: "not found"}
	}
	data, err := r(req)
	if err != nil {
		return err
	}
	if out == nil || data == nil {
		return nil
	}
	b, err := sonic.Marshal(data)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(b, out)
}

func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// Count returns how many times method + path was called.
func (f *FakeAPI) Count(method, path string) int {
	var n int
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// LastBody returns the body of the last call to method + path, JSON decoded into a map.
func (f *FakeAPI) LastBody(t *testing.T, method, path string) map[string]interface{} {
	t.Helper()
	calls := f.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		c := calls[i]
		if c.Method == method && c.Path == path {
			b, err := sonic.Marshal(c.Body)
			if err != nil {
				t.Fatalf("LastBody() failed: %v", err)
			}
			var m map[string]interface{}
			if err := sonic.Unmarshal(b, &m); err != nil {
				t.Fatalf("LastBody() failed: %v", err)
			}
			return m
		}
	}
	t.Fatalf("LastBody(): no %s %s call", method, path)
	return nil
}
