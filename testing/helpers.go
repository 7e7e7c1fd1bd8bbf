// Package testing provides test utilities and helpers for rowz-based applications.
//
// This package includes a mock operator and assertion helpers for rows,
// to make testing passes and pipelines easier.
//
// Example usage:
//
//	func TestMyPass(t *testing.T) {
//		mock := rowztest.NewMockOperator(t, "mock-operator")
//		mock.WithError(errors.New("boom"))
//
//		pass := rowz.NewPass("test-pass", mock)
//		err := pass.Apply(context.Background(), rowz.NewRow())
//
//		require.Error(t, err)
//		rowztest.AssertApplied(t, mock, 1)
//	}
package testing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/rowz"
	"github.com/zoobzio/rowz/value"
)

// MockOperator provides a configurable implementation of rowz.Operator.
// It tracks calls and lets tests configure an error, a panic or an edit.
type MockOperator struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t           *testing.T
	name        string
	callCount   int64
	returnErr   error
	panicMsg    string
	edit        func(context.Context, rowz.Container) error
	mu          sync.RWMutex
	callHistory []MockCall
	maxHistory  int
}

// MockCall represents a single call to the mock operator.
type MockCall struct {
	Context   context.Context
	Timestamp time.Time
	RowLen    int // Entries in the row when the operator was called
}

// NewMockOperator creates a mock operator that succeeds without touching
// the row until configured otherwise.
func NewMockOperator(t *testing.T, name string) *MockOperator {
	return &MockOperator{
		t:          t,
		name:       name,
		maxHistory: 100,
	}
}

// WithError configures the mock to return err on every call.
func (m *MockOperator) WithError(err error) *MockOperator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnErr = err
	return m
}

// WithPanic configures the mock to panic with a specific message.
func (m *MockOperator) WithPanic(msg string) *MockOperator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// WithEdit configures a function run against the row on every call. Its
// error, if any, takes precedence over WithError.
func (m *MockOperator) WithEdit(fn func(context.Context, rowz.Container) error) *MockOperator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edit = fn
	return m
}

// Name implements rowz.Operator.
func (m *MockOperator) Name() rowz.Name {
	return m.name
}

// Apply implements rowz.Operator. It records the call and then panics,
// edits or returns the configured error.
func (m *MockOperator) Apply(ctx context.Context, c rowz.Container) error {
	atomic.AddInt64(&m.callCount, 1)

	m.mu.Lock()
	if m.maxHistory > 0 {
		m.callHistory = append(m.callHistory, MockCall{
			Context:   ctx,
			Timestamp: time.Now(),
			RowLen:    c.Len(),
		})
		if len(m.callHistory) > m.maxHistory {
			m.callHistory = m.callHistory[1:]
		}
	}
	returnErr := m.returnErr
	panicMsg := m.panicMsg
	edit := m.edit
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	if edit != nil {
		if err := edit(ctx, c); err != nil {
			return err
		}
	}
	return returnErr
}

// CallCount returns the number of times Apply has been called.
func (m *MockOperator) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// CallHistory returns a copy of all recorded calls.
func (m *MockOperator) CallHistory() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := make([]MockCall, len(m.callHistory))
	copy(history, m.callHistory)
	return history
}

// Reset clears all call tracking.
func (m *MockOperator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	atomic.StoreInt64(&m.callCount, 0)
	m.callHistory = nil
}

// Assertion Helpers

// AssertApplied verifies that a mock operator was called exactly n times.
func AssertApplied(t *testing.T, mock *MockOperator, expectedCalls int) {
	t.Helper()
	actualCalls := mock.CallCount()
	if actualCalls != expectedCalls {
		t.Errorf("expected mock operator %s to be called %d times, but was called %d times",
			mock.name, expectedCalls, actualCalls)
	}
}

// AssertNotApplied verifies that a mock operator was never called.
func AssertNotApplied(t *testing.T, mock *MockOperator) {
	t.Helper()
	AssertApplied(t, mock, 0)
}

// AssertEntry verifies the entry at idx: its kind and its payload. Pass a
// nil want to require an absent payload.
func AssertEntry(t *testing.T, c rowz.Container, idx uint, kind value.Kind, want *value.Value) {
	t.Helper()
	e, ok := c.Get(idx)
	if !ok {
		t.Errorf("expected an entry at idx %d", idx)
		return
	}
	if got := e.TypeInfo().Kind(); got != kind {
		t.Errorf("entry %d: expected kind %s, got %s", idx, kind, got)
	}
	if !value.EqualPtr(e.Data(), want) {
		t.Errorf("entry %d: expected data %s, got %s", idx, describe(want), describe(e.Data()))
	}
}

// AssertNoEntry verifies that no entry carries idx.
func AssertNoEntry(t *testing.T, c rowz.Container, idx uint) {
	t.Helper()
	if e, ok := c.Get(idx); ok {
		t.Errorf("expected no entry at idx %d, found %s", idx, e)
	}
}

// ParallelTest runs testFunc in goroutines and waits for all of them.
func ParallelTest(t *testing.T, goroutines int, testFunc func(int)) {
	t.Helper()
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			testFunc(id)
		}(i)
	}
	wg.Wait()
}

func describe(v *value.Value) string {
	if v == nil {
		return "<absent>"
	}
	return v.Kind().String() + "(" + v.String() + ")"
}
