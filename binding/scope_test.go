package binding

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-binding/graph"
)

func newSampleCtor(calls *atomic.Int32) *Constructor[*sample] {
	return MustConstructor(func() (*sample, error) {
		n := calls.Add(1)
		return &sample{id: int(n)}, nil
	})
}

func TestScoped_ArgumentValidation(t *testing.T) {
	_, err := NewValueScoped[*sample, int](nil)
	assert.ErrorIs(t, err, ErrArgument)

	_, err = NewReferenceScoped[*sample, scopeKey](nil)
	assert.ErrorIs(t, err, ErrArgument)

	vs, err := NewValueScoped[*sample](func() int { return 1 })
	require.NoError(t, err)
	assert.ErrorIs(t, vs.SetBinding(nil), ErrArgument)
	var typedNil *Constructor[*sample]
	assert.ErrorIs(t, vs.SetBinding(typedNil), ErrArgument)

	rs, err := NewReferenceScoped[*sample](func() *scopeKey { return nil })
	require.NoError(t, err)
	assert.ErrorIs(t, rs.SetBinding(nil), ErrArgument)

	_, err = GroupByValue[*sample](func() int { return 1 }, nil)
	assert.ErrorIs(t, err, ErrArgument)
	_, err = Singleton[*sample](nil)
	assert.ErrorIs(t, err, ErrArgument)
}

func TestValueScoped_WithoutInnerIsInvalidState(t *testing.T) {
	vs, err := NewValueScoped[*sample](func() string { return "k" })
	require.NoError(t, err)

	_, err = vs.Resolve()
	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, vs.Len())
	assert.Nil(t, vs.Inner())
}

func TestValueScoped_SameKeySameInstance(t *testing.T) {
	var calls atomic.Int32
	key := "a"
	vs, err := GroupByValue(func() string { return key }, newSampleCtor(&calls))
	require.NoError(t, err)

	first, err := vs.Resolve()
	require.NoError(t, err)
	second, err := vs.Resolve()
	require.NoError(t, err)
	assert.Same(t, first, second)

	key = "b"
	third, err := vs.Resolve()
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	key = "a"
	again, err := vs.Resolve()
	require.NoError(t, err)
	assert.Same(t, first, again)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, vs.Len())
	assert.Equal(t, KindValueScoped, vs.Kind())
}

func TestValueScoped_OverLazy(t *testing.T) {
	c := newChain(t)
	vs, err := Singleton[*service](c.service)
	require.NoError(t, err)

	first, err := vs.Resolve()
	require.NoError(t, err)
	second, err := vs.Resolve()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), c.serviceCalls.Load())
}

func TestValueScoped_ConcurrentSameKeyConstructsOnce(t *testing.T) {
	var calls atomic.Int32
	slow := MustConstructor(func() (*sample, error) {
		n := calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &sample{id: int(n)}, nil
	})
	vs, err := Singleton[*sample](slow)
	require.NoError(t, err)

	const workers = 32
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*sample, workers)
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := vs.Resolve()
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Same(t, results[0], v)
	}
}

func TestValueScoped_ConcurrentDistinctKeys(t *testing.T) {
	var calls atomic.Int32
	var next atomic.Int32
	vs, err := GroupByValue(func() int32 { return next.Add(1) % 4 }, newSampleCtor(&calls))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := vs.Resolve()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 4, vs.Len())
}

func TestValueScoped_FailureIsNotCached(t *testing.T) {
	var attempts atomic.Int32
	flaky := MustConstructor(func() (*sample, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("first attempt fails")
		}
		return &sample{id: 1}, nil
	})
	obs := &recordingObserver{}
	vs, err := Singleton[*sample](flaky, WithObserver(obs))
	require.NoError(t, err)

	_, err = vs.Resolve()
	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, vs.Len())

	v, err := vs.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 1, v.id)
	assert.Equal(t, 1, vs.Len())

	cached, err := vs.Resolve()
	require.NoError(t, err)
	assert.Same(t, v, cached)

	assert.Equal(t, int32(2), obs.misses.Load())
	assert.Equal(t, int32(1), obs.hits.Load())
}

func TestValueScoped_SelectorPanic(t *testing.T) {
	var calls atomic.Int32
	vs, err := GroupByValue(func() int { panic("no scope") }, newSampleCtor(&calls))
	require.NoError(t, err)

	_, err = vs.Resolve()
	assert.ErrorIs(t, err, ErrPanic)
	assert.Equal(t, int32(0), calls.Load())
}

func TestValueScoped_SetBindingReplacesInner(t *testing.T) {
	var firstCalls, secondCalls atomic.Int32
	key := 1
	vs, err := GroupByValue(func() int { return key }, newSampleCtor(&firstCalls))
	require.NoError(t, err)

	_, err = vs.Resolve()
	require.NoError(t, err)

	require.NoError(t, vs.SetBinding(newSampleCtor(&secondCalls)))
	_, err = vs.Resolve()
	require.NoError(t, err)
	assert.Equal(t, int32(0), secondCalls.Load(), "cached keys keep their value")

	key = 2
	_, err = vs.Resolve()
	require.NoError(t, err)
	assert.Equal(t, int32(1), secondCalls.Load())
}

func TestReferenceScoped_IdentityKeys(t *testing.T) {
	var calls atomic.Int32
	a := newScopeKey("same")
	b := newScopeKey("same")
	current := a

	rs, err := GroupByReference(func() *scopeKey { return current }, newSampleCtor(&calls))
	require.NoError(t, err)

	first, err := rs.Resolve()
	require.NoError(t, err)
	again, err := rs.Resolve()
	require.NoError(t, err)
	assert.Same(t, first, again)

	current = b
	other, err := rs.Resolve()
	require.NoError(t, err)
	assert.NotSame(t, first, other, "equal values with different identity are different keys")

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, rs.Len())
	assert.Equal(t, KindReferenceScoped, rs.Kind())
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

// defaultScope a package-level key, not allocated on the heap
var defaultScope scopeKey

func TestReferenceScoped_GlobalKey(t *testing.T) {
	var calls atomic.Int32
	rs, err := GroupByReference(func() *scopeKey { return &defaultScope }, newSampleCtor(&calls))
	require.NoError(t, err)

	first, err := rs.Resolve()
	require.NoError(t, err)
	again, err := rs.Resolve()
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, rs.Len())
}

func TestNewReferenceScoped_ZeroSizedKey(t *testing.T) {
	var calls atomic.Int32
	rs, err := GroupByReference(func() *struct{} { return new(struct{}) }, newSampleCtor(&calls))
	assert.Nil(t, rs)
	assert.ErrorIs(t, err, ErrArgument)
	assert.Contains(t, err.Error(), "zero-sized")

	_, err = NewReferenceScoped[*sample](func() *[0]int { return nil })
	assert.ErrorIs(t, err, ErrArgument)
}

func TestReferenceScoped_NilKey(t *testing.T) {
	var calls atomic.Int32
	rs, err := GroupByReference(func() *scopeKey { return nil }, newSampleCtor(&calls))
	require.NoError(t, err)

	_, err = rs.Resolve()
	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, ErrNilScopeKey)
	assert.Equal(t, int32(0), calls.Load())
}

func TestReferenceScoped_ReleasesCollectedKeys(t *testing.T) {
	var calls atomic.Int32
	var current *scopeKey
	rs, err := GroupByReference(func() *scopeKey { return current }, newSampleCtor(&calls))
	require.NoError(t, err)

	current = newScopeKey("request-1")
	stale, err := rs.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	current = nil

	require.Eventually(t, func() bool {
		runtime.GC()
		return rs.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	current = newScopeKey("request-2")
	fresh, err := rs.Resolve()
	require.NoError(t, err)
	assert.NotSame(t, stale, fresh)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReferenceScoped_ConcurrentSameKeyConstructsOnce(t *testing.T) {
	var calls atomic.Int32
	slow := MustDeclare[*sample](func(b *graph.Builder) graph.Node {
		return graph.Ctor0("newSample", func() *sample {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return &sample{}
		})
	})
	key := newScopeKey("shared")
	rs, err := GroupByReference(func() *scopeKey { return key }, slow)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	results := make([]*sample, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := rs.Resolve()
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Same(t, results[0], v)
	}
}

func TestScoped_AsOpaqueDependency(t *testing.T) {
	var clockCalls atomic.Int32
	clk, err := Singleton[*clock](MustConstructor(counting(&clockCalls, func() *clock { return &clock{now: 3} })))
	require.NoError(t, err)

	r := MustDeclare[*repo](func(b *graph.Builder) graph.Node {
		return graph.Ctor1("newRepo", func(c *clock) *repo { return &repo{clock: c} }, b.Dependency(clk))
	})

	first, err := r.Resolve()
	require.NoError(t, err)
	second, err := r.Resolve()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, first.clock, second.clock)
	assert.Equal(t, int32(1), clockCalls.Load())
}
