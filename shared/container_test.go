package shared

import (
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewLoadUpdate(t *testing.T) {
	t.Parallel()
	c := New(41)
	if err := c.Update(func(v int) int { return v + 1 }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.Load()
	if err != nil || got != 42 {
		t.Fatalf("Load() = (%d, %v), want (42, nil)", got, err)
	}
	if err := c.With(func(v *int) { *v *= 2 }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := c.Value(); got != 84 {
		t.Fatalf("Value() = %d, want 84", got)
	}
}

func TestCloneSharesValue(t *testing.T) {
	t.Parallel()
	a := New([]string{"x"})
	b := a.Clone()
	if !a.Same(b) {
		t.Fatal("clone should refer to the same value")
	}
	if a.Refs() != 2 || b.Refs() != 2 {
		t.Fatalf("expected 2 refs, got %d/%d", a.Refs(), b.Refs())
	}
	_ = b.With(func(v *[]string) { *v = append(*v, "y") })
	got, _ := a.Load()
	if strings.Join(got, ",") != "x,y" {
		t.Fatalf("mutation through clone not visible: %v", got)
	}
}

func TestReleaseClonesKeepsValue(t *testing.T) {
	t.Parallel()
	orig := New("seed", WithName("keep"))
	clones := make([]*Container[string], 8)
	for i := range clones {
		clones[i] = orig.Clone()
	}
	for _, c := range clones {
		if c.Release() {
			t.Fatal("releasing a clone must not drop the last reference")
		}
	}
	if orig.Refs() != 1 {
		t.Fatalf("expected 1 ref, got %d", orig.Refs())
	}
	v, err := orig.Value()
	if err != nil || v != "seed" {
		t.Fatalf("Value() = (%q, %v), want (\"seed\", nil)", v, err)
	}
	if !orig.Same(clones[0]) || orig.Name() != "keep" {
		t.Fatal("identity changed after releasing clones")
	}
}

func TestReleaseLastDropsValue(t *testing.T) {
	t.Parallel()
	c := New([]byte("payload"))
	cl := c.c
	if !c.Release() {
		t.Fatal("expected last release to report true")
	}
	if c.Release() {
		t.Fatal("second release of the same handle must be a no-op")
	}
	if cl.val != nil {
		t.Fatalf("value not dropped: %q", cl.val)
	}
	if cl.refs.Load() != 0 {
		t.Fatalf("expected 0 refs, got %d", cl.refs.Load())
	}
}

func TestReleasedHandle(t *testing.T) {
	t.Parallel()
	c := New(1)
	keep := c.Clone()
	c.Release()
	if !c.Released() {
		t.Fatal("expected handle to report released")
	}
	if err := c.With(func(*int) { t.Error("fn must not run on a released handle") }); !errors.Is(err, ErrReleased) {
		t.Fatalf("With on released handle: got %v, want ErrReleased", err)
	}
	if _, err := c.Value(); !errors.Is(err, ErrReleased) {
		t.Fatalf("Value on released handle: got %v, want ErrReleased", err)
	}
	func() {
		defer func() {
			if r := recover(); r != ErrReleased {
				t.Fatalf("Clone on released handle: recovered %v, want ErrReleased", r)
			}
		}()
		c.Clone()
	}()
	if v, err := keep.Value(); err != nil || v != 1 {
		t.Fatalf("remaining handle: Value() = (%d, %v)", v, err)
	}
}

func TestValueRequiresSoleHolder(t *testing.T) {
	t.Parallel()
	c := New(7, WithName("counter"))
	other := c.Clone()
	_, err := c.Value()
	var se *SharedError
	if !errors.As(err, &se) || se.Refs != 2 || se.Name != "counter" {
		t.Fatalf("expected SharedError with 2 refs, got %v", err)
	}
	if !errors.Is(err, ErrShared) {
		t.Fatalf("expected errors.Is(err, ErrShared), got %v", err)
	}
	other.Release()
	if v, err := c.Value(); err != nil || v != 7 {
		t.Fatalf("Value() after release = (%d, %v)", v, err)
	}
}

func TestPanicPoisons(t *testing.T) {
	t.Parallel()
	c := New(10, WithName("p"))
	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("panic should propagate out of With, recovered %v", r)
			}
		}()
		_ = c.With(func(v *int) {
			*v = -1
			panic("boom")
		})
	}()
	if !c.Poisoned() {
		t.Fatal("expected container to be poisoned")
	}
	called := false
	err := c.With(func(*int) { called = true })
	var pe *PoisonError
	if !errors.As(err, &pe) || pe.Name != "p" || !errors.Is(err, ErrPoisoned) {
		t.Fatalf("expected PoisonError, got %v", err)
	}
	if called {
		t.Fatal("fn must not run on a poisoned container")
	}
	v, err := c.Value()
	if !errors.Is(err, ErrPoisoned) || v != -1 {
		t.Fatalf("Value() on poisoned = (%d, %v), want (-1, ErrPoisoned)", v, err)
	}
	if err := c.ClearPoison(); err != nil {
		t.Fatalf("ClearPoison: %v", err)
	}
	if err := c.Update(func(int) int { return 0 }); err != nil {
		t.Fatalf("With after ClearPoison: %v", err)
	}
}

func TestGoexitPoisons(t *testing.T) {
	t.Parallel()
	c := New(0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.With(func(*int) { runtime.Goexit() })
	}()
	<-done
	if err := c.With(func(*int) {}); !errors.Is(err, ErrPoisoned) {
		t.Fatalf("expected ErrPoisoned after Goexit in critical section, got %v", err)
	}
}

func TestPoisonIsLocal(t *testing.T) {
	t.Parallel()
	bad := New(0)
	good := New(0)
	func() {
		defer func() { _ = recover() }()
		_ = bad.With(func(*int) { panic("x") })
	}()
	if err := good.Update(func(v int) int { return v + 1 }); err != nil {
		t.Fatalf("unrelated container affected by poison: %v", err)
	}
	if good.Poisoned() {
		t.Fatal("unrelated container must not be poisoned")
	}
}

func TestMutualExclusion(t *testing.T) {
	t.Parallel()
	const G = 32
	const K = 200
	c := New(0)
	var inside, overlaps atomic.Int64
	var wg sync.WaitGroup
	barrier := make(chan struct{})
	wg.Add(G)
	for i := 0; i < G; i++ {
		h := c.Clone()
		go func() {
			defer wg.Done()
			defer h.Release()
			<-barrier
			for k := 0; k < K; k++ {
				_ = h.With(func(v *int) {
					if inside.Add(1) != 1 {
						overlaps.Add(1)
					}
					*v++
					inside.Add(-1)
				})
			}
		}()
	}
	close(barrier)
	wg.Wait()
	if n := overlaps.Load(); n != 0 {
		t.Fatalf("observed %d overlapping critical sections", n)
	}
	if v, err := c.Value(); err != nil || v != G*K {
		t.Fatalf("Value() = (%d, %v), want (%d, nil)", v, err, G*K)
	}
}

func TestConcurrentAppendNoInterleave(t *testing.T) {
	t.Parallel()
	c := New("seed")
	var wg sync.WaitGroup
	for _, suffix := range []string{"-a", "-b"} {
		h := c.Clone()
		wg.Add(1)
		go func(s string) {
			defer wg.Done()
			defer h.Release()
			_ = h.With(func(v *string) {
				for i := 0; i < len(s); i++ {
					*v += s[i : i+1]
					runtime.Gosched()
				}
			})
		}(suffix)
	}
	wg.Wait()
	got, _ := c.Value()
	if got != "seed-a-b" && got != "seed-b-a" {
		t.Fatalf("corrupted value %q", got)
	}
}

type countObserver struct {
	acquired atomic.Int64
	released atomic.Int64
	poisoned atomic.Int64
	cloned   atomic.Int64
	dropped  atomic.Int64
}

func (o *countObserver) LockAcquired(_ string, _ time.Duration) { o.acquired.Add(1) }
func (o *countObserver) LockReleased(_ string, _ time.Duration, poisoned bool) {
	o.released.Add(1)
	if poisoned {
		o.poisoned.Add(1)
	}
}
func (o *countObserver) HandleAcquired(_ string, _ int64) { o.cloned.Add(1) }
func (o *countObserver) HandleReleased(_ string, _ int64) { o.dropped.Add(1) }

func TestObserverHooks(t *testing.T) {
	t.Parallel()
	obs := &countObserver{}
	c := New(0, WithObserver(obs))
	h := c.Clone()
	_ = h.Update(func(v int) int { return v + 1 })
	func() {
		defer func() { _ = recover() }()
		_ = h.With(func(*int) { panic("x") })
	}()
	_ = c.With(func(*int) {})
	h.Release()
	c.Release()
	if obs.acquired.Load() != 2 || obs.released.Load() != 2 || obs.poisoned.Load() != 1 {
		t.Fatalf("unexpected lock counts: acquired=%d released=%d poisoned=%d",
			obs.acquired.Load(), obs.released.Load(), obs.poisoned.Load())
	}
	if obs.cloned.Load() != 2 || obs.dropped.Load() != 2 {
		t.Fatalf("unexpected handle counts: acquired=%d released=%d", obs.cloned.Load(), obs.dropped.Load())
	}
}

func TestObserversFanOut(t *testing.T) {
	t.Parallel()
	a, b := &countObserver{}, &countObserver{}
	if Observers() != nil || Observers(nil, nil) != nil {
		t.Fatal("no observers should combine to nil")
	}
	if Observers(nil, a) != Observer(a) {
		t.Fatal("a single observer should be returned as is")
	}
	c := New(0, WithObserver(Observers(a, nil, b)))
	_ = c.Update(func(v int) int { return v + 1 })
	c.Release()
	for i, o := range []*countObserver{a, b} {
		if o.acquired.Load() != 1 || o.released.Load() != 1 || o.cloned.Load() != 1 || o.dropped.Load() != 1 {
			t.Fatalf("observer %d missed events", i)
		}
	}
}

type panicOnAcquire struct{ countObserver }

func (o *panicOnAcquire) LockAcquired(string, time.Duration) { panic("observer") }

func TestObserverPanicPoisonsAndUnlocks(t *testing.T) {
	t.Parallel()
	obs := &panicOnAcquire{}
	c := New(1, WithObserver(obs))
	called := false
	func() {
		defer func() {
			if r := recover(); r != "observer" {
				t.Fatalf("observer panic should propagate, recovered %v", r)
			}
		}()
		_ = c.With(func(*int) { called = true })
	}()
	if called {
		t.Fatal("fn must not run after LockAcquired panicked")
	}
	if !c.Poisoned() {
		t.Fatal("expected container to be poisoned")
	}
	if obs.released.Load() != 1 || obs.poisoned.Load() != 1 {
		t.Fatalf("LockReleased not reported: released=%d poisoned=%d", obs.released.Load(), obs.poisoned.Load())
	}
	if !c.c.mu.TryLock() {
		t.Fatal("lock still held after With unwound")
	}
	c.c.mu.Unlock()
	if err := c.With(func(*int) {}); !errors.Is(err, ErrPoisoned) {
		t.Fatalf("expected ErrPoisoned, got %v", err)
	}
}

func TestClearPoisonReleasedHandle(t *testing.T) {
	t.Parallel()
	c := New(0)
	h := c.Clone()
	func() {
		defer func() { _ = recover() }()
		_ = c.With(func(*int) { panic("x") })
	}()
	h.Release()
	if err := h.ClearPoison(); !errors.Is(err, ErrReleased) {
		t.Fatalf("ClearPoison on released handle = %v, want ErrReleased", err)
	}
	if !c.Poisoned() {
		t.Fatal("released handle must not clear poison")
	}
	if err := c.ClearPoison(); err != nil || c.Poisoned() {
		t.Fatalf("ClearPoison on live handle = %v, poisoned=%v", err, c.Poisoned())
	}
}
