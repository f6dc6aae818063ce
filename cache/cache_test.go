package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/mesh"
)

func testKey(i int) Key {
	return Key{Content: document.ContentHash([]byte{byte(i)}), Tolerance: 0.1}
}

func newMesh() *mesh.Mesh {
	return &mesh.Mesh{}
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func mustBuild(t *testing.T, c *Cache, key Key, builds *atomic.Int32) *Handle {
	t.Helper()
	h, err := c.GetOrBuild(context.Background(), key, func() (*mesh.Mesh, error) {
		if builds != nil {
			builds.Add(1)
		}
		return newMesh(), nil
	})
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	return h
}

func TestNew(t *testing.T) {
	c := New(Config{})
	if c.cfg.MaxEntries != DefaultMaxEntries {
		t.Errorf("MaxEntries = %d, want %d", c.cfg.MaxEntries, DefaultMaxEntries)
	}
	if c.cfg.MaxBytes != DefaultMaxBytes {
		t.Errorf("MaxBytes = %d, want %d", c.cfg.MaxBytes, DefaultMaxBytes)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestGetOrBuild_Idempotent(t *testing.T) {
	c := New(DefaultConfig())
	var builds atomic.Int32

	h1 := mustBuild(t, c, testKey(1), &builds)
	h2 := mustBuild(t, c, testKey(1), &builds)
	defer h1.Release()
	defer h2.Release()

	if builds.Load() != 1 {
		t.Errorf("builds = %d, want 1", builds.Load())
	}
	if h1.Mesh() != h2.Mesh() {
		t.Error("second call returned a different mesh")
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Builds != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 build", s)
	}
	if h, ok := c.Get(testKey(1)); !ok || h.Mesh() != h1.Mesh() {
		t.Error("Get did not return the cached mesh")
	} else {
		h.Release()
	}
}

func TestGetOrBuild_ConcurrentSingleBuild(t *testing.T) {
	const n = 32
	c := New(DefaultConfig())
	var builds atomic.Int32
	gate := make(chan struct{})

	build := func() (*mesh.Mesh, error) {
		builds.Add(1)
		<-gate
		return newMesh(), nil
	}

	var wg sync.WaitGroup
	meshes := make([]*mesh.Mesh, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := c.GetOrBuild(context.Background(), testKey(7), build)
			errs[i] = err
			if err == nil {
				meshes[i] = h.Mesh()
				h.Release()
			}
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := builds.Load(); got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}
	for i := range meshes {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if meshes[i] != meshes[0] {
			t.Errorf("caller %d got a different mesh", i)
		}
	}
}

func TestGetOrBuild_Failure(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (*mesh.Mesh, error)
		panicked bool
	}{
		{"error", func() (*mesh.Mesh, error) { return nil, errors.New("boom") }, false},
		{"nil mesh", func() (*mesh.Mesh, error) { return nil, nil }, false},
		{"panic", func() (*mesh.Mesh, error) { panic("kaboom") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(DefaultConfig())
			_, err := c.GetOrBuild(context.Background(), testKey(1), tt.build)
			if !errors.Is(err, ErrBuildFailed) {
				t.Fatalf("err = %v, want ErrBuildFailed", err)
			}
			var be *BuildError
			if !errors.As(err, &be) || be.Panicked != tt.panicked {
				t.Errorf("err = %#v, want Panicked=%v", err, tt.panicked)
			}
			if c.Len() != 0 {
				t.Errorf("failed build left %d entries", c.Len())
			}

			// The key stays empty, so a retry builds again.
			var builds atomic.Int32
			h := mustBuild(t, c, testKey(1), &builds)
			h.Release()
			if builds.Load() != 1 {
				t.Errorf("retry builds = %d, want 1", builds.Load())
			}
		})
	}
}

func TestGetOrBuild_FailureReachesAllWaiters(t *testing.T) {
	const n = 8
	c := New(DefaultConfig())
	gate := make(chan struct{})
	build := func() (*mesh.Mesh, error) {
		<-gate
		panic("kaboom")
	}

	var wg sync.WaitGroup
	var failed atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrBuild(context.Background(), testKey(2), build); errors.Is(err, ErrBuildFailed) {
				failed.Add(1)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if failed.Load() != n {
		t.Errorf("%d of %d waiters saw the failure", failed.Load(), n)
	}
}

func TestGetOrBuild_WaitBounded(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		ctx     func() (context.Context, context.CancelFunc)
		wantErr error
	}{
		{
			name: "cancelled context",
			cfg:  DefaultConfig(),
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			wantErr: context.Canceled,
		},
		{
			name:    "build timeout",
			cfg:     Config{BuildTimeout: 10 * time.Millisecond},
			ctx:     func() (context.Context, context.CancelFunc) { return context.Background(), func() {} },
			wantErr: context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.cfg)
			gate := make(chan struct{})
			done := make(chan struct{})
			build := func() (*mesh.Mesh, error) {
				defer close(done)
				<-gate
				return newMesh(), nil
			}

			ctx, cancel := tt.ctx()
			defer cancel()
			_, err := c.GetOrBuild(ctx, testKey(3), build)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			// The abandoned build still completes and is cached.
			close(gate)
			<-done
			deadline := time.Now().Add(time.Second)
			for c.Len() == 0 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			if c.Len() != 1 {
				t.Errorf("Len() = %d, want 1", c.Len())
			}
		})
	}
}

func TestEviction_LRU(t *testing.T) {
	c := New(Config{MaxEntries: 2})
	for i := 1; i <= 3; i++ {
		mustBuild(t, c, testKey(i), nil).Release()
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if h, ok := c.Get(testKey(1)); ok {
		h.Release()
		t.Error("oldest entry was not evicted")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestEviction_RecencyFromUse(t *testing.T) {
	c := New(Config{MaxEntries: 2})
	mustBuild(t, c, testKey(1), nil).Release()
	mustBuild(t, c, testKey(2), nil).Release()

	// Touch 1 so that 2 becomes the oldest.
	h, _ := c.Get(testKey(1))
	h.Release()
	mustBuild(t, c, testKey(3), nil).Release()

	if h, ok := c.Get(testKey(2)); ok {
		h.Release()
		t.Error("entry 2 should have been evicted")
	}
	if h, ok := c.Get(testKey(1)); !ok {
		t.Error("recently used entry 1 was evicted")
	} else {
		h.Release()
	}
}

func TestEviction_NewEntryOverBudget(t *testing.T) {
	c := New(Config{MaxEntries: 1})
	var builds atomic.Int32
	held := mustBuild(t, c, testKey(1), &builds)
	defer held.Release()

	h1 := mustBuild(t, c, testKey(2), &builds)
	defer h1.Release()
	h2 := mustBuild(t, c, testKey(2), &builds)
	defer h2.Release()

	if builds.Load() != 2 {
		t.Errorf("builds = %d, want 2", builds.Load())
	}
	if h1.Mesh() != h2.Mesh() {
		t.Error("second lookup got a different mesh")
	}
	if s := c.Stats(); s.Evictions != 0 || s.Entries != 2 {
		t.Errorf("Stats = %+v, want 2 entries and no evictions", s)
	}
}

func TestEviction_LargerThanBudget(t *testing.T) {
	c := New(Config{MaxBytes: 1})
	var builds atomic.Int32
	h1 := mustBuild(t, c, testKey(1), &builds)
	h2 := mustBuild(t, c, testKey(1), &builds)
	if builds.Load() != 1 || h1.Mesh() != h2.Mesh() {
		t.Errorf("builds = %d, want one shared build while referenced", builds.Load())
	}
	h1.Release()
	h2.Release()
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want the oversized entry dropped once idle", c.Len())
	}
}

func TestEviction_SkipsReferenced(t *testing.T) {
	c := New(Config{MaxEntries: 1})
	held := mustBuild(t, c, testKey(1), nil)
	mustBuild(t, c, testKey(2), nil).Release()
	mustBuild(t, c, testKey(3), nil).Release()

	if h, ok := c.Get(testKey(1)); !ok {
		t.Fatal("referenced entry was evicted")
	} else {
		h.Release()
	}
	if held.Mesh() == nil {
		t.Error("held handle lost its mesh")
	}

	// Once released, the over-budget entry becomes evictable.
	held.Release()
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestSweep_Retention(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := New(Config{Retention: time.Minute, Now: clock.Now})

	mustBuild(t, c, testKey(1), nil).Release()
	held := mustBuild(t, c, testKey(2), nil)
	defer held.Release()

	clock.Advance(30 * time.Second)
	if n := c.Sweep(); n != 0 {
		t.Errorf("Sweep() = %d before retention, want 0", n)
	}
	clock.Advance(time.Minute)
	if n := c.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want the referenced entry only", c.Len())
	}
}

func TestInvalidate(t *testing.T) {
	c := New(DefaultConfig())
	var builds atomic.Int32

	held := mustBuild(t, c, testKey(1), &builds)
	other := testKey(1)
	other.Tolerance = 0.5
	mustBuild(t, c, other, &builds).Release()
	mustBuild(t, c, testKey(2), &builds).Release()

	if n := c.Invalidate(testKey(1).Content); n != 2 {
		t.Errorf("Invalidate() = %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if held.Mesh() == nil {
		t.Error("outstanding handle lost its mesh")
	}
	held.Release()
	if c.Len() != 1 {
		t.Errorf("release of an invalidated entry re-indexed it: Len() = %d", c.Len())
	}

	h := mustBuild(t, c, testKey(1), &builds)
	h.Release()
	if builds.Load() != 4 {
		t.Errorf("builds = %d, want 4", builds.Load())
	}
}

func TestInvalidate_DuringBuild(t *testing.T) {
	c := New(DefaultConfig())
	started := make(chan struct{})
	gate := make(chan struct{})
	result := make(chan *Handle)
	go func() {
		h, err := c.GetOrBuild(context.Background(), testKey(1), func() (*mesh.Mesh, error) {
			close(started)
			<-gate
			return newMesh(), nil
		})
		if err != nil {
			t.Error(err)
		}
		result <- h
	}()

	<-started
	c.Invalidate(testKey(1).Content)
	close(gate)

	h := <-result
	if h == nil || h.Mesh() == nil {
		t.Fatal("waiter did not receive the mesh")
	}
	h.Release()
	if c.Len() != 0 {
		t.Errorf("outdated build was indexed: Len() = %d", c.Len())
	}
	if n := len(c.flights); n != 0 {
		t.Errorf("%d build generations left behind", n)
	}
}

func TestInvalidate_KeepsNoState(t *testing.T) {
	c := New(DefaultConfig())
	for i := 0; i < 100; i++ {
		mustBuild(t, c, testKey(i), nil).Release()
		c.Invalidate(testKey(i).Content)
	}
	// Hashes of content nobody builds again must not accumulate.
	if n := len(c.flights); n != 0 {
		t.Errorf("len(flights) = %d, want 0", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestHandle_ReleaseTwice(t *testing.T) {
	c := New(Config{MaxEntries: 1})
	h1 := mustBuild(t, c, testKey(1), nil)
	h2, _ := c.Get(testKey(1))
	h1.Release()
	h1.Release()

	// h2 still holds the entry, so it must survive pressure.
	mustBuild(t, c, testKey(2), nil).Release()
	if h, ok := c.Get(testKey(1)); !ok {
		t.Error("double release dropped another holder's reference")
	} else {
		h.Release()
	}
	h2.Release()
}

func TestKey_String(t *testing.T) {
	a := testKey(1)
	b := a
	b.Output = 1
	if a.String() == b.String() {
		t.Error("keys differing in Output encode equally")
	}
	if a.String() != testKey(1).String() {
		t.Error("equal keys encode differently")
	}
}

func BenchmarkGetOrBuild_Hit(b *testing.B) {
	c := New(DefaultConfig())
	build := func() (*mesh.Mesh, error) { return newMesh(), nil }
	h, _ := c.GetOrBuild(context.Background(), testKey(1), build)
	h.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, _ := c.GetOrBuild(context.Background(), testKey(1), build)
		h.Release()
	}
}
