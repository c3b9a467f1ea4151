package reactive

import "testing"

func TestEffectRunsImmediately(t *testing.T) {
	runs := 0
	NewEffect(func() Cleanup {
		runs++
		return nil
	})

	if runs != 1 {
		t.Errorf("expected 1 run at creation, got %d", runs)
	}
}

func TestEffectRerunsOnDependencyChange(t *testing.T) {
	count := NewSignal(0)
	var seen []int

	NewEffect(func() Cleanup {
		seen = append(seen, count.Get())
		return nil
	})

	count.Set(1)
	Flush()
	count.Set(2)
	Flush()

	want := []int{0, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("run %d: expected %d, got %d", i, want[i], seen[i])
		}
	}
}

func TestEffectCleanupOrdering(t *testing.T) {
	count := NewSignal(0)
	var calls []string

	NewEffect(func() Cleanup {
		calls = append(calls, "effect")
		_ = count.Get()
		return func() {
			calls = append(calls, "cleanup")
		}
	})

	count.Set(1)
	Flush()

	// Cleanup from run N always completes before run N+1 starts.
	want := []string{"effect", "cleanup", "effect"}
	if len(calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, calls)
		}
	}
}

func TestEffectDisposeRunsCleanup(t *testing.T) {
	count := NewSignal(0)
	cleaned := false

	e := NewEffect(func() Cleanup {
		_ = count.Get()
		return func() { cleaned = true }
	})

	e.Dispose()
	if !cleaned {
		t.Error("dispose did not run cleanup")
	}

	count.Set(1)
	Flush()
	if !e.Disposed() {
		t.Error("effect not marked disposed")
	}
}

func TestEffectDisposedDoesNotRerun(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	e := NewEffect(func() Cleanup {
		runs++
		_ = count.Get()
		return nil
	})

	e.Dispose()
	count.Set(1)
	Flush()

	if runs != 1 {
		t.Errorf("disposed effect re-ran: %d runs", runs)
	}
}

func TestEffectEmptyDepsRunsOnce(t *testing.T) {
	count := NewSignal(0)
	runs := 0

	NewEffect(func() Cleanup {
		runs++
		_ = count.Get() // read must not subscribe in this mode
		return nil
	}, Deps())

	count.Set(1)
	Flush()
	count.Set(2)
	Flush()

	if runs != 1 {
		t.Errorf("expected exactly 1 run, got %d", runs)
	}
}

func TestEffectListedDepsGateReruns(t *testing.T) {
	x := NewSignal(0)
	y := NewSignal(0)
	runs := 0

	NewEffect(func() Cleanup {
		runs++
		_ = y.Get() // unrelated read, untracked in listed mode
		return nil
	}, Deps(x))

	y.Set(1)
	Flush()
	if runs != 1 {
		t.Fatalf("unlisted dependency triggered a re-run: %d runs", runs)
	}

	x.Set(5)
	Flush()
	if runs != 2 {
		t.Errorf("listed dependency change did not re-run: %d runs", runs)
	}
}

func TestEffectListedDepsEqualityCheck(t *testing.T) {
	x := NewSignal([]int{1})
	runs := 0

	NewEffect(func() Cleanup {
		runs++
		return nil
	}, Deps(x))

	// Equal by deep equality even though the slice header differs: the
	// signal itself short-circuits, so no re-run.
	x.Set([]int{1})
	Flush()
	if runs != 1 {
		t.Errorf("equal-valued write re-ran effect: %d runs", runs)
	}

	x.Set([]int{2})
	Flush()
	if runs != 2 {
		t.Errorf("changed value did not re-run effect: %d runs", runs)
	}
}

func TestEffectDynamicBranchDrop(t *testing.T) {
	useA := NewSignal(true)
	a := NewSignal(1)
	b := NewSignal(1)
	runs := 0

	NewEffect(func() Cleanup {
		runs++
		if useA.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
		return nil
	})

	useA.Set(false)
	Flush()
	runsAfterSwitch := runs

	// a is no longer a dependency.
	a.Set(2)
	Flush()
	if runs != runsAfterSwitch {
		t.Errorf("dropped dependency still re-ran effect (%d -> %d)", runsAfterSwitch, runs)
	}

	b.Set(2)
	Flush()
	if runs != runsAfterSwitch+1 {
		t.Errorf("live dependency did not re-run effect (%d)", runs)
	}
}

func TestEffectReadsComputedThroughFlush(t *testing.T) {
	a := NewSignal(1)
	doubled := NewComputed(func() int { return a.Get() * 2 })
	var seen []int

	NewEffect(func() Cleanup {
		seen = append(seen, doubled.Get())
		return nil
	})

	a.Set(3)
	Flush()

	// The computed settles before the effect observes it.
	if len(seen) != 2 || seen[1] != 6 {
		t.Errorf("expected [2 6], got %v", seen)
	}
}

func TestOnMount(t *testing.T) {
	s := NewSignal(0)
	runs := 0
	cleaned := false

	e := OnMount(func() Cleanup {
		runs++
		_ = s.Get()
		return func() { cleaned = true }
	})

	s.Set(1)
	Flush()
	if runs != 1 {
		t.Errorf("OnMount re-ran: %d", runs)
	}

	e.Dispose()
	if !cleaned {
		t.Error("OnMount cleanup not run on dispose")
	}
}
