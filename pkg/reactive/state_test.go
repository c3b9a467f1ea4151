package reactive

import (
	"errors"
	"testing"
)

func TestKeyedSignalSharedCell(t *testing.T) {
	defer ResetKeyed()

	// Two independent call sites requesting the same key tuple observe the
	// same cell.
	a := KeyedSignal(0, "cart", 42)
	b := KeyedSignal(99, "cart", 42)

	if a != b {
		t.Fatal("same key tuple produced distinct cells")
	}
	if b.Get() != 0 {
		t.Errorf("second request replaced initial value: %d", b.Get())
	}

	var seen int
	NewEffect(func() Cleanup {
		seen = b.Get()
		return nil
	})

	a.Set(7)
	Flush()
	if seen != 7 {
		t.Errorf("write through one reference not visible after flush: %d", seen)
	}
}

func TestKeyedSignalDistinctKeys(t *testing.T) {
	defer ResetKeyed()

	a := KeyedSignal(1, "counter", 1)
	b := KeyedSignal(1, "counter", 2)
	if a == b {
		t.Error("distinct key tuples shared a cell")
	}

	// Same value, different type: distinct cells.
	c := KeyedSignal(1, "typed", 1)
	d := KeyedSignal(1, "typed", "1")
	if c.ID() == d.ID() {
		t.Error("key parts of different types collided")
	}
}

func TestKeyedSignalTypeMismatchPanics(t *testing.T) {
	defer ResetKeyed()

	KeyedSignal(0, "mismatch")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("type mismatch did not panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrKeyedTypeMismatch) {
			t.Fatalf("expected ErrKeyedTypeMismatch, got %v", r)
		}
	}()

	_ = KeyedSignal("zero", "mismatch")
}

func TestDeleteKeyed(t *testing.T) {
	defer ResetKeyed()

	a := KeyedSignal(1, "gone")
	DeleteKeyed("gone")
	b := KeyedSignal(2, "gone")

	if a == b {
		t.Error("deleted key returned the old cell")
	}
	if b.Get() != 2 {
		t.Errorf("fresh cell has stale value %d", b.Get())
	}
}
