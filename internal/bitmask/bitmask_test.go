package bitmask

import "testing"

func TestSetClearGet(t *testing.T) {
	m, err := New(10)
	if err != nil {
		t.Fatal(err)
	}
	m.Set(3)
	if !m.Get(3) {
		t.Fatal("expected bit 3 set")
	}
	m.Clear(3)
	if m.Get(3) {
		t.Fatal("expected bit 3 clear")
	}
}

func TestOutOfBoundsLatchesError(t *testing.T) {
	m, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	if m.Get(10) {
		t.Fatal("out-of-bounds get should return false")
	}
	if m.Err() == nil {
		t.Fatal("expected latched error after out-of-bounds access")
	}
}

func TestClearAllZeroesEveryWord(t *testing.T) {
	m, err := New(20)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		m.Set(i)
	}
	m.ClearAll()
	for i := 0; i < 20; i++ {
		if m.Get(i) {
			t.Fatalf("bit %d still set after ClearAll", i)
		}
	}
}

func TestNotInvertsWords(t *testing.T) {
	m, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	m.Set(0)
	m.Not()
	if m.Get(0) {
		t.Fatal("bit 0 should have been cleared by Not")
	}
	if !m.Get(1) {
		t.Fatal("bit 1 should have been set by Not")
	}
}
