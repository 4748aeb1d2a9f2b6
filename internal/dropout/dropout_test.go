package dropout

import (
	"testing"

	"github.com/fernlane/petalflow-go/internal/bitmask"
	"github.com/fernlane/petalflow-go/internal/prng"
)

func TestExactCount(t *testing.T) {
	cases := []struct {
		length int
		ratio  float64
	}{
		{50, 0.20},
		{50, 0.5},
		{50, 0.8},
		{37, 0.33},
		{100, 0},
		{100, 1},
	}
	rng := prng.New(1)
	for _, c := range cases {
		m, err := bitmask.New(c.length)
		if err != nil {
			t.Fatal(err)
		}
		Generate(m, c.ratio, rng)
		want := int(float64(c.length) * c.ratio)
		got := m.Count()
		if got != want {
			t.Fatalf("length=%d ratio=%v: got %d set bits, want %d", c.length, c.ratio, got, want)
		}
	}
}

func TestDropout50SampleOf50(t *testing.T) {
	m, err := bitmask.New(50)
	if err != nil {
		t.Fatal(err)
	}
	Generate(m, 0.20, prng.New(7))
	if got := m.Count(); got != 10 {
		t.Fatalf("got %d set bits, want 10", got)
	}
}
