package browser

import (
	"testing"
	"time"
)

func TestRandomPacerBounds(t *testing.T) {
	min := 5 * time.Millisecond
	max := 20 * time.Millisecond
	p := NewRandomPacer(min, max)

	for i := 0; i < 10; i++ {
		start := time.Now()
		p.Wait()
		elapsed := time.Since(start)

		if elapsed < min {
			t.Fatalf("wait %d returned after %v, below minimum %v", i, elapsed, min)
		}
		// Generous ceiling: scheduling jitter, not the draw, decides
		// how much over max a sleep lands.
		if elapsed > max+100*time.Millisecond {
			t.Fatalf("wait %d took %v, far above maximum %v", i, elapsed, max)
		}
	}
}

func TestRandomPacerSwappedBounds(t *testing.T) {
	p := NewRandomPacer(20*time.Millisecond, 5*time.Millisecond)

	start := time.Now()
	p.Wait()
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("swapped bounds not corrected, wait returned after %v", elapsed)
	}
}

func TestZeroPacer(t *testing.T) {
	start := time.Now()
	ZeroPacer{}.Wait()
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("ZeroPacer waited %v", elapsed)
	}
}
