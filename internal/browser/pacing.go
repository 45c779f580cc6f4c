package browser

import (
	"math/rand"
	"sync"
	"time"

	"github.com/farrandale/plscrape/internal/utils"
)

// Pacer injects a delay before every simulated user action. Detection on
// the target site is behavioral, so pacing applies to clicks and scrolls
// as well as navigations. Wait cannot fail and cannot be interrupted;
// waits are short and bounded.
type Pacer interface {
	Wait()
}

// RandomPacer sleeps for a uniformly random duration in [Min, Max],
// decorrelating action timing from any fixed interval.
type RandomPacer struct {
	min time.Duration
	max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPacer builds a pacer over the given bounds. Swapped bounds
// are corrected rather than rejected.
func NewRandomPacer(min, max time.Duration) *RandomPacer {
	if max < min {
		min, max = max, min
	}
	return &RandomPacer{
		min: min,
		max: max,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks for the drawn duration.
func (p *RandomPacer) Wait() {
	p.mu.Lock()
	d := p.min
	if span := p.max - p.min; span > 0 {
		d += time.Duration(p.rng.Int63n(int64(span) + 1))
	}
	p.mu.Unlock()

	utils.Debugf("pacing: sleeping for %.1fs", d.Seconds())
	time.Sleep(d)
}

// ZeroPacer waits for nothing. Test substitute for RandomPacer.
type ZeroPacer struct{}

// Wait returns immediately.
func (ZeroPacer) Wait() {}
