package domain

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

var friendNames = []string{"Alex", "Sam", "Jordan", "Robin", "Charlie", "Taylor", "Morgan"}

// HelpGenerator produces lifeline results. It is safe for concurrent use.
type HelpGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewHelpGenerator seeds a generator from the clock.
func NewHelpGenerator() *HelpGenerator {
	return NewHelpGeneratorWithSeed(time.Now().UnixNano())
}

// NewHelpGeneratorWithSeed is used by tests for reproducible lifelines.
func NewHelpGeneratorWithSeed(seed int64) *HelpGenerator {
	return &HelpGenerator{rnd: rand.New(rand.NewSource(seed))}
}

// AudienceDistribution splits 100% of votes between keys, usually favouring correct.
func (h *HelpGenerator) AudienceDistribution(keys []string, correct string) map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	weights := make(map[string]int, len(keys))
	total := 0
	for _, k := range keys {
		w := h.rnd.Intn(30) + 1
		if k == correct && h.rnd.Intn(10) < 8 {
			w += 40 + h.rnd.Intn(30)
		}
		weights[k] = w
		total += w
	}

	out := make(map[string]int, len(keys))
	sum := 0
	for _, k := range keys {
		pct := weights[k] * 100 / total
		out[k] = pct
		sum += pct
	}
	// integer division leaves a remainder; give it to the heaviest key
	if rest := 100 - sum; rest > 0 && len(keys) > 0 {
		heaviest := keys[0]
		for _, k := range keys[1:] {
			if weights[k] > weights[heaviest] {
				heaviest = k
			}
		}
		out[heaviest] += rest
	}
	return out
}

// FiftyFifty keeps the correct key and one random wrong key, sorted.
func (h *HelpGenerator) FiftyFifty(correct string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	wrong := make([]string, 0, len(Letters)-1)
	for _, l := range Letters {
		if l != correct {
			wrong = append(wrong, l)
		}
	}
	keys := []string{correct, wrong[h.rnd.Intn(len(wrong))]}
	sort.Strings(keys)
	return keys
}

// FriendCall names the letter a friend suggests; the friend is right four times out of five.
func (h *HelpGenerator) FriendCall(keys []string, correct string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := friendNames[h.rnd.Intn(len(friendNames))]
	pick := correct
	if h.rnd.Intn(10) >= 8 {
		others := make([]string, 0, len(keys))
		for _, k := range keys {
			if k != correct {
				others = append(others, k)
			}
		}
		if len(others) > 0 {
			pick = others[h.rnd.Intn(len(others))]
		}
	}
	return fmt.Sprintf("%s thinks the answer is %s", name, strings.ToUpper(pick))
}
