package logging

import "strings"

// ProgressSampler thins load and export progress to one record per
// percentage bucket. A new phase starts a fresh bucket sequence, and 100%
// always passes once per phase so the final tick is never dropped.
type ProgressSampler struct {
	step     int
	phase    string
	next     int
	finished bool
}

// NewProgressSampler returns a sampler with the given bucket width in percent.
// Widths outside 1..100 fall back to 10.
func NewProgressSampler(step int) *ProgressSampler {
	if step <= 0 || step > 100 {
		step = 10
	}
	return &ProgressSampler{step: step}
}

// ShouldLog reports whether percent in phase crosses into an unseen bucket.
// Negative percents only pass on a phase change. A nil sampler passes all.
func (s *ProgressSampler) ShouldLog(percent int, phase string) bool {
	if s == nil {
		return true
	}
	phase = strings.ToLower(strings.TrimSpace(phase))
	changed := phase != s.phase
	if changed {
		s.phase = phase
		s.next = 0
		s.finished = false
	}
	if percent < 0 {
		return changed
	}
	percent = min(percent, 100)
	if percent == 100 {
		if s.finished {
			return false
		}
		s.finished = true
		s.next = 100 + s.step
		return true
	}
	if percent < s.next {
		return changed
	}
	s.next = (percent/s.step + 1) * s.step
	return true
}

// Reset forgets the current phase so the next call always passes.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	*s = ProgressSampler{step: s.step}
}
