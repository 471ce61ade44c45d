package logging

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when a percentage bucket boundary is crossed.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 10%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether the done/total pair should be logged. The first
// call and the final item always log.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	if total <= 0 {
		return false
	}
	percent := float64(done) * 100 / float64(total)
	bucket := int(percent / s.bucketSize)
	if done >= total {
		bucket = int(100/s.bucketSize) + 1
	}
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state (e.g. when a new batch starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
