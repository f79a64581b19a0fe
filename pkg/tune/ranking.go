package tune

// TrialResult is one candidate's raw measurement. Never mutated after the
// trial; ordered only by Bandwidth.
type TrialResult struct {
	Candidate Candidate
	Bandwidth int64 // first worker's read bandwidth, KiB/s, unrounded

	// Aggregate is the sum across workers, present only for multi-worker
	// jobs. Reporting-only; it never influences ranking or commit.
	Aggregate    int64
	HasAggregate bool
}

// Ranking keeps the K best trial results seen so far, ordered by descending
// bandwidth. Insertion uses strict >, so an exact tie keeps the earlier,
// first-enumerated candidate.
type Ranking struct {
	k       int
	entries []TrialResult
}

// NewRanking returns a ranking bounded to the best k results.
func NewRanking(k int) *Ranking {
	if k < 1 {
		k = 1
	}
	return &Ranking{k: k, entries: make([]TrialResult, 0, k)}
}

// K returns the table bound.
func (r *Ranking) K() int { return r.k }

// Offer inserts a result if it beats an occupied slot or the table still
// has room. Displaced occupants cascade down one slot; the one past the
// bound is discarded. Reports whether the result was kept.
func (r *Ranking) Offer(tr TrialResult) bool {
	pos := len(r.entries)
	for i, e := range r.entries {
		if tr.Bandwidth > e.Bandwidth {
			pos = i
			break
		}
	}
	if pos >= r.k {
		return false
	}

	r.entries = append(r.entries, TrialResult{})
	copy(r.entries[pos+1:], r.entries[pos:])
	r.entries[pos] = tr
	if len(r.entries) > r.k {
		r.entries = r.entries[:r.k]
	}
	return true
}

// Best returns the top slot, if any result has been kept.
func (r *Ranking) Best() (TrialResult, bool) {
	if len(r.entries) == 0 {
		return TrialResult{}, false
	}
	return r.entries[0], true
}

// Entries returns the table in rank order.
func (r *Ranking) Entries() []TrialResult {
	out := make([]TrialResult, len(r.entries))
	copy(out, r.entries)
	return out
}
