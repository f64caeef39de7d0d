package itemscan

import "sync"

// resultCache stores completed detection results keyed by content
// fingerprint, with in-flight de-duplication: while one caller computes a
// fingerprint's result, concurrent callers for the same fingerprint block
// until it commits instead of repeating the work.
//
// Entries never expire; they live until ClearCache or process exit.
type resultCache struct {
	mu       sync.Mutex
	entries  map[string]*Result
	inflight map[string]chan struct{}
}

func newResultCache() *resultCache {
	return &resultCache{
		entries:  make(map[string]*Result),
		inflight: make(map[string]chan struct{}),
	}
}

// begin claims a fingerprint for computation.
//
// On a cache hit it returns (copy, true, nil). Otherwise the caller is
// either the leader for this fingerprint - (nil, false, commit) - or a
// follower that blocked on the leader; followers loop back to re-check
// the cache once the leader commits. The leader must call commit exactly
// once: with the finished result to publish it, or with nil on failure
// so waiting followers can retry as the new leader.
func (c *resultCache) begin(fingerprint string) (*Result, bool, func(*Result)) {
	c.mu.Lock()
	for {
		if cached, ok := c.entries[fingerprint]; ok {
			c.mu.Unlock()
			return cloneResult(cached), true, nil
		}
		ch, busy := c.inflight[fingerprint]
		if !busy {
			break
		}
		c.mu.Unlock()
		<-ch
		c.mu.Lock()
	}

	done := make(chan struct{})
	c.inflight[fingerprint] = done

	commit := func(res *Result) {
		c.mu.Lock()
		if res != nil {
			c.entries[fingerprint] = cloneResult(res)
		}
		delete(c.inflight, fingerprint)
		close(done)
		c.mu.Unlock()
	}
	c.mu.Unlock()
	return nil, false, commit
}

// clear drops all stored results. In-flight computations are unaffected;
// they will publish into the fresh map when they commit.
func (c *resultCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Result)
	c.mu.Unlock()
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cloneResult deep-copies the slices and pointers a caller could mutate,
// so cached state can never be corrupted through a returned result.
func cloneResult(r *Result) *Result {
	out := *r
	out.Detections = make([]Detection, len(r.Detections))
	for i, d := range r.Detections {
		out.Detections[i] = d
		if d.Position != nil {
			p := *d.Position
			out.Detections[i].Position = &p
		}
	}
	if r.GridParams != nil {
		gp := *r.GridParams
		out.GridParams = &gp
	}
	if r.Warnings != nil {
		out.Warnings = append([]string(nil), r.Warnings...)
	}
	if r.Regions != nil {
		out.Regions = make(map[string]Rect, len(r.Regions))
		for k, v := range r.Regions {
			out.Regions[k] = v
		}
	}
	return &out
}
