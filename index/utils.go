package index

// Split converts results into the parallel id/distance form used at the boundary.
func Split(results []Result) ([]int64, []float32) {
	ids := make([]int64, len(results))
	dists := make([]float32, len(results))
	for i, r := range results {
		ids[i] = r.ID
		dists[i] = r.Distance
	}
	return ids, dists
}

// Pad extends results to exactly k entries with NotFoundID/MaxDistance
// sentinels. Results longer than k are truncated.
func Pad(results []Result, k int) []Result {
	if len(results) >= k {
		return results[:k]
	}
	for len(results) < k {
		results = append(results, Result{ID: NotFoundID, Distance: MaxDistance})
	}
	return results
}

// Found returns results without padding entries.
func Found(results []Result) []Result {
	out := results[:0:0]
	for _, r := range results {
		if r.ID != NotFoundID {
			out = append(out, r)
		}
	}
	return out
}
