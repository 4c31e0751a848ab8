package service

// emotionOverlap computes the Jaccard index between submitted and original
// emotion sets: |intersection| / |union|. Returns 0 when both sets are empty.
func emotionOverlap(submitted, original []string) float64 {
	union := make(map[string]struct{}, len(submitted)+len(original))
	inOriginal := make(map[string]struct{}, len(original))
	for _, e := range original {
		union[e] = struct{}{}
		inOriginal[e] = struct{}{}
	}
	intersection := 0
	for _, e := range submitted {
		if _, seen := union[e]; !seen {
			union[e] = struct{}{}
		}
	}
	counted := make(map[string]struct{}, len(submitted))
	for _, e := range submitted {
		if _, dup := counted[e]; dup {
			continue
		}
		counted[e] = struct{}{}
		if _, ok := inOriginal[e]; ok {
			intersection++
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// scoreHumor compares a submitted humor type against the meme's recorded one.
// Returns nil when the meme has no recorded humor type: the match is undefined
// rather than false.
func scoreHumor(submitted, original string) *bool {
	if original == "" {
		return nil
	}
	match := submitted == original
	return &match
}
