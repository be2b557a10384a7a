package topic

// DefaultCutoff is the minimum similarity ratio for a token to count as a
// keyword match.
const DefaultCutoff = 0.8

// fuzzyMatch reports whether any token matches any keyword with a similarity
// ratio at or above the cutoff.
func fuzzyMatch(tokens []string, keywords map[string]struct{}, cutoff float64) bool {
	for _, token := range tokens {
		for keyword := range keywords {
			if similarityRatio(token, keyword) >= cutoff {
				return true
			}
		}
	}
	return false
}

// similarityRatio is 2*L/(len(a)+len(b)) where L is the length of the
// longest common subsequence of a and b. Identical strings score 1.0,
// disjoint strings 0.0.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	// Single-row LCS table; token lengths are small.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(b)]
	return 2.0 * float64(lcs) / float64(len(a)+len(b))
}
