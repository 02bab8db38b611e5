package judge

import "sort"

// Rank sorts results by score, highest first, and assigns ranks. Equal
// scores share a rank and the next lower score skips past the tie group,
// so scores 91, 80, 80, 60 rank 1, 2, 2, 4.
func Rank(results []Result) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
	for i := range results {
		if i > 0 && results[i].Score == results[i-1].Score {
			results[i].Rank = results[i-1].Rank
			continue
		}
		results[i].Rank = i + 1
	}
	return results
}

// Points converts a rank into the points added to a player's total.
func Points(rank int) int {
	if rank < 1 {
		return 0
	}
	points := 100 - 25*(rank-1)
	if points < 25 {
		return 25
	}
	return points
}
