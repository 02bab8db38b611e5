package game

import "sort"

type TieResult struct {
	IsTie     bool
	TiedWords []string
	MaxVotes  int
}

// ResolveTie finds every word holding the highest vote count. TiedWords is
// sorted so the result does not depend on map order.
func ResolveTie(voteCounts map[string]int) TieResult {
	result := TieResult{}
	for word, count := range voteCounts {
		if count <= 0 {
			continue
		}
		switch {
		case count > result.MaxVotes:
			result.MaxVotes = count
			result.TiedWords = []string{word}
		case count == result.MaxVotes:
			result.TiedWords = append(result.TiedWords, word)
		}
	}
	sort.Strings(result.TiedWords)
	result.IsTie = len(result.TiedWords) > 1
	return result
}

type tieBreak struct {
	words []string
	acked bool
}
