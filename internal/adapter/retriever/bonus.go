package retriever

import (
	"math"
	"strings"

	"scholar/internal/domain"
)

// maxProximityPositions caps how many positions per term feed the pairwise
// distance scan; beyond that the bonus saturates anyway.
const maxProximityPositions = 10

// ProximityBonus rewards query terms appearing close together. Each inner
// slice holds the token positions of one matched term; the bonus is
// exp(-d/10) for the minimum pairwise distance d between positions of
// different terms. Fewer than two matched terms yield no bonus.
func ProximityBonus(positionLists [][]int) float64 {
	lists := make([][]int, 0, len(positionLists))
	for _, l := range positionLists {
		if len(l) == 0 {
			continue
		}
		if len(l) > maxProximityPositions {
			l = l[:maxProximityPositions]
		}
		lists = append(lists, l)
	}
	if len(lists) < 2 {
		return 0
	}

	minDist := math.MaxInt
	for i := 0; i < len(lists); i++ {
		for j := i + 1; j < len(lists); j++ {
			for _, a := range lists[i] {
				for _, b := range lists[j] {
					d := a - b
					if d < 0 {
						d = -d
					}
					if d < minDist {
						minDist = d
					}
				}
			}
		}
	}
	return math.Exp(-float64(minDist) / 10.0)
}

// FieldCoverageBonus rewards query terms appearing in high-signal fields,
// weighting title hits over category hits. Matching is a substring check
// against the raw field text, so stems still hit their source words.
func FieldCoverageBonus(doc domain.Document, queryTerms []string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	title := strings.ToLower(doc.Title)
	categories := strings.ToLower(doc.Categories)

	var hits float64
	for _, term := range queryTerms {
		if strings.Contains(title, term) {
			hits += 3.0
		}
		if strings.Contains(categories, term) {
			hits += 1.5
		}
	}
	return hits / float64(len(queryTerms))
}
