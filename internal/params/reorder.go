package params

import (
	"fmt"

	"github.com/apivet/apivet/model"
)

// ReorderConfidence grades how certain the reorder detection is.
type ReorderConfidence string

const (
	ConfidenceHigh   ReorderConfidence = "high"
	ConfidenceMedium ReorderConfidence = "medium"
	ConfidenceNone   ReorderConfidence = ""
)

// ParameterMove describes one parameter that changed position.
type ParameterMove struct {
	Name        string
	OldPosition int
	NewPosition int
}

// ParameterOrderAnalysis is the result of reorder detection over two
// parameter lists.
type ParameterOrderAnalysis struct {
	HasReordering bool
	Confidence    ReorderConfidence
	// Permutation maps each new position to the old position whose
	// parameter it carries. Empty when no type-preserving permutation
	// exists.
	Permutation []int
	Moves       []ParameterMove
	Summary     string
}

// DetectParameterReordering decides whether two same-length parameter lists
// are a reordering of each other rather than a set of renames. Types are
// compared by canonical signature string. The analysis never reports a
// reordering when the types at equal positions are not a permutation of
// each other, and never flags a single renamed parameter.
func DetectParameterReordering(old, new []model.ParameterInfo) ParameterOrderAnalysis {
	if len(old) == 0 || len(new) == 0 {
		return ParameterOrderAnalysis{Summary: "no parameters to compare"}
	}
	if len(old) != len(new) {
		return ParameterOrderAnalysis{
			Summary: fmt.Sprintf("parameter count changed from %d to %d", len(old), len(new)),
		}
	}
	if len(old) == 1 {
		return ParameterOrderAnalysis{Summary: "single parameter, reordering not applicable"}
	}

	perm, ok := typePermutation(old, new)
	if !ok {
		return ParameterOrderAnalysis{Summary: "parameter types differ, not a reordering"}
	}

	identity := true
	for i, p := range perm {
		if p != i {
			identity = false
			break
		}
	}
	if identity {
		return ParameterOrderAnalysis{
			Permutation: perm,
			Summary:     "parameter order unchanged, only renames",
		}
	}

	// A real reorder moves names with their types: names match badly at
	// equal positions but well under the permutation.
	samePos, underPerm := 0.0, 0.0
	for i := range new {
		samePos += NameSimilarity(new[i].Name, old[i].Name)
		underPerm += NameSimilarity(new[i].Name, old[perm[i]].Name)
	}
	samePos /= float64(len(new))
	underPerm /= float64(len(new))

	if samePos >= 0.5 || underPerm <= samePos {
		return ParameterOrderAnalysis{
			Permutation: perm,
			Summary:     "name similarity suggests renames rather than reordering",
		}
	}

	confidence := ConfidenceNone
	switch {
	case underPerm >= 0.9 && isSwapOrCycle(perm):
		confidence = ConfidenceHigh
	case underPerm >= 0.7:
		confidence = ConfidenceMedium
	default:
		return ParameterOrderAnalysis{
			Permutation: perm,
			Summary:     "reordering candidate below confidence threshold",
		}
	}

	var moves []ParameterMove
	for i, p := range perm {
		if p != i {
			moves = append(moves, ParameterMove{
				Name:        new[i].Name,
				OldPosition: p,
				NewPosition: i,
			})
		}
	}

	return ParameterOrderAnalysis{
		HasReordering: true,
		Confidence:    confidence,
		Permutation:   perm,
		Moves:         moves,
		Summary:       fmt.Sprintf("%d parameters changed position", len(moves)),
	}
}

// typePermutation finds the permutation mapping each new position to an old
// position with the same type, preferring the old parameter whose name
// matches best. Returns false when the type multisets differ.
func typePermutation(old, new []model.ParameterInfo) ([]int, bool) {
	used := make([]bool, len(old))
	perm := make([]int, len(new))

	for i, np := range new {
		best := -1
		bestScore := -1.0
		for j, op := range old {
			if used[j] || op.Type != np.Type {
				continue
			}
			score := NameSimilarity(np.Name, op.Name)
			// Prefer keeping the original position on ties.
			if j == i {
				score += 0.001
			}
			if score > bestScore {
				best, bestScore = j, score
			}
		}
		if best < 0 {
			return nil, false
		}
		used[best] = true
		perm[i] = best
	}
	return perm, true
}

// isSwapOrCycle reports whether the non-fixed points of the permutation
// form a single transposition or one cycle.
func isSwapOrCycle(perm []int) bool {
	moved := 0
	start := -1
	for i, p := range perm {
		if p != i {
			moved++
			if start < 0 {
				start = i
			}
		}
	}
	if moved == 2 {
		return true
	}
	if moved == 0 {
		return false
	}
	// Walk the cycle containing the first moved element; a single cycle
	// visits every moved position.
	seen := 0
	i := start
	for {
		i = perm[i]
		seen++
		if i == start {
			break
		}
		if seen > len(perm) {
			return false
		}
	}
	return seen == moved
}
