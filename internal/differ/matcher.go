// Package differ pairs the exports of two module analyses, detects renames
// and parameter reordering, classifies every modification along its
// dimensions and recurses into members. It borrows the node trees and
// never mutates them.
package differ

import (
	"sort"

	"github.com/apivet/apivet/internal/params"
	"github.com/apivet/apivet/model"
)

// matchedPair is a same-name pairing between the two versions.
type matchedPair struct {
	old *model.AnalyzableNode
	new *model.AnalyzableNode
}

// matchResult partitions two node maps into pairs, removals and additions.
// Slice orders follow the maps' insertion orders, which is what makes the
// differ's output deterministic.
type matchResult struct {
	matched []matchedPair
	removed []*model.AnalyzableNode
	added   []*model.AnalyzableNode
}

// matchNodes pairs nodes by name. O(n) over the larger map.
func matchNodes(oldMap, newMap *model.NodeMap) matchResult {
	var result matchResult

	oldMap.Range(func(name string, oldNode *model.AnalyzableNode) bool {
		if newNode, ok := newMap.Get(name); ok {
			result.matched = append(result.matched, matchedPair{old: oldNode, new: newNode})
		} else {
			result.removed = append(result.removed, oldNode)
		}
		return true
	})

	newMap.Range(func(name string, newNode *model.AnalyzableNode) bool {
		if _, ok := oldMap.Get(name); !ok {
			result.added = append(result.added, newNode)
		}
		return true
	})

	return result
}

// renamePair is a committed rename candidate.
type renamePair struct {
	old        *model.AnalyzableNode
	new        *model.AnalyzableNode
	confidence float64
}

// detectRenames scores every same-kind (removed, added) pair and greedily
// commits the best-scoring pairs above the threshold. The result keeps the
// removed list's order so downstream output stays deterministic.
func detectRenames(removed, added []*model.AnalyzableNode, threshold float64) []renamePair {
	if len(removed) == 0 || len(added) == 0 {
		return nil
	}

	// Candidate lookup indexed by kind keeps the pass tractable on large
	// modules.
	addedByKind := make(map[model.NodeKind][]*model.AnalyzableNode)
	for _, n := range added {
		addedByKind[n.Kind] = append(addedByKind[n.Kind], n)
	}

	var candidates []renamePair
	for _, oldNode := range removed {
		for _, newNode := range addedByKind[oldNode.Kind] {
			score := renameScore(oldNode, newNode)
			if score >= threshold {
				candidates = append(candidates, renamePair{old: oldNode, new: newNode, confidence: score})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		if candidates[i].old.Path != candidates[j].old.Path {
			return candidates[i].old.Path < candidates[j].old.Path
		}
		return candidates[i].new.Path < candidates[j].new.Path
	})

	usedOld := make(map[*model.AnalyzableNode]bool, len(removed))
	usedNew := make(map[*model.AnalyzableNode]bool, len(added))
	committed := make(map[*model.AnalyzableNode]renamePair, len(removed))
	for _, c := range candidates {
		if usedOld[c.old] || usedNew[c.new] {
			continue
		}
		usedOld[c.old] = true
		usedNew[c.new] = true
		committed[c.old] = c
	}

	var out []renamePair
	for _, oldNode := range removed {
		if pair, ok := committed[oldNode]; ok {
			out = append(out, pair)
		}
	}
	return out
}

// renameScore is the weighted similarity between a removed and an added
// node: 0.4 name, 0.4 signature, 0.1 modifiers, 0.1 children count.
func renameScore(oldNode, newNode *model.AnalyzableNode) float64 {
	name := params.NameSimilarity(oldNode.Name, newNode.Name)
	signature := signatureSimilarity(oldNode.TypeInfo.Signature, newNode.TypeInfo.Signature)
	modifiers := oldNode.Modifiers.Jaccard(newNode.Modifiers)
	children := childCountSimilarity(oldNode.ChildCount(), newNode.ChildCount())

	return 0.4*name + 0.4*signature + 0.1*modifiers + 0.1*children
}

func signatureSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	na, nb := model.NormalizeSignature(a), model.NormalizeSignature(b)
	if na == nb {
		return 0.95
	}
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	score := 1 - float64(params.EditDistance(na, nb))/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

func childCountSimilarity(a, b int) float64 {
	if a == b {
		return 1
	}
	if a == 0 || b == 0 {
		return 0
	}
	if a < b {
		return float64(a) / float64(b)
	}
	return float64(b) / float64(a)
}
