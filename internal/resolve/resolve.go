// Package resolve implements overload resolution: given a call site's
// argument types and a set of candidate signatures (user functions,
// then the intrinsic catalog), it picks the single best match by
// comparing per-argument conversion-rank vectors (spec §4.H).
package resolve

import (
	"sort"

	"github.com/hugodaniel/fx/internal/builtins"
	"github.com/hugodaniel/fx/internal/types"
)

// Candidate is one callable signature competing for a call site: a
// user-declared function (Decl valid, Op == builtins.OpNone) or an
// intrinsic overload (Op set, Decl invalid).
type Candidate struct {
	Params []types.Type
	Return types.Type
	Decl   int32 // ast.DeclRef as an int32, kept untyped here to avoid an ast import cycle
	Op     builtins.Opcode
}

// Result is the outcome of resolving a call.
type Result struct {
	// Found is true when exactly one viable candidate won.
	Found bool
	// Ambiguous is true when two or more candidates tied for best.
	Ambiguous bool
	Winner    Candidate
}

// rankVector holds one candidate's per-argument ranks, sorted
// descending, alongside the candidate it was computed for.
type rankVector struct {
	ranks     []uint32
	candidate Candidate
	viable    bool
}

// Resolve picks the best candidate for a call with the given argument
// types. A candidate is non-viable (rank 0 on some argument, or a
// parameter count mismatch) and loses to any viable one. Equal rank
// vectors among the surviving candidates produce Result.Ambiguous.
func Resolve(args []types.Type, candidates []Candidate) Result {
	vectors := make([]rankVector, 0, len(candidates))
	for _, c := range candidates {
		vectors = append(vectors, rankOf(args, c))
	}

	best := -1
	ambiguous := false
	for i, v := range vectors {
		if !v.viable {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		switch compareRankVectors(v.ranks, vectors[best].ranks) {
		case -1:
			best = i
			ambiguous = false
		case 0:
			ambiguous = true
		}
	}

	if best == -1 {
		return Result{}
	}
	return Result{Found: !ambiguous, Ambiguous: ambiguous, Winner: vectors[best].candidate}
}

func rankOf(args []types.Type, c Candidate) rankVector {
	if len(args) != len(c.Params) {
		return rankVector{candidate: c, viable: false}
	}
	ranks := make([]uint32, len(args))
	viable := true
	for i, a := range args {
		r := types.Rank(a, c.Params[i])
		if r == 0 {
			viable = false
		}
		ranks[i] = r
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })
	return rankVector{ranks: ranks, candidate: c, viable: viable}
}

// compareRankVectors lexicographically compares two equal-length,
// descending-sorted rank vectors. Returns -1 if a wins (is smaller),
// 1 if b wins, 0 if they are equal (ambiguous).
func compareRankVectors(a, b []uint32) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
