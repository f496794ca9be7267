package engine

// etcMinDepthEval and etcMinDepthPerfect gate Enhanced Transposition
// Cutoff: below these the table is too sparsely populated at the child
// depth to make the extra lookups worthwhile.
const (
	etcMinDepthEval    = 8
	etcMinDepthPerfect = 12
)

// ttMoveBonus is added to the ordering score of a child found in the
// transposition table so it is tried ahead of same-scored siblings.
const ttMoveBonus = 5

// applyETC looks up each already-generated child in the transposition
// table at childDepth/selectivity (depth-1 for evaluation search,
// DepthExact for perfect search). A child's stored bounds [l, u] become
// [-u, -l] from the parent's side: if -u already reaches beta the parent
// fails high immediately; if -l cannot reach alpha (or the child's value
// is already pinned exactly) the child is marked Skip so the main search
// loop passes over it. Children found in the table also get ttMoveBonus
// on their ordering score so they are tried first.
func applyETC(se *SearchEngine, children []MoveBoard, alpha, beta int32, childDepth, selectivity int) (int32, bool) {
	for i := range children {
		if children[i].Skip {
			continue
		}
		entry, ok := se.TT.Get(children[i].Position.Player, children[i].Position.Opponent)
		if !ok || int(entry.depth) != childDepth || int(entry.selectivity) != selectivity {
			continue
		}
		children[i].Score += ttMoveBonus
		parentLower := -int32(entry.upper)
		parentUpper := -int32(entry.lower)
		if parentLower >= beta {
			return parentLower, true
		}
		if parentUpper <= alpha || entry.lower == entry.upper {
			children[i].Skip = true
		}
	}
	return 0, false
}
