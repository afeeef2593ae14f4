package pocket

// movesFromPath materializes the ordered path as a move list.
// Every rapid is physically safe: retract to SafeZ, traverse at
// SafeZ, plunge to CutZ, then the optional spindle-recovery dwell.
func movesFromPath(path OrderedPath, p Params) []Move {
	var moves []Move
	if len(path.Pts) == 0 {
		return moves
	}
	pos := path.Pts[0].P
	atCut := false

	enter := func(pt PathPoint) {
		if atCut {
			moves = append(moves, Move{Kind: Rapid, Start: pos, End: pos, Z: p.SafeZ})
		}
		moves = append(moves, Move{Kind: Rapid, Start: pos, End: pt.P, Z: p.SafeZ})
		moves = append(moves, Move{Kind: Linear, Start: pt.P, End: pt.P, Z: p.CutZ})
		if p.EntryDwellS > 0 {
			moves = append(moves, Move{Kind: Dwell, Start: pt.P, End: pt.P, Z: p.CutZ, DwellS: p.EntryDwellS})
		}
		pos = pt.P
		atCut = true
	}

	for i, pt := range path.Pts {
		if i == 0 || pt.Rapid {
			enter(pt)
			continue
		}
		if pt.P == pos {
			continue
		}
		moves = append(moves, Move{
			Kind:       Linear,
			Start:      pos,
			End:        pt.P,
			Z:          p.CutZ,
			Engagement: pt.Engagement,
		})
		pos = pt.P
	}
	if atCut {
		moves = append(moves, Move{Kind: Rapid, Start: pos, End: pos, Z: p.SafeZ})
	}
	return moves
}
