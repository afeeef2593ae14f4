package pocket

import (
	"errors"

	"github.com/paulhankin/pocket/geom"
	"github.com/paulhankin/pocket/offset"
)

// exactFitEps is how far inside the nominal first pass depth the
// planner retries when a pocket is exactly one tool width across and
// the nominal pass collapses to nothing.
const exactFitEps = 0.05

// Statistics summarizes a toolpath plan.
type Statistics struct {
	TotalLengthMM      float64        `json:"total_length_mm"`
	CutLengthMM        float64        `json:"cut_length_mm"`
	SweptAreaMM2       float64        `json:"swept_area_mm2"`
	EstimatedVolumeMM3 float64        `json:"estimated_volume_mm3"`
	MoveCount          int            `json:"move_count"`
	EstimatedTimeS     float64        `json:"estimated_time_s"`
	Passes             int            `json:"passes"`
	Bottlenecks        map[string]int `json:"bottleneck_histogram"`
}

// A ToolpathPlan is the finished move sequence plus its statistics.
// It is immutable once returned: feed annotation happened in place
// during planning, and nothing in the engine retains a reference.
type ToolpathPlan struct {
	Moves []Move     `json:"moves"`
	Stats Statistics `json:"stats"`
}

// Plan converts a boundary region and machining parameters into a
// toolpath. It is a pure function: no I/O, no shared state, and
// identical inputs always produce identical plans.
//
// Parameter errors (*ParameterError) are returned before any
// geometry work. Geometry errors (*geom.Error) abort the pipeline:
// no partial toolpath is better than a wrong one. A degenerate
// offset on pass 0 means the tool does not fit the pocket.
func Plan(region geom.Region, params Params) (*ToolpathPlan, error) {
	p := params.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	toolR := p.ToolDiameter / 2
	distances := make([]float64, 0, p.MaxPasses)
	for i := 0; i < p.MaxPasses; i++ {
		distances = append(distances, p.Margin+toolR+float64(i)*p.step())
	}

	opts := offset.Options{JoinTolerance: p.SmoothingTol}
	fam, err := offset.Region(region, distances, opts)
	if err != nil {
		var gerr *geom.Error
		switch {
		case errors.As(err, &gerr) && gerr.Kind == geom.Degenerate && gerr.Pass > 0:
			// the innermost pass collapsed: the pocket is fully
			// covered by the passes we already have
		case errors.As(err, &gerr) && gerr.Kind == geom.Degenerate && gerr.Pass == 0:
			// a pocket exactly one tool width across collapses on the
			// first pass even though the tool fits it; retry a single
			// fractionally shallower pass along the medial line
			// before concluding the tool does not fit
			fam2, err2 := offset.Region(region, []float64{distances[0] - exactFitEps}, opts)
			if err2 != nil {
				return nil, err
			}
			fam = fam2
		default:
			return nil, err
		}
	}
	if fam == nil || len(fam.Levels) == 0 {
		return nil, err
	}

	path := buildPath(fam, p)
	walls := append([]geom.Loop{region.Outer}, region.Islands...)
	path = insertTrochoids(path, p, walls)
	moves := movesFromPath(path, p)
	moves = FitArcs(moves, p.ChordError)
	fstats := AnnotateFeed(moves, p.Feed, p.Limits)

	swept, aerr := offset.ClearedArea(region, p.Margin, toolR, opts)
	if aerr != nil {
		return nil, aerr
	}

	stats := Statistics{
		SweptAreaMM2:       swept,
		EstimatedVolumeMM3: swept * p.Stepdown,
		MoveCount:          len(moves),
		EstimatedTimeS:     fstats.TimeS,
		Passes:             len(fam.Levels),
		Bottlenecks:        map[string]int{},
	}
	for k, c := range fstats.Histogram {
		stats.Bottlenecks[k.String()] = c
	}
	for _, m := range moves {
		l := m.Length()
		stats.TotalLengthMM += l
		if m.IsCut() {
			stats.CutLengthMM += l
		}
	}
	return &ToolpathPlan{Moves: moves, Stats: stats}, nil
}
