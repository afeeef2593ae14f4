// Command pocketgcode machines a 2d pocket: it reads boundary loops
// from an SVG file (the largest loop is the pocket wall, the rest
// are islands), plans an adaptive clearing toolpath, and writes
// G-code for the selected machine dialect.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/paulhankin/pocket"
	"github.com/paulhankin/pocket/gcode"
	"github.com/paulhankin/pocket/geom"
	"github.com/paulhankin/pocket/svgio"
)

// flags
var (
	flagIn      string
	flagOut     string
	flagPost    string
	flagPreview string
	flagStats   bool

	flagTool     float64
	flagStepover float64
	flagMargin   float64
	flagStepdown float64
	flagStrategy string
	flagSmooth   float64
	flagChord    float64
	flagEngage   float64

	flagFeed    float64
	flagMaxFeed float64
	flagRapid   float64
	flagAccel   float64
	flagJerk    float64

	flagSafeZ float64
	flagCutZ  float64
	flagDwell float64
)

func init() {
	flag.StringVar(&flagIn, "in", "", "svg input file with boundary loops")
	flag.StringVar(&flagOut, "out", "out.gcode", "gcode output file")
	flag.StringVar(&flagPost, "post", "", "machine dialect config (json); empty for a generic post")
	flag.StringVar(&flagPreview, "preview", "", "also write an svg preview of the toolpath")
	flag.BoolVar(&flagStats, "stats", false, "print plan statistics as json to stdout")

	flag.Float64Var(&flagTool, "tool", 6, "tool diameter (mm)")
	flag.Float64Var(&flagStepover, "stepover", 0.45, "stepover as a fraction of tool diameter")
	flag.Float64Var(&flagMargin, "margin", 0, "clearance left at the boundary (mm)")
	flag.Float64Var(&flagStepdown, "stepdown", 0, "depth per pass for the volume estimate (mm)")
	flag.StringVar(&flagStrategy, "strategy", "spiral", "clearing strategy: spiral or lanes")
	flag.Float64Var(&flagSmooth, "smooth", 0.02, "path smoothing tolerance (mm)")
	flag.Float64Var(&flagChord, "chord", 0, "arc fitting chord error (mm); 0 uses -smooth")
	flag.Float64Var(&flagEngage, "engage", 0, "trochoidal engagement threshold (% of tool diameter); 0 disables")

	flag.Float64Var(&flagFeed, "feed", 800, "cutting feed rate (mm/min)")
	flag.Float64Var(&flagMaxFeed, "maxfeed", 0, "machine feed cap (mm/min); 0 uses -feed")
	flag.Float64Var(&flagRapid, "rapid", 0, "rapid feed rate (mm/min); 0 uses -maxfeed")
	flag.Float64Var(&flagAccel, "accel", 500, "max acceleration (mm/s^2)")
	flag.Float64Var(&flagJerk, "jerk", 1e5, "max jerk (mm/s^3)")

	flag.Float64Var(&flagSafeZ, "safez", 5, "retract height (mm)")
	flag.Float64Var(&flagCutZ, "cutz", -1, "cutting height (mm)")
	flag.Float64Var(&flagDwell, "dwell", 0, "dwell after each plunge (seconds)")
}

// genericPost is used when no -post file is given.
var genericPost = &gcode.Config{
	Header: []string{"G21", "G90", "G17"},
	Footer: []string{"M2"},
}

func main() {
	fail := func(s string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, s+"\n", args...)
		os.Exit(2)
	}

	flag.Parse()
	if flagIn == "" {
		fail("must specify -in <svg file>")
	}

	var strategy pocket.Strategy
	switch flagStrategy {
	case "spiral":
		strategy = pocket.Spiral
	case "lanes":
		strategy = pocket.Lanes
	default:
		fail("unknown -strategy %q (want spiral or lanes)", flagStrategy)
	}

	cfg := genericPost
	if flagPost != "" {
		f, err := os.Open(flagPost)
		if err != nil {
			fail("failed to open post config: %v", err)
		}
		c, err := gcode.ReadConfig(f)
		f.Close()
		if err != nil {
			fail("%v", err)
		}
		cfg = c
	}

	loops, err := func() ([]geom.Loop, error) {
		f, err := os.Open(flagIn)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return svgio.FromSVG(f)
	}()
	if err != nil {
		fail("failed to read boundary: %v", err)
	}
	region, err := svgio.Region(loops)
	if err != nil {
		fail("bad boundary geometry: %v", err)
	}

	plan, err := pocket.Plan(region, pocket.Params{
		ToolDiameter:         flagTool,
		Stepover:             flagStepover,
		Margin:               flagMargin,
		Stepdown:             flagStepdown,
		Strategy:             strategy,
		SmoothingTol:         flagSmooth,
		ChordError:           flagChord,
		Feed:                 flagFeed,
		TrochoidThresholdPct: flagEngage,
		SafeZ:                flagSafeZ,
		CutZ:                 flagCutZ,
		EntryDwellS:          flagDwell,
		Limits: pocket.KinematicLimits{
			MaxFeed:   flagMaxFeed,
			RapidFeed: flagRapid,
			MaxAccel:  flagAccel,
			MaxJerk:   flagJerk,
		},
	})
	if err != nil {
		fail("planning failed: %v", err)
	}

	out, err := os.Create(flagOut)
	if err != nil {
		fail("failed to open gcode output file: %v", err)
	}
	w := gcode.NewWriter(out, cfg)
	w.Preamble()
	for _, m := range plan.Moves {
		w.Move(m)
	}
	w.Postamble()
	if err := w.Flush(); err != nil {
		fail("failed to write gcode: %v", err)
	}
	if err := out.Close(); err != nil {
		fail("failed to write gcode: %v", err)
	}

	if flagPreview != "" {
		pf, err := os.Create(flagPreview)
		if err != nil {
			fail("failed to open preview file: %v", err)
		}
		err = svgio.WriteSVG(pf, plan.Moves)
		if err == nil {
			err = pf.Close()
		}
		if err != nil {
			fail("failed to write preview: %v", err)
		}
	}

	if flagStats {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan.Stats); err != nil {
			fail("failed to write stats: %v", err)
		}
	}
}
