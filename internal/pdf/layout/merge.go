package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

// defaultFontSize is used when a glyph carries no font size
const defaultFontSize = 12.0

// MergeConfig controls how glyphs are joined into text fragments. Ratios are
// relative to the glyph font size.
type MergeConfig struct {
	// BaselineRatio is the largest baseline shift still treated as the same line
	BaselineRatio float64
	// SpaceRatio is the gap above which a space is inserted between glyphs
	SpaceRatio float64
	// BreakRatio is the gap above which a new fragment starts
	BreakRatio float64
	// MergeLines joins vertically stacked lines into one box, the way a
	// multi-line table cell is rendered
	MergeLines bool
	// LineGapRatio is the largest vertical gap between stacked lines of a box
	LineGapRatio float64
}

// DefaultMergeConfig returns merge settings suited to timetable grids
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		BaselineRatio: 0.3,
		SpaceRatio:    0.15,
		BreakRatio:    1.0,
		MergeLines:    true,
		LineGapRatio:  0.6,
	}
}

type run struct {
	text     strings.Builder
	x0, x1   float64
	baseline float64
	fontSize float64
}

type line struct {
	text     string
	x0, x1   float64
	y0, y1   float64
	fontSize float64
}

// MergeGlyphs joins positioned glyphs, in content stream order, into text
// fragments.
func MergeGlyphs(glyphs []pdf.Text, cfg MergeConfig) []timetable.TextFragment {
	lines := mergeRuns(glyphs, cfg)
	if cfg.MergeLines {
		lines = stackLines(lines, cfg)
	}

	fragments := make([]timetable.TextFragment, 0, len(lines))
	for _, l := range lines {
		fragments = append(fragments, timetable.TextFragment{
			Text: l.text,
			X0:   l.x0,
			Y0:   l.y0,
			X1:   l.x1,
			Y1:   l.y1,
		})
	}
	return fragments
}

func mergeRuns(glyphs []pdf.Text, cfg MergeConfig) []line {
	var (
		lines []line
		cur   *run
	)

	flush := func() {
		if cur == nil {
			return
		}
		text := strings.TrimSpace(cur.text.String())
		if text != "" {
			lines = append(lines, line{
				text:     text,
				x0:       cur.x0,
				x1:       cur.x1,
				y0:       cur.baseline,
				y1:       cur.baseline + cur.fontSize,
				fontSize: cur.fontSize,
			})
		}
		cur = nil
	}

	for _, g := range glyphs {
		size := g.FontSize
		if size <= 0 {
			size = defaultFontSize
		}

		if cur != nil {
			gap := g.X - cur.x1
			sameLine := math.Abs(g.Y-cur.baseline) <= cur.fontSize*cfg.BaselineRatio
			if !sameLine || gap > cur.fontSize*cfg.BreakRatio || gap < -cur.fontSize {
				flush()
			} else if gap > cur.fontSize*cfg.SpaceRatio && !strings.HasSuffix(cur.text.String(), " ") && g.S != " " {
				cur.text.WriteByte(' ')
			}
		}

		if cur == nil {
			if strings.TrimSpace(g.S) == "" {
				continue
			}
			cur = &run{x0: g.X, x1: g.X, baseline: g.Y, fontSize: size}
		}

		cur.text.WriteString(g.S)
		cur.x0 = math.Min(cur.x0, g.X)
		cur.x1 = math.Max(cur.x1, g.X+g.W)
		cur.fontSize = math.Max(cur.fontSize, size)
	}
	flush()

	return lines
}

// stackLines merges each line into the box directly above it when the two
// overlap horizontally by at least half of the narrower one.
func stackLines(lines []line, cfg MergeConfig) []line {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	// top to bottom, then left to right
	sort.SliceStable(order, func(a, b int) bool {
		la, lb := lines[order[a]], lines[order[b]]
		if la.y1 != lb.y1 {
			return la.y1 > lb.y1
		}
		return la.x0 < lb.x0
	})

	var boxes []line
	for _, idx := range order {
		l := lines[idx]
		merged := false
		for b := range boxes {
			box := &boxes[b]
			gap := box.y0 - l.y1
			if gap < -l.fontSize*cfg.BaselineRatio || gap > l.fontSize*cfg.LineGapRatio {
				continue
			}
			overlap := math.Min(box.x1, l.x1) - math.Max(box.x0, l.x0)
			narrower := math.Min(box.x1-box.x0, l.x1-l.x0)
			if narrower <= 0 || overlap < narrower/2 {
				continue
			}
			box.text += "\n" + l.text
			box.x0 = math.Min(box.x0, l.x0)
			box.x1 = math.Max(box.x1, l.x1)
			box.y0 = math.Min(box.y0, l.y0)
			merged = true
			break
		}
		if !merged {
			boxes = append(boxes, l)
		}
	}
	return boxes
}
