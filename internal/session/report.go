package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/driftwatch/internal/classify"
	"github.com/dshills/driftwatch/internal/config"
	"github.com/dshills/driftwatch/internal/diff"
	"github.com/dshills/driftwatch/internal/fold"
)

// comparison bundles everything derived from one report's baseline and
// content.
type comparison struct {
	entries []diff.Entry
	unified string
	folds   *fold.Pair
	deleted int
	added   int
}

func compare(rep classify.Report, cfg config.Config) comparison {
	aLines := diff.Lines(rep.Baseline)
	bLines := diff.Lines(rep.Content)
	entries := diff.Diff(aLines, bLines)
	blocks := diff.Blocks(entries, aLines, bLines)

	// Blocks from Diff are ordered and in range, so Ranges cannot fail.
	folds, err := fold.NewPair(aLines, bLines, blocks, cfg.Fold.Margin, cfg.Fold.MinSize)
	if err != nil {
		folds = &fold.Pair{}
	}

	deleted, added := diff.Stats(entries)
	return comparison{
		entries: entries,
		unified: diff.Unified("baseline", "disk", entries, cfg.Diff.Context),
		folds:   folds,
		deleted: deleted,
		added:   added,
	}
}

// renderText formats a report for terminal output.
func renderText(rep classify.Report, cfg config.Config) string {
	cmp := compare(rep, cfg)

	var sb strings.Builder
	kind := "external change"
	if rep.Accumulated {
		kind = "external change (accumulated)"
	}
	fmt.Fprintf(&sb, "== %s: %s\n", kind, rep.Path)
	fmt.Fprintf(&sb, "   id %s at %s, +%d -%d lines\n",
		rep.ID, rep.Time.Format(time.RFC3339), cmp.added, cmp.deleted)

	sb.WriteString(cmp.unified)

	baseRanges := cmp.folds.Side(fold.SideA)
	diskRanges := cmp.folds.Side(fold.SideB)
	for i, r := range baseRanges {
		fmt.Fprintf(&sb, "   unchanged: baseline %d-%d / disk %d-%d (%d lines, folded)\n",
			r.From, r.To, diskRanges[i].From, diskRanges[i].To, r.Lines)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderJSON formats a report as a single JSON object.
func renderJSON(rep classify.Report, cfg config.Config) string {
	cmp := compare(rep, cfg)

	out := "{}"
	out, _ = sjson.Set(out, "id", rep.ID.String())
	out, _ = sjson.Set(out, "path", rep.Path)
	out, _ = sjson.Set(out, "time", rep.Time.Format(time.RFC3339Nano))
	out, _ = sjson.Set(out, "accumulated", rep.Accumulated)
	out, _ = sjson.Set(out, "stats.added", cmp.added)
	out, _ = sjson.Set(out, "stats.deleted", cmp.deleted)
	out, _ = sjson.Set(out, "diff", cmp.unified)

	out, _ = sjson.SetRaw(out, "folds", "[]")
	baseRanges := cmp.folds.Side(fold.SideA)
	diskRanges := cmp.folds.Side(fold.SideB)
	for i, r := range baseRanges {
		prefix := fmt.Sprintf("folds.%d", i)
		out, _ = sjson.Set(out, prefix+".lines", r.Lines)
		out, _ = sjson.Set(out, prefix+".folded", r.Folded)
		out, _ = sjson.Set(out, prefix+".baseline.from", r.From)
		out, _ = sjson.Set(out, prefix+".baseline.to", r.To)
		out, _ = sjson.Set(out, prefix+".disk.from", diskRanges[i].From)
		out, _ = sjson.Set(out, prefix+".disk.to", diskRanges[i].To)
	}
	return out
}
