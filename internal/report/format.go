package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

const rule = "======================================================================"

// Print writes a human-readable summary
func Print(w io.Writer, s Summary) {
	if s.Scenes == 0 {
		fmt.Fprintln(w, "\nNo scenes processed.")
		printFailures(w, s)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SAMPLING STATISTICS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\nTotal scenes processed: %s\n", humanize.Comma(int64(s.Scenes)))

	printCategory(w, "Objects", s.Objects)

	fmt.Fprintln(w, "\nAgent objects (always included):")
	fmt.Fprintf(w, "  Found in data: %s\n", humanize.Comma(int64(s.Agents.Found)))
	fmt.Fprintf(w, "  Included in samples: %s\n", humanize.Comma(int64(s.Agents.Included)))
	if s.Agents.Found > 0 {
		fmt.Fprintf(w, "  Inclusion rate: %.1f%%\n", s.Agents.InclusionRate*100)
	}

	printCategory(w, "Relationships", s.Relationships)
	printCategory(w, "Attributes", s.Attributes)

	fmt.Fprintln(w, "\nRelationship reduction by scene:")
	fmt.Fprintf(w, "  Min: %s\n", humanize.Comma(int64(s.RelationshipReduction.Min)))
	fmt.Fprintf(w, "  Max: %s\n", humanize.Comma(int64(s.RelationshipReduction.Max)))
	fmt.Fprintf(w, "  Avg: %.1f\n", s.RelationshipReduction.Mean)

	fmt.Fprintf(w, "\nTop %d scenes with most relationships (after sampling):\n", len(s.TopScenes))
	for i, st := range s.TopScenes {
		fmt.Fprintf(w, "  %d. %s: %s relationships (%d objects)\n",
			i+1, sceneLabel(st), humanize.Comma(int64(st.Relationships.Sampled)), st.Objects.Sampled)
	}

	printFailures(w, s)
	fmt.Fprintln(w, rule)
}

func printCategory(w io.Writer, name string, c CategorySummary) {
	fmt.Fprintf(w, "\n%s:\n", name)
	fmt.Fprintf(w, "  Original: %s (%.1f avg per scene)\n", humanize.Comma(int64(c.Original)), c.AvgOriginal)
	fmt.Fprintf(w, "  Sampled:  %s (%.1f avg per scene)\n", humanize.Comma(int64(c.Sampled)), c.AvgSampled)
	fmt.Fprintf(w, "  Reduction: %s (%.1f%%)\n", humanize.Comma(int64(c.Reduction)), c.ReductionRatio*100)
}

func printFailures(w io.Writer, s Summary) {
	if len(s.FailedScenes) == 0 {
		return
	}
	fmt.Fprintf(w, "\nFailed scenes (%d): %s\n", len(s.FailedScenes), strings.Join(s.FailedScenes, ", "))
}

func sceneLabel(st SceneStats) string {
	if st.Dataset == "" {
		return st.SceneID
	}
	return st.Dataset + "/" + st.SceneID
}
