package pipeline

import (
	"fmt"
	"strings"
)

// Result holds the five stage outputs and the assembled document.
// Outputs are immutable once the executor returns.
type Result struct {
	Outputs          map[Stage]string
	CombinedMarkdown string
}

var sectionTitles = map[Stage]string{
	StageNotes:          "Structured Class Notes",
	StageMisconceptions: "Likely Misconceptions",
	StagePractice:       "Practice & Challenges",
	StageResources:      "Real-life Applications & Resources",
	StageActions:        "Actions & Feedback",
}

// combine concatenates the stage outputs under fixed headings in the fixed
// document order.
func combine(outputs map[Stage]string) string {
	var b strings.Builder
	b.WriteString("# Class Tutor - Combined Output\n\n")
	for _, st := range stageOrder {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", sectionTitles[st], strings.TrimSpace(outputs[st]))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
