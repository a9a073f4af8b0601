package pipeline

// Stage is one node of the fixed study-guide generation graph.
type Stage string

const (
	StageNotes          Stage = "notes"
	StageMisconceptions Stage = "misconceptions"
	StagePractice       Stage = "practice"
	StageResources      Stage = "resources"
	StageActions        Stage = "actions"
)

// stageOrder is the fixed presentation order of the combined document.
var stageOrder = []Stage{
	StageNotes,
	StageMisconceptions,
	StagePractice,
	StageResources,
	StageActions,
}

// stageDeps is the dependency edge set. A stage becomes eligible once
// every listed dependency has produced output; stages with simultaneously
// satisfied dependencies run concurrently.
var stageDeps = map[Stage][]Stage{
	StageNotes:          nil,
	StageMisconceptions: {StageNotes},
	StagePractice:       {StageNotes, StageMisconceptions},
	StageResources:      {StageNotes},
	StageActions:        {StageNotes, StageMisconceptions},
}

// StageConfig picks the model and provider for one stage.
type StageConfig struct {
	Model    string
	Provider string
}

// Stages returns the graph nodes in document order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}
