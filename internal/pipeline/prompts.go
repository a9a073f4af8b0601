package pipeline

import "fmt"

// Input is the material one pipeline run works from.
type Input struct {
	Transcript   string
	StudentLevel string
	StudentGoal  string
}

// stagePrompt is the formatted system+user pair for a single call.
type stagePrompt struct {
	system string
	user   string
}

const notesSystem = `You are a structured class notes generator.
Convert a classroom transcript into clean, structured notes a student can revise from.

Guidelines:
- Focus only on the content of this specific class session.
- Use clear, simple language suitable for the given student level.
- Be information-dense but not wordy.
- Do NOT invent topics that are not implied by the transcript.
- Include: a short summary, section-wise notes with titles, a small glossary,
  a formula list (if any), and an index of examples discussed.`

const misconceptionsSystem = `You are a misconception detector.
Look only at the class transcript and point out likely misconceptions, typical
mistakes, and confusion points.

For each misconception: name it, explain why it is wrong, and give the correct
explanation clearly. Use simple language suitable for the student level.
Do NOT invent far-fetched misconceptions. Stay realistic.`

const practiceSystem = `You are a practice and challenges generator.
Design questions and solutions based on the notes and misconceptions.

Requirements:
- Focus on understanding, not rote.
- Mix concept-check MCQs, short-answer questions, one or two deeper reasoning
  questions, and one or two application problems where possible.
- For each question, give a clear solution or marking scheme.
- Pay special attention to the misconceptions and design questions to fix them.`

const resourcesSystem = `You are a real-life applications and resources generator.
Connect the class concepts to real-life applications and suggest high-quality
resources (articles, docs, YouTube videos).

For each main concept in the notes, give one or two real-life applications in
simple language and list one to three resources with direct URLs, marking each
Beginner / Intermediate / Advanced. Prefer short videos and trustworthy
sources. Do NOT invent concepts not in the notes.`

const actionsSystem = `You are an actions and feedback coach.
Turn the notes and misconceptions into a short, realistic study plan, concrete
next actions, and encouraging but honest feedback.

Be specific and actionable, use simple language, and keep the plan short
enough to follow in real life.`

// buildPrompt formats the stage-specific prompt from its dependency outputs.
// Callers must only pass outputs for dependencies that have completed; the
// eligibility rule in the executor guarantees that.
func buildPrompt(stage Stage, in Input, outputs map[Stage]string) stagePrompt {
	switch stage {
	case StageNotes:
		return stagePrompt{
			system: notesSystem,
			user: fmt.Sprintf(
				"Student level: %s\nStudent goal: %s\n\nTranscript:\n\"\"\"%s\"\"\"\n\nProduce the full detailed notes with sections: Summary, Section-wise Notes, Glossary, Formulas, Example Index.",
				in.StudentLevel, in.StudentGoal, in.Transcript),
		}
	case StageMisconceptions:
		return stagePrompt{
			system: misconceptionsSystem,
			user: fmt.Sprintf(
				"Student level: %s\n\nTranscript:\n\"\"\"%s\"\"\"\n\nNotes:\n\"\"\"%s\"\"\"\n\nList the likely misconceptions, each with why students might think it, why it is wrong, and the correct explanation.",
				in.StudentLevel, in.Transcript, outputs[StageNotes]),
		}
	case StagePractice:
		return stagePrompt{
			system: practiceSystem,
			user: fmt.Sprintf(
				"Student level: %s\nStudent goal: %s\n\nNotes:\n\"\"\"%s\"\"\"\n\nMisconceptions:\n\"\"\"%s\"\"\"\n\nProduce a practice set with parts: Concept Check (MCQs), Short Answer, Reasoning / Derivation, Application.",
				in.StudentLevel, in.StudentGoal, outputs[StageNotes], outputs[StageMisconceptions]),
		}
	case StageResources:
		return stagePrompt{
			system: resourcesSystem,
			user: fmt.Sprintf(
				"Student level: %s\nStudent goal: %s\n\nNotes:\n\"\"\"%s\"\"\"\n\nFor each concept give real-life applications and resources with URLs and difficulty levels.",
				in.StudentLevel, in.StudentGoal, outputs[StageNotes]),
		}
	case StageActions:
		return stagePrompt{
			system: actionsSystem,
			user: fmt.Sprintf(
				"Student level: %s\nStudent goal: %s\n\nNotes:\n\"\"\"%s\"\"\"\n\nMisconceptions:\n\"\"\"%s\"\"\"\n\nProduce: a study plan for the next 4 days, how to use the notes and practice, common pitfalls to avoid, and a short motivational but realistic message.",
				in.StudentLevel, in.StudentGoal, outputs[StageNotes], outputs[StageMisconceptions]),
		}
	}
	return stagePrompt{}
}
