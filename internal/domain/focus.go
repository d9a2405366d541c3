package domain

// FocusArea tags the skill dimension a phase or topic trains.
type FocusArea string

// Focus areas, listed in foundation order.
const (
	FocusGrammaticalAccuracy FocusArea = "grammatical_accuracy"
	FocusCoherenceCohesion   FocusArea = "coherence_cohesion"
	FocusLexicalResource     FocusArea = "lexical_resource"
	FocusTaskAchievement     FocusArea = "task_achievement"
	FocusOverall             FocusArea = "overall"
)

// FocusOrder is the fixed foundation ordering used for planning and tie-breaking.
var FocusOrder = []FocusArea{
	FocusGrammaticalAccuracy,
	FocusCoherenceCohesion,
	FocusLexicalResource,
	FocusTaskAchievement,
	FocusOverall,
}

// FoundationalAreas are the graded sub-skill dimensions, i.e. every area except Overall.
var FoundationalAreas = FocusOrder[:4]

// Rank returns the position of f in FocusOrder, or len(FocusOrder) if unknown.
func (f FocusArea) Rank() int {
	for i, area := range FocusOrder {
		if area == f {
			return i
		}
	}
	return len(FocusOrder)
}

// Valid reports whether f is a known focus area.
func (f FocusArea) Valid() bool {
	return f.Rank() < len(FocusOrder)
}

// Label is the human-readable name used in titles and summaries.
func (f FocusArea) Label() string {
	switch f {
	case FocusGrammaticalAccuracy:
		return "Grammatical Range and Accuracy"
	case FocusCoherenceCohesion:
		return "Coherence and Cohesion"
	case FocusLexicalResource:
		return "Lexical Resource"
	case FocusTaskAchievement:
		return "Task Achievement"
	case FocusOverall:
		return "Overall"
	default:
		return string(f)
	}
}
