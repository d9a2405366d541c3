package gemini

import "google.golang.org/genai"

// promptData is passed to the prompt template.
type promptData struct {
	Prompt string
	Text   string
	Format string
}

// gradeResponse is the JSON object the model is asked to return.
type gradeResponse struct {
	Overall             float64 `json:"overall"`
	GrammaticalAccuracy float64 `json:"grammatical_accuracy"`
	CoherenceCohesion   float64 `json:"coherence_cohesion"`
	LexicalResource     float64 `json:"lexical_resource"`
	TaskAchievement     float64 `json:"task_achievement"`
	Feedback            string  `json:"feedback"`
}

func bandSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: description}
}

// responseSchema constrains the model output to gradeResponse.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overall":              bandSchema("overall band, 0-9 in 0.5 steps"),
		"grammatical_accuracy": bandSchema("grammatical range and accuracy band"),
		"coherence_cohesion":   bandSchema("coherence and cohesion band"),
		"lexical_resource":     bandSchema("lexical resource band"),
		"task_achievement":     bandSchema("task achievement or task response band"),
		"feedback":             {Type: genai.TypeString, Description: "short examiner feedback"},
	},
	Required: []string{
		"overall", "grammatical_accuracy", "coherence_cohesion",
		"lexical_resource", "task_achievement", "feedback",
	},
}
