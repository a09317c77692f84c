package itemgen

import (
	"maps"

	"github.com/abhisek/examprep/internal/llm"
)

var stringArray = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

var intArray = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "integer", "minimum": 0},
}

// BatchSchema defines the JSON envelope returned for a batch of items.
// Fields that do not apply to an item's answer type are empty arrays.
var BatchSchema = &llm.Schema{
	Name:        "exam-item-batch",
	Description: "A batch of certification practice items, one per requested slot, in request order",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"answerType": map[string]any{
							"type":        "string",
							"enum":        []any{"single", "multi", "pbq-order", "pbq-match"},
							"description": "Must equal the answer type requested for this slot",
						},
						"objectiveId": map[string]any{
							"type":        "string",
							"description": "The objective id of the requested slot",
						},
						"prompt": map[string]any{
							"type":        "string",
							"description": "The question stem shown to the candidate",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct answer is correct",
						},
						"options": withDescription(stringArray,
							"single/multi: 4 to 6 answer options. Empty otherwise."),
						"correctIndices": withDescription(intArray,
							"single: exactly one index into options. multi: two or three. Empty otherwise."),
						"orderItems": withDescription(stringArray,
							"pbq-order: 4 to 8 steps in shuffled display order. Empty otherwise."),
						"correctOrder": withDescription(intArray,
							"pbq-order: indices into orderItems in the correct sequence. Empty otherwise."),
						"left": withDescription(stringArray,
							"pbq-match: 3 to 8 left column entries. Empty otherwise."),
						"right": withDescription(stringArray,
							"pbq-match: 3 to 8 right column entries. Empty otherwise."),
						"correctPairs": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"leftIndex":  map[string]any{"type": "integer", "minimum": 0},
									"rightIndex": map[string]any{"type": "integer", "minimum": 0},
								},
								"required":             []any{"leftIndex", "rightIndex"},
								"additionalProperties": false,
							},
							"description": "pbq-match: one pair per left entry. Empty otherwise.",
						},
					},
					"required": []any{
						"answerType", "objectiveId", "prompt", "explanation", "options", "correctIndices",
						"orderItems", "correctOrder", "left", "right", "correctPairs",
					},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"items"},
		"additionalProperties": false,
	},
}

func withDescription(def map[string]any, desc string) map[string]any {
	out := maps.Clone(def)
	out["description"] = desc
	return out
}
