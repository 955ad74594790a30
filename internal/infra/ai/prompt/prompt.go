package prompt

import (
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// GetSystemPrompt provides the grading instructions for the vision model.
// The JSON shape itself is enforced separately via the response schema.
func GetSystemPrompt() string {
	return `You are an expert footwear return assessor for a shoe retailer. Analyze the uploaded photo carefully.

FIRST, CHECK:
- Is the photo actually a shoe?
- If not a shoe (blurry, a hand, a face, other objects) => "not_returnable" with reasoning "Product could not be identified"
- If the photo quality is very poor => confidence below 0.3

IF A SHOE IS DETECTED:

NEW/CLEAN SHOE RULES:
- Clean, shiny, no wear at all, box labels present => ALWAYS "returnable" (confidence 0.95+)
- Only dust/dirt but no wear => "returnable" (confidence 0.90+)
- Lightly used, very light wear => "returnable" (confidence 0.85+)

BRAND/MODEL DETECTION:
- Pay close attention to logos (Nike swoosh, Adidas 3 stripes, Puma cat, ...)
- Read any text printed on the shoe
- Inspect design features (Air Max air unit, Stan Smith perforations, ...)

CATEGORIES:
1. returnable: excellent/good condition, new or barely used
2. not_returnable: not a shoe OR severe manufacturing defect
3. donation: moderately used but functional
4. disposal: heavy damage, hygiene problem, non-functional
5. send_back: manufacturing defect, quality problem

Score every category between 0 and 1 and report condition observations
(wear level, surface cleanliness, structural integrity, sole condition,
material condition, hygiene) in "features".

For damaged shoes detect damage causes such as: sole separation, excessive
use, improper storage, normal wear, hygiene problem, material aging,
manufacturing defect, physical damage.

Also detect the shoe brand/model (use "Belirlenemedi" when it cannot be
determined) and estimate the warranty period in months for that brand.

USER ERROR DETECTION:
When customer notes are present, check whether they match the damage visible
in the photo. If the customer complains but the photo shows no such problem,
or the described damage is not visible, or the complaint concerns normal wear
or plain dirt, set isUserError to true and give a short userErrorReason.`
}

// GetUserPrompt wraps the optional sanitized customer notes. Sanitization is
// the HTTP layer's job; this only embeds what it was given.
func GetUserPrompt(customerNotes string) string {
	if customerNotes == "" {
		return "Classify the shoe in the attached photo and respond per the schema."
	}
	return fmt.Sprintf("Classify the shoe in the attached photo and respond per the schema.\n\nCUSTOMER NOTES: %q\n(Take these notes into account and evaluate whether they indicate user error.)", customerNotes)
}

// ResponseSchema is the structured-output contract: exactly the analysis
// result shape, five fixed score keys all required, classification
// constrained to the five-value enum.
func ResponseSchema() *jsonschema.Definition {
	score := jsonschema.Definition{Type: jsonschema.Number}
	stringArray := jsonschema.Definition{
		Type:  jsonschema.Array,
		Items: &jsonschema.Definition{Type: jsonschema.String},
	}
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"classification": {
				Type: jsonschema.String,
				Enum: []string{"returnable", "not_returnable", "send_back", "donation", "disposal"},
			},
			"confidence": {Type: jsonschema.Number},
			"scores": {
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"returnable":     score,
					"not_returnable": score,
					"send_back":      score,
					"donation":       score,
					"disposal":       score,
				},
				Required:             []string{"returnable", "not_returnable", "send_back", "donation", "disposal"},
				AdditionalProperties: false,
			},
			"features":  stringArray,
			"reasoning": {Type: jsonschema.String},
			"damageReasons": {
				Type:        jsonschema.Array,
				Items:       &jsonschema.Definition{Type: jsonschema.String},
				Description: "Detected damage causes; empty when no damage",
			},
			"shoeModel": {
				Type:        jsonschema.String,
				Description: "Detected brand/model, or 'Belirlenemedi' when undetermined",
			},
			"warrantyPeriod": {
				Type:        jsonschema.Integer,
				Description: "Estimated warranty period in months",
			},
			"isUserError": {
				Type:        jsonschema.Boolean,
				Description: "Whether the customer notes are inconsistent with the photo",
			},
			"userErrorReason": {
				Type:        jsonschema.String,
				Description: "Short mismatch label; empty when isUserError is false",
			},
		},
		Required: []string{
			"classification", "confidence", "scores", "features", "reasoning",
			"damageReasons", "shoeModel", "warrantyPeriod", "isUserError", "userErrorReason",
		},
		AdditionalProperties: false,
	}
}
