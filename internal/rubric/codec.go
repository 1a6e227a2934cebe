// Package rubric encodes and decodes the criteria lists stored as JSON
// strings on assignment records and exchanged with the grading service.
package rubric

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

// criteriaSchema validates the criteria lists the generator returns before
// they are accepted into application state.
const criteriaSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "weight", "levels"],
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "weight": {"type": "integer", "minimum": 0},
      "levels": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "required": ["description", "range"],
          "properties": {
            "description": {"type": "string"},
            "range": {
              "type": "array",
              "minItems": 2,
              "maxItems": 2,
              "items": {"type": "number"}
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("criteria.json", criteriaSchema)

// ParseCriteria decodes a criteria list from the JSON payload embedded in
// an assignment record. A null, empty, or malformed payload yields an empty
// list; nothing escapes to the caller as an error.
func ParseCriteria(raw *string) ([]models.Criterion, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return []models.Criterion{}, nil
	}

	var criteria []models.Criterion
	if err := json.Unmarshal([]byte(*raw), &criteria); err != nil {
		return []models.Criterion{}, fmt.Errorf("decode criteria json: %w", err)
	}
	if criteria == nil {
		criteria = []models.Criterion{}
	}
	return criteria, nil
}

// EncodeCriteria serialises a criteria list the way the persistence
// endpoint expects it: a JSON string.
func EncodeCriteria(criteria []models.Criterion) (string, error) {
	if criteria == nil {
		criteria = []models.Criterion{}
	}
	payload, err := json.Marshal(criteria)
	if err != nil {
		return "", fmt.Errorf("encode criteria json: %w", err)
	}
	return string(payload), nil
}

// ValidateCriteria checks a criteria list against the schema. Used at the
// boundary when a generated rubric arrives from the grading service.
func ValidateCriteria(criteria []models.Criterion) error {
	payload, err := json.Marshal(criteria)
	if err != nil {
		return fmt.Errorf("encode criteria for validation: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode criteria for validation: %w", err)
	}

	if err := compiledSchema.Validate(decoded); err != nil {
		return fmt.Errorf("rubric criteria invalid: %w", err)
	}
	return nil
}

// ValidateRubric checks both sections of a rubric.
func ValidateRubric(r models.Rubric) error {
	if err := ValidateCriteria(r.Scope); err != nil {
		return fmt.Errorf("scope: %w", err)
	}
	if err := ValidateCriteria(r.Quality); err != nil {
		return fmt.Errorf("quality: %w", err)
	}
	return nil
}
