// Package evaluation parses the structured quality score returned by the
// score stage.
package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rating is the overall verdict of an evaluation.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingPoor      Rating = "Poor"
)

// Evaluation is the parsed score response.
type Evaluation struct {
	Score           int         `json:"score"`
	Rating          Rating      `json:"rating"`
	Parameters      []Parameter `json:"parameters"`
	Recommendations []string    `json:"recommendations"`
}

// Parameter is one scored dimension of an evaluation.
type Parameter struct {
	Name     string     `json:"name"`
	Score    ParamScore `json:"score"`
	Findings string     `json:"findings,omitempty"`
}

// ParamScore is a parameter score as the model wrote it, either "18/20" or 18.
type ParamScore string

// UnmarshalJSON accepts a JSON string or number.
func (s *ParamScore) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = ParamScore(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parameter score must be a string or number: %w", err)
	}
	*s = ParamScore(n.String())
	return nil
}

// Value returns the numeric part of the score and its maximum, if one was
// given. "18/20" yields (18, 20); "18" yields (18, 0).
func (s ParamScore) Value() (got float64, outOf float64, err error) {
	num, den, hasMax := strings.Cut(string(s), "/")

	if got, err = strconv.ParseFloat(strings.TrimSpace(num), 64); err != nil {
		return 0, 0, fmt.Errorf("parameter score %q: %w", string(s), err)
	}

	if hasMax {
		if outOf, err = strconv.ParseFloat(strings.TrimSpace(den), 64); err != nil {
			return 0, 0, fmt.Errorf("parameter score %q: %w", string(s), err)
		}
	}
	return got, outOf, nil
}
