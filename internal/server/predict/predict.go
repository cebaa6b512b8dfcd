// Package predict holds the stateless prediction rule exposed by the API.
package predict

// Outcome enumerates the possible prediction results.
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
)

// AgeThreshold is the cut-off above which the outcome is positive.
const AgeThreshold = 30

// Features are the inputs of a prediction request. Only Age participates in
// the rule today; the remaining fields are accepted for interface stability.
type Features struct {
	Age        int
	Income     *float64
	Occupation string
}

// Evaluate applies the rule to the given features.
func Evaluate(f Features) Outcome {
	if f.Age > AgeThreshold {
		return OutcomePositive
	}
	return OutcomeNegative
}
