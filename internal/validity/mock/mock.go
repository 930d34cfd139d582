// Package mock implements internal/validity.Classifier in-memory, for
// tests that exercise decision modules or the affordance scorer
// without a trained fastText model.
package mock

import "github.com/nail-agent/nail/internal/validity"

// Classifier is a scripted validity classifier: callers register an
// exact (label, proba) response for specific response strings, with a
// configurable default for anything unregistered.
type Classifier struct {
	Responses    map[string]Response
	DefaultLabel validity.Label
	DefaultProba float64
}

// Response is the scripted classifier output for a given response
// string.
type Response struct {
	Label validity.Label
	Proba float64
}

// New returns a Classifier defaulting to LabelValid with proba 1.0 for
// any unregistered response.
func New() *Classifier {
	return &Classifier{
		Responses:    map[string]Response{},
		DefaultLabel: validity.LabelValid,
		DefaultProba: 1.0,
	}
}

// Predict implements [validity.Classifier].
func (c *Classifier) Predict(text string) (validity.Label, float64, error) {
	if r, ok := c.Responses[text]; ok {
		return r.Label, r.Proba, nil
	}
	return c.DefaultLabel, c.DefaultProba, nil
}
