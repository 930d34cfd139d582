// Package validity defines the learned validity classifier binding:
// given a (command, response) pair, estimate the probability that the
// response denotes the command actually having taken effect.
// internal/validity/fasttext implements it via cgo against a trained
// fastText model; internal/validity/mock implements it in-memory for
// tests.
package validity

import (
	"errors"
	"regexp"
	"strings"
)

// Label is the binary classifier's prediction.
type Label string

const (
	LabelValid   Label = "__label__valid"
	LabelInvalid Label = "__label__invalid"
)

// ErrUnknownLabel is returned when the classifier predicts a label
// outside {LabelValid, LabelInvalid} — a binding contract violation
// that should never happen with a correctly trained model.
var ErrUnknownLabel = errors.New("validity: classifier returned an unknown label")

// Classifier predicts a (label, probability) pair for response text.
type Classifier interface {
	Predict(text string) (label Label, proba float64, err error)
}

// rejectionPatterns detects parser complaints about unrecognised
// words, e.g. "I don't know the word frotz." or "That's not a verb I
// recognise."
var rejectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)I don't know the word "?([a-z']+)"?`),
	regexp.MustCompile(`(?i)That's not a verb I recogni[sz]e\.?`),
	regexp.MustCompile(`(?i)You used the word "?([a-z']+)"? in a way that I don't understand\.?`),
	regexp.MustCompile(`(?i)I don't understand that sentence\.?`),
	regexp.MustCompile(`(?i)I only understood you as far as wanting to`),
}

// ActionRecognized reports whether response indicates the parser
// understood actionText at all (as opposed to rejecting an unknown
// word or construction). On a rejection match it also returns the
// offending word, if one was captured, so the caller can mark it
// unrecognised on the knowledge graph.
func ActionRecognized(actionText, response string) (recognized bool, offendingWord string) {
	for _, pat := range rejectionPatterns {
		if m := pat.FindStringSubmatch(response); m != nil {
			if len(m) > 1 && m[1] != "" {
				return false, strings.ToLower(m[1])
			}
			return false, firstWord(actionText)
		}
	}
	return true, ""
}

func firstWord(phrase string) string {
	fields := strings.Fields(phrase)
	if len(fields) == 0 {
		return phrase
	}
	return fields[0]
}

// cleanResponse collapses runs of whitespace before handing response
// text to the classifier.
func cleanResponse(response string) string {
	return strings.Join(strings.Fields(response), " ")
}

// ActionValid implements the validity detector's single public
// operation: p ∈ [0,1] estimating whether actionText actually
// succeeded, given response. If the response is not recognised by the
// parser at all, it short-circuits to 0 without consulting the
// classifier and marks the offending word via onUnrecognized.
func ActionValid(c Classifier, actionText, response string, onUnrecognized func(word string)) (float64, error) {
	recognized, word := ActionRecognized(actionText, response)
	if !recognized {
		if onUnrecognized != nil && word != "" {
			onUnrecognized(word)
		}
		return 0, nil
	}

	label, proba, err := c.Predict(cleanResponse(response))
	if err != nil {
		return 0, err
	}

	switch label {
	case LabelInvalid:
		return 1 - proba, nil
	case LabelValid:
		return proba, nil
	default:
		return 0, ErrUnknownLabel
	}
}
