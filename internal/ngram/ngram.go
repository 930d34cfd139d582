// Package ngram defines the n-gram language-model binding the
// affordance scorer depends on: an opaque handle exposing Open,
// Close, and JointLogProb. internal/ngram/nativelm implements it over
// cgo; internal/ngram/mock implements it in-memory for tests.
package ngram

import "errors"

// ErrModelMissing is returned by an implementation's Open when the
// model file (or its .utrie companion) cannot be found.
var ErrModelMissing = errors.New("ngram: model file missing")

// Model is a handle to an opened n-gram language model.
type Model interface {
	// JointLogProb returns the natural-log joint probability of the
	// given string under the model at the given n-gram order.
	JointLogProb(text string, order int) (float64, error)
	// Close releases the handle. Safe to call more than once.
	Close() error
}

// Opener opens a model file at path, returning a ready-to-use Model.
type Opener interface {
	Open(path string, pad string, order int) (Model, error)
}
