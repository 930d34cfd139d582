// Package mock implements internal/ngram.Model and .Opener in-memory,
// for tests that exercise the affordance scorer without a native
// model binary.
package mock

import (
	"fmt"
	"strings"

	"github.com/nail-agent/nail/internal/ngram"
)

// Model is a scripted in-memory n-gram model: callers register exact
// joint log-probabilities for specific phrases, with a configurable
// default for anything unregistered.
type Model struct {
	Phrases map[string]float64
	Default float64
	Closed  bool
}

// New returns a Model whose JointLogProb returns def for any phrase not
// present in phrases.
func New(phrases map[string]float64, def float64) *Model {
	if phrases == nil {
		phrases = map[string]float64{}
	}
	return &Model{Phrases: phrases, Default: def}
}

// JointLogProb implements [ngram.Model].
func (m *Model) JointLogProb(text string, order int) (float64, error) {
	key := strings.TrimSpace(text)
	if v, ok := m.Phrases[key]; ok {
		return v, nil
	}
	return m.Default, nil
}

// Close implements [ngram.Model].
func (m *Model) Close() error {
	m.Closed = true
	return nil
}

// Opener builds scripted Models for a given path, ignoring the actual
// file system.
type Opener struct {
	Phrases map[string]float64
	Default float64
}

// Open implements [ngram.Opener].
func (o Opener) Open(path string, pad string, order int) (ngram.Model, error) {
	if path == "" {
		return nil, fmt.Errorf("mock: empty model path")
	}
	return New(o.Phrases, o.Default), nil
}
