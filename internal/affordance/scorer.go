// Package affordance implements the agent's deepest numerical
// component: turning an entity (or entity pair) into a ranked list of
// plausible commands, using an n-gram language model's conditional
// log-probabilities mapped through offline-calibrated thresholds.
package affordance

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/kg"
	"github.com/nail-agent/nail/internal/ngram"
)

const (
	// knownActionExclusionThreshold borrows action.KnownActionExtractionThreshold.
	unknownActionExtractionThreshold = 0.4
	logProbOrder                     = 5

	doubleObjectOffset = 12.0
	doubleObjectScale  = 2.0
	doubleObjectFloor  = 0.05
)

// pairVerbs is the fixed set of (verb, preposition) pairs considered
// for double-object extraction.
var pairVerbs = []struct{ verb, prep string }{
	{"put", "in"},
	{"put", "on"},
	{"unlock", "with"},
	{"open", "with"},
	{"break", "with"},
	{"attack", "with"},
	{"ask", "for"},
	{"ask", "about"},
	{"give", "to"},
	{"throw", "at"},
}

// unknownToPromote maps an excluded unknown-action verb phrase to the
// attribute whose known-action constructors it should be promoted
// into (one chosen uniformly at random), using a fixed promotion table
// from generic unknown verbs to their attribute-specific
// specialisations.
var unknownToPromote = map[string]kg.Attribute{
	"pick up":    kg.AttrPortable,
	"put down":   kg.AttrPortable,
	"switch on":  kg.AttrSwitchable,
	"switch off": kg.AttrSwitchable,
	"lock":       kg.AttrLockable,
	"unlock":     kg.AttrLockable,
	"eat":        kg.AttrEdible,
	"drink":      kg.AttrEdible,
}

// ScoredAction pairs a candidate Action with its estimated
// probability.
type ScoredAction struct {
	Action      action.Action
	Probability float64
}

// Scorer is the affordance scoring pipeline. A Scorer is not safe for
// concurrent use — the decision core that owns it runs single-threaded
// — except that its internal cache is only ever written by the owning
// goroutine.
type Scorer struct {
	model  ngram.Model
	verbs  AttributeDetectionVerbs
	priors ActionPriors
	calib  CalibrationTable
	rng    *rand.Rand

	singleCache map[*kg.Entity][]ScoredAction
}

// New constructs a Scorer. rng, if nil, defaults to a fixed-seed
// source so promotion choices are reproducible in tests.
func New(model ngram.Model, verbs AttributeDetectionVerbs, priors ActionPriors, calib CalibrationTable, rng *rand.Rand) *Scorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1010))
	}
	return &Scorer{
		model:       model,
		verbs:       verbs,
		priors:      priors,
		calib:       calib,
		rng:         rng,
		singleCache: make(map[*kg.Entity][]ScoredAction),
	}
}

func (s *Scorer) lp(text string) (float64, error) {
	v, err := s.model.JointLogProb(text, logProbOrder)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// AttributeProbability estimates p(entity name carries attr), the mean
// over attr's detection verbs V of lp(V + " the " + name, 5) -
// lp("the " + name, 5), mapped through attr's calibrated threshold
// triple.
func (s *Scorer) AttributeProbability(name string, attr kg.Attribute) (float64, error) {
	verbs := s.verbs[attr]
	if len(verbs) == 0 {
		return 0, nil
	}

	baseline, err := s.lp("the " + name)
	if err != nil {
		return 0, err
	}
	if baseline > 0 {
		return 0, fmt.Errorf("affordance: baseline log-prob for %q is positive: %v", name, baseline)
	}

	var sum float64
	for _, v := range verbs {
		phrase := v + " the " + name
		lpPhrase, err := s.lp(phrase)
		if err != nil {
			return 0, err
		}
		if lpPhrase > 0 {
			return 0, fmt.Errorf("affordance: log-prob for %q is positive: %v", phrase, lpPhrase)
		}
		sum += lpPhrase - baseline
	}
	score := sum / float64(len(verbs))

	th, ok := s.calib.ByAttribute[attr]
	if !ok {
		return 0, nil
	}
	return Probability(score, th), nil
}

// UnknownActionProbability estimates p(verbPhrase applies to name),
// the conditional log-prob lp(phrase + " " + name, 5) - lp(name, 5),
// mapped through the unknown-actions calibrated threshold triple.
func (s *Scorer) UnknownActionProbability(verbPhrase, name string) (float64, error) {
	baseline, err := s.lp(name)
	if err != nil {
		return 0, err
	}
	lpPhrase, err := s.lp(verbPhrase + " " + name)
	if err != nil {
		return 0, err
	}
	score := lpPhrase - baseline
	return Probability(score, s.calib.UnknownActions), nil
}

// ExtractSingleObjectActions returns the ranked (action, probability)
// list for entity e, memoised on e's identity.
func (s *Scorer) ExtractSingleObjectActions(e *kg.Entity) ([]ScoredAction, error) {
	if cached, ok := s.singleCache[e]; ok {
		return cached, nil
	}

	name := e.Name()
	var results []ScoredAction
	excluded := make(map[string]bool)

	for _, attr := range orderedAttributes {
		p, err := s.AttributeProbability(name, attr)
		if err != nil {
			return nil, err
		}
		if p <= action.KnownActionExtractionThreshold(attr) {
			continue
		}
		for _, ctor := range action.Catalogue[attr] {
			results = append(results, ScoredAction{Action: ctor(e), Probability: p})
		}
		for _, v := range s.verbs[attr] {
			excluded[action.StripTrailingThe(v)] = true
		}
	}

	verbPhrases := make([]string, 0, len(s.priors))
	for verbPhrase := range s.priors {
		verbPhrases = append(verbPhrases, verbPhrase)
	}
	sort.Strings(verbPhrases)
	for _, verbPhrase := range verbPhrases {
		prior := s.priors.Prior(verbPhrase)
		if prior < 0 {
			prior = 0
		}
		p, err := s.UnknownActionProbability(verbPhrase, name)
		if err != nil {
			return nil, err
		}
		product := p * prior
		if product <= unknownActionExtractionThreshold {
			continue
		}
		stripped := action.StripTrailingThe(verbPhrase)
		if excluded[stripped] {
			continue
		}
		if attr, ok := unknownToPromote[stripped]; ok {
			ctors := action.Catalogue[attr]
			if len(ctors) > 0 {
				ctor := ctors[s.rng.Intn(len(ctors))]
				results = append(results, ScoredAction{Action: ctor(e), Probability: product})
				continue
			}
		}
		results = append(results, ScoredAction{
			Action:      action.Single{Verb: verbPhrase, Entity: e},
			Probability: product,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})

	s.singleCache[e] = results
	return results, nil
}

// ExtractDoubleObjectActions returns the ranked (action, probability)
// list for the ordered pair (e1, e2), scored over the fixed set of
// (verb, prep) pairs via a logistic transform of the joint
// log-probability.
func (s *Scorer) ExtractDoubleObjectActions(e1, e2 *kg.Entity) ([]ScoredAction, error) {
	var results []ScoredAction
	for i, pv := range pairVerbs {
		phrase := fmt.Sprintf("%s the %s %s the %s", pv.verb, e1.Name(), pv.prep, e2.Name())
		lp, err := s.lp(phrase)
		if err != nil {
			return nil, err
		}
		p := logistic(lp)
		if p <= doubleObjectFloor {
			continue
		}
		p += 1e-8 * float64(i)
		results = append(results, ScoredAction{
			Action:      action.Double{Verb: pv.verb, Entity1: e1, Prep: pv.prep, Entity2: e2},
			Probability: p,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})
	return results, nil
}

func logistic(lp float64) float64 {
	exponent := -(lp + doubleObjectOffset) * doubleObjectScale
	if exponent > 20 {
		exponent = 20
	}
	return 1 / (1 + math.Exp(exponent))
}

