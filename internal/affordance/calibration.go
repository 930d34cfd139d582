package affordance

import "github.com/nail-agent/nail/internal/kg"

// Probability maps a raw conditional log-probability score through a
// three-threshold piecewise-linear curve. The curve is continuous at
// lo, md, and hi and clamps to [0,1] outside that range.
func Probability(score float64, th Thresholds) float64 {
	switch {
	case score >= th.Hi:
		return 1
	case score <= th.Lo:
		return 0
	case score >= th.Md:
		return 0.5 + 0.5*(score-th.Md)/(th.Hi-th.Md)
	default:
		return 0.5 * (score - th.Lo) / (th.Md - th.Lo)
	}
}

// mse computes the mean squared error between predicted and target
// scores, summed in slice order — a fixed, documented summation order
// so the grid search is bit-reproducible across platforms.
func mse(predicted, target []float64) float64 {
	if len(predicted) == 0 {
		return 0
	}
	var sum float64
	for i := range predicted {
		d := predicted[i] - target[i]
		sum += d * d
	}
	return sum / float64(len(predicted))
}

// gridStep sweeps candidate thresholds over [lo, hi] (inclusive) at
// the given step, in ascending order, so iteration order — and hence
// which candidate wins a tied minimum — is deterministic.
func gridStep(lo, hi, step float64) []float64 {
	if step <= 0 {
		return nil
	}
	n := int((hi-lo)/step + 0.5)
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, lo+float64(i)*step)
	}
	return out
}

// CalibrateAttribute grid-searches (lo, md, hi) for one attribute's
// probability curve against hand-labelled (score, target) pairs:
// first sweep md over [-10, 0] step 0.01 against a single-threshold
// model (p = score >= md ? 1 : 0) to find the MSE-minimising md; then
// sweep hi upward and lo downward from md, step 0.01, against the full
// three-threshold model.
func CalibrateAttribute(scores, targets []float64) Thresholds {
	return calibrate(scores, targets, 0.01, -10, 0)
}

// CalibrateUnknownActions grid-searches the unknown-actions (lo, md,
// hi) triple the same way, but over a wider range and coarser step
// (0.1).
func CalibrateUnknownActions(scores, targets []float64) Thresholds {
	return calibrate(scores, targets, 0.1, -30, 0)
}

func calibrate(scores, targets []float64, step, mdLo, mdHi float64) Thresholds {
	bestMd := mdLo
	bestErr := singleThresholdMSE(scores, targets, mdLo)
	for _, md := range gridStep(mdLo, mdHi, step) {
		e := singleThresholdMSE(scores, targets, md)
		if e < bestErr {
			bestErr = e
			bestMd = md
		}
	}

	lo := bestMd
	hi := bestMd
	bestErr = mse(predictAll(scores, Thresholds{Lo: bestMd, Md: bestMd, Hi: bestMd}), targets)

	// Sweep hi upward from md.
	for _, candidateHi := range gridStep(bestMd, bestMd+20, step) {
		if candidateHi <= bestMd {
			continue
		}
		th := Thresholds{Lo: lo, Md: bestMd, Hi: candidateHi}
		e := mse(predictAll(scores, th), targets)
		if e < bestErr {
			bestErr = e
			hi = candidateHi
		}
	}

	bestErr = mse(predictAll(scores, Thresholds{Lo: lo, Md: bestMd, Hi: hi}), targets)
	// Sweep lo downward from md.
	for _, candidateLo := range gridStep(bestMd-20, bestMd, step) {
		if candidateLo >= bestMd {
			continue
		}
		th := Thresholds{Lo: candidateLo, Md: bestMd, Hi: hi}
		e := mse(predictAll(scores, th), targets)
		if e < bestErr {
			bestErr = e
			lo = candidateLo
		}
	}

	return Thresholds{Lo: lo, Md: bestMd, Hi: hi}
}

func singleThresholdMSE(scores, targets []float64, md float64) float64 {
	predicted := make([]float64, len(scores))
	for i, s := range scores {
		if s >= md {
			predicted[i] = 1
		} else {
			predicted[i] = 0
		}
	}
	return mse(predicted, targets)
}

func predictAll(scores []float64, th Thresholds) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = Probability(s, th)
	}
	return out
}

// orderedAttributes is the fixed iteration order calibration and
// persistence use so output is reproducible across runs.
var orderedAttributes = []kg.Attribute{
	kg.AttrPortable, kg.AttrEdible, kg.AttrMoveable, kg.AttrSwitchable,
	kg.AttrFlammable, kg.AttrOpenable, kg.AttrLockable, kg.AttrContainer,
	kg.AttrPerson, kg.AttrEnemy,
}
