package affordance

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nail-agent/nail/internal/kg"
)

// AttributeDetectionVerbs maps each attribute to the verbs whose
// conditional log-probability against a noun estimates the
// probability that noun carries the attribute. Loaded from
// attribute_detection_verbs.csv: `attribute_name,verb1,verb2,...`.
type AttributeDetectionVerbs map[kg.Attribute][]string

// LoadAttributeDetectionVerbs reads attribute_detection_verbs.csv from
// path.
func LoadAttributeDetectionVerbs(path string) (AttributeDetectionVerbs, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make(AttributeDetectionVerbs, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out[kg.Attribute(strings.TrimSpace(row[0]))] = trimAll(row[1:])
	}
	return out, nil
}

// TargetAttributeScores is the hand-labelled attribute-probability
// training table: noun -> attribute -> target probability in [0,1],
// read from target_attribute_scores.csv (header row of attribute
// names; each row `noun,score1..scoreK` where scores are integers
// 0..8).
type TargetAttributeScores map[string]map[kg.Attribute]float64

// LoadTargetAttributeScores reads target_attribute_scores.csv from
// path.
func LoadTargetAttributeScores(path string) (TargetAttributeScores, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return TargetAttributeScores{}, nil
	}
	header := rows[0]
	attrs := make([]kg.Attribute, len(header)-1)
	for i, h := range header[1:] {
		attrs[i] = kg.Attribute(strings.TrimSpace(h))
	}

	out := make(TargetAttributeScores, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		noun := strings.TrimSpace(row[0])
		scores := make(map[kg.Attribute]float64, len(attrs))
		for i, attr := range attrs {
			if i+1 >= len(row) {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(row[i+1]))
			if err != nil {
				continue
			}
			scores[attr] = float64(n) / 8.0
		}
		out[noun] = scores
	}
	return out, nil
}

// TargetCommandScores is the hand-labelled unknown-action training
// table: "verb noun" -> target probability in [0,1], read from
// target_command_scores.csv (`"verb noun",int0..8`).
type TargetCommandScores map[string]float64

// LoadTargetCommandScores reads target_command_scores.csv from path.
func LoadTargetCommandScores(path string) (TargetCommandScores, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make(TargetCommandScores, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		out[strings.Trim(strings.TrimSpace(row[0]), `"`)] = float64(n) / 8.0
	}
	return out, nil
}

// ActionPriors maps a verb phrase to its prior probability
// (count/8, from action_priors.csv's `verb_phrase,int0..8`). A verb
// phrase missing from this table is treated as needing manual review:
// Prior returns -1 for it, which the scorer clamps to 0 at use.
type ActionPriors map[string]float64

// LoadActionPriors reads action_priors.csv from path.
func LoadActionPriors(path string) (ActionPriors, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make(ActionPriors, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		out[strings.TrimSpace(row[0])] = float64(n) / 8.0
	}
	return out, nil
}

// Prior returns the prior probability of verb phrase v, or -1 if v is
// absent from the table (needs-review sentinel; callers must clamp
// negative priors to 0 before using them as a multiplier).
func (p ActionPriors) Prior(v string) float64 {
	if score, ok := p[v]; ok {
		return score
	}
	return -1
}

// calibrationHeader is the literal sentinel line written as the first
// line of a persisted calibration_thresholds.tsv. Its presence means
// the file supplies usable thresholds; deleting it forces
// recomputation on the next run.
const calibrationHeader = "# Delete this line to recalculate the thresholds on the next run.\n"

// unknownActionsRowName is the fixed name of the calibration row
// carrying the unknown-actions triple.
const unknownActionsRowName = "unknown actions"

// Thresholds is a calibrated (lo, md, hi) triple for the piecewise
// probability curve used by Probability.
type Thresholds struct {
	Lo, Md, Hi float64
}

// CalibrationTable holds a per-attribute Thresholds plus the
// unknown-actions Thresholds.
type CalibrationTable struct {
	ByAttribute    map[kg.Attribute]Thresholds
	UnknownActions Thresholds
}

// LoadCalibrationThresholds reads calibration_thresholds.tsv from
// path. found is false (with no error) if the file is absent or its
// sentinel header line is missing, signalling that thresholds must be
// recomputed.
func LoadCalibrationThresholds(path string) (table CalibrationTable, found bool, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return CalibrationTable{}, false, nil
	}
	if err != nil {
		return CalibrationTable{}, false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return CalibrationTable{}, false, nil
	}
	if strings.TrimRight(scanner.Text(), "\r\n") != strings.TrimRight(calibrationHeader, "\n") {
		return CalibrationTable{}, false, nil
	}

	table = CalibrationTable{ByAttribute: map[kg.Attribute]Thresholds{}}
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			continue
		}
		lo, e1 := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		md, e2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		hi, e3 := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if e1 != nil || e2 != nil || e3 != nil {
			continue
		}
		name := strings.TrimSpace(fields[3])
		th := Thresholds{Lo: lo, Md: md, Hi: hi}
		if name == unknownActionsRowName {
			table.UnknownActions = th
		} else {
			table.ByAttribute[kg.Attribute(name)] = th
		}
	}
	if err := scanner.Err(); err != nil {
		return CalibrationTable{}, false, err
	}
	return table, true, nil
}

// SaveCalibrationThresholds persists table to path with the sentinel
// header line first, one row per attribute in the sequence given by
// order (attributes absent from table are skipped), followed by the
// unknown-actions row, using the `"%7.3f\t%7.3f\t%7.3f\tname\n"` line
// format so LoadCalibrationThresholds can parse it back unchanged.
func SaveCalibrationThresholds(path string, table CalibrationTable, order []kg.Attribute) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(calibrationHeader); err != nil {
		return err
	}
	for _, attr := range order {
		th, ok := table.ByAttribute[attr]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%7.3f\t%7.3f\t%7.3f\t%s\n", th.Lo, th.Md, th.Hi, attr); err != nil {
			return err
		}
	}
	th := table.UnknownActions
	if _, err := fmt.Fprintf(w, "%7.3f\t%7.3f\t%7.3f\t%s\n", th.Lo, th.Md, th.Hi, unknownActionsRowName); err != nil {
		return err
	}
	return w.Flush()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
