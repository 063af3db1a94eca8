package ingest

import (
	"time"

	"github.com/joseph-ayodele/assay-loader/constants"
	"github.com/joseph-ayodele/assay-loader/internal/entity"
)

// Outcome is the terminal state of one processed row.
type Outcome struct {
	Kind   constants.OutcomeKind
	Reason string
	// Record is set when Kind is OutcomeInserted.
	Record *entity.AssayingDetail
	// Err is set when Kind is OutcomeFatal.
	Err error
}

func Inserted(rec *entity.AssayingDetail) Outcome {
	return Outcome{Kind: constants.OutcomeInserted, Record: rec}
}

func SkippedMissingField(reason string) Outcome {
	return Outcome{Kind: constants.OutcomeSkippedMissingField, Reason: reason}
}

func SkippedMissingReference(reason string) Outcome {
	return Outcome{Kind: constants.OutcomeSkippedMissingReference, Reason: reason}
}

func SkippedError(reason string) Outcome {
	return Outcome{Kind: constants.OutcomeSkippedError, Reason: reason}
}

func Fatal(err error) Outcome {
	return Outcome{Kind: constants.OutcomeFatal, Reason: err.Error(), Err: err}
}

// SkipReason is one line of the skip frequency table.
type SkipReason struct {
	Reason string
	Count  int
}

// SkippedRow describes one row that was not persisted.
type SkippedRow struct {
	Index     int
	Line      int
	Kind      constants.OutcomeKind
	Reason    string
	Commodity string
	Parameter string
}

// Summary is the tally of one batch run.
type Summary struct {
	RunID    string
	Total    int
	Inserted int
	Skipped  int
	ByKind   map[constants.OutcomeKind]int
	// Reasons is ordered by first appearance.
	Reasons  []SkipReason
	Rows     []SkippedRow
	Duration time.Duration
}

func newSummary(runID string) *Summary {
	return &Summary{RunID: runID, ByKind: make(map[constants.OutcomeKind]int)}
}

func (s *Summary) add(out Outcome, row SkippedRow) {
	s.Total++
	s.ByKind[out.Kind]++
	if out.Kind == constants.OutcomeInserted {
		s.Inserted++
		return
	}
	s.Skipped++
	s.Rows = append(s.Rows, row)
	for i := range s.Reasons {
		if s.Reasons[i].Reason == out.Reason {
			s.Reasons[i].Count++
			return
		}
	}
	s.Reasons = append(s.Reasons, SkipReason{Reason: out.Reason, Count: 1})
}
