package constants

// OutcomeKind is the terminal state of one processed row.
type OutcomeKind string

// Stable values; these appear in logs, the skip report and metric labels.
const (
	OutcomeInserted                OutcomeKind = "INSERTED"
	OutcomeSkippedMissingField     OutcomeKind = "SKIPPED_MISSING_FIELD"
	OutcomeSkippedMissingReference OutcomeKind = "SKIPPED_MISSING_REFERENCE"
	OutcomeSkippedError            OutcomeKind = "SKIPPED_ERROR"
	OutcomeFatal                   OutcomeKind = "FATAL" // aborts the batch
)

// IsSkip reports whether k counts toward the skipped tally.
func (k OutcomeKind) IsSkip() bool {
	switch k {
	case OutcomeSkippedMissingField, OutcomeSkippedMissingReference, OutcomeSkippedError:
		return true
	}
	return false
}
