package classify

// Outcome is the single tag a post receives once classified. The string
// values are the status column written to the run log.
type Outcome string

const (
	OutcomeAccepted          Outcome = "Accepted"
	OutcomeSavedNoAdmin      Outcome = "Saved - no admin"
	OutcomeRejectedWithAdmin Outcome = "Rejected - w/admin"
	OutcomeRejectedNoAdmin   Outcome = "Rejected - no admin"
)

// Rejected reports whether the outcome needs no post detail fetch.
func (o Outcome) Rejected() bool {
	return o == OutcomeRejectedWithAdmin || o == OutcomeRejectedNoAdmin
}

// Decision is the full result of classifying one post.
type Decision struct {
	Outcome Outcome
	// Representative is the single comment kept for the outcome ledger row;
	// nil only for OutcomeRejectedNoAdmin.
	Representative *Comment
	// Matches holds every target-matching comment in original order. For the
	// saved-no-admin outcome each distinct match becomes a ledger row.
	Matches []Comment
	// AdminFound and TargetFound feed run reporting.
	AdminFound  bool
	TargetFound bool
}
