// Package ownership confirms the credential used for the authoritative fetch
// resolves to the account referenced in the submission.
package ownership

import "github.com/finquarium/proof-of-contribution/internal/domain"

// Verify returns 1.0 iff the account id returned by the authenticated fetch
// equals the account id claimed in the submission, else 0.0. The score is
// binary; partial ownership is not meaningful.
func Verify(fetched *domain.AccountSnapshot, submitted *domain.SubmittedDataset) float64 {
	if fetched == nil || submitted == nil {
		return 0.0
	}
	if fetched.AccountID == "" || fetched.AccountID != submitted.AccountID {
		return 0.0
	}
	return 1.0
}
