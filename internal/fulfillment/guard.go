package fulfillment

import "webshop-service/internal/models"

// TransitionAllowed reports whether an order may move between two statuses.
//
// Allowed edges:
//
//	Processing -> Accepted | Rejected
//	Accepted   -> Rejected | Finished
//	Rejected   -> Accepted
//
// Finished is terminal. Requesting the current status again is denied,
// which keeps a double-submitted request from applying stock effects twice.
// The decision depends on nothing but the two statuses.
func TransitionAllowed(from, to models.Status) bool {
	if from == to {
		return false
	}

	switch from {
	case models.StatusProcessing:
		return to == models.StatusAccepted || to == models.StatusRejected
	case models.StatusAccepted:
		return to == models.StatusRejected || to == models.StatusFinished
	case models.StatusRejected:
		return to == models.StatusAccepted
	case models.StatusFinished:
		return false
	}
	return false
}
