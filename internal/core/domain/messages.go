package domain

import "strings"

// Fixed notification messages.
const (
	MessageNoChanges         = "No changes to save"
	MessagePasswordResetSent = "A password reset link has been sent to your email"
)

// SuccessMessage returns the notification shown after a mutation succeeds,
// e.g. "Todo updated".
func SuccessMessage(kind MutationKind, r ResourceType) string {
	label := r.Label()
	switch kind {
	case MutationCreate:
		return label + " created"
	case MutationUpdate:
		return label + " updated"
	case MutationDelete:
		return label + " deleted"
	default:
		return label + " saved"
	}
}

// FailureMessage returns the notification shown after a mutation fails.
func FailureMessage(kind MutationKind, r ResourceType, f *Failure) string {
	prefix := "Could not " + kind.String() + " " + strings.ToLower(r.Label())
	if f == nil || f.Error() == "" {
		return prefix
	}
	return prefix + ": " + f.Error()
}

