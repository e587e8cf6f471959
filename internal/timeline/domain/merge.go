package domain

import (
	"slices"
	"time"

	"github.com/samber/lo"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
)

// Merge combines activities, invitations and the optional contract acceptance
// into one sequence, newest first. Equal timestamps keep the order of
// activities, then invitations, then the acceptance, and within each source
// the input order.
func Merge(activities []Activity, invitations []invitationdomain.Invitation, acceptedAt *time.Time) []Entry {
	entries := make([]Entry, 0, len(activities)+len(invitations)+1)
	entries = append(entries, lo.Map(activities, func(a Activity, _ int) Entry {
		return Entry{Kind: EntryActivity, OccurredAt: a.OccurredAt, Activity: &a}
	})...)
	entries = append(entries, lo.Map(invitations, func(inv invitationdomain.Invitation, _ int) Entry {
		return Entry{Kind: EntryInvitation, OccurredAt: inv.SentAt, Invitation: &inv}
	})...)
	if acceptedAt != nil {
		entries = append(entries, Entry{Kind: EntryContractAccepted, OccurredAt: *acceptedAt})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	return entries
}
