package domain

import "time"

// PaymentStatus derives the status implied by the paid amount after a
// payment mutation. Paid wins ties so overpayment still lands on paid.
func PaymentStatus(paidAmount, totalAmount float64) InvoiceStatus {
	if paidAmount >= totalAmount {
		return InvoiceStatusPaid
	}
	if paidAmount > 0 {
		return InvoiceStatusPartial
	}
	return InvoiceStatusPending
}

// EffectiveStatus re-derives the read-time status. Overdue applies only
// to pending invoices with no payment past their due date; it is never
// persisted eagerly so clock drift cannot leave a stale status behind.
func EffectiveStatus(status InvoiceStatus, paidAmount float64, dueDate time.Time, now time.Time) InvoiceStatus {
	if status == InvoiceStatusPending && paidAmount == 0 && now.After(dueDate) {
		return InvoiceStatusOverdue
	}
	return status
}

// PastDue reports whether an open invoice is past its due date. Partial
// invoices keep their ledger status; callers surface this flag instead.
func PastDue(status InvoiceStatus, dueDate time.Time, now time.Time) bool {
	switch status {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusOverdue:
		return now.After(dueDate)
	}
	return false
}

// CanTransition reports whether an explicit caller-driven transition is
// allowed. Transitions into paid/partial/overdue are always computed
// from payment state, never set directly.
func CanTransition(from, to InvoiceStatus) bool {
	if from == InvoiceStatusDraft && to == InvoiceStatusPending {
		return true
	}
	if to == InvoiceStatusCancelled {
		// Any non-terminal state may be cancelled. Cancelling a
		// partially-paid invoice does not reverse its payments; the
		// recorded payments stand as an accounting note.
		switch from {
		case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusOverdue:
			return true
		}
	}
	return false
}
