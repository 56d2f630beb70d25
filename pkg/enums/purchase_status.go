package enums

// PurchaseStatus tracks the lifecycle of a checkout: a row is created as
// pending when the payment intent is issued and transitions to completed when
// the provider confirms the checkout session. No failed state is ever written;
// abandoned intents simply stay pending.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusCompleted:
		return true
	}
	return false
}
