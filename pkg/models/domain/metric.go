package domain

// ClaimStatus tracks a claim through the revenue cycle.
type ClaimStatus string

const (
	ClaimStatusSubmitted ClaimStatus = "submitted"
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusPaid      ClaimStatus = "paid"
	ClaimStatusDenied    ClaimStatus = "denied"
)
