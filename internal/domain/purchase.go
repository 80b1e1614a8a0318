package domain

import "time"

// PurchaseStatus is the outcome of a purchase validation attempt.
type PurchaseStatus string

const (
	PurchaseStatusValid   PurchaseStatus = "valid"
	PurchaseStatusInvalid PurchaseStatus = "invalid"
)

// PurchaseRequest is a client-submitted in-app purchase receipt.
type PurchaseRequest struct {
	PlayerID      string `json:"playerId"`
	ProductID     string `json:"productId"`
	PurchaseToken string `json:"purchaseToken"`
	Platform      string `json:"platform"`
}

// PurchaseRecord is the stored result of a validation attempt, keyed by
// purchase token so a replayed receipt can grant its reward at most once.
type PurchaseRecord struct {
	PurchaseToken string         `json:"purchaseToken"`
	PlayerID      string         `json:"playerId"`
	ProductID     string         `json:"productId"`
	Platform      string         `json:"platform"`
	Status        PurchaseStatus `json:"status"`
	ValidatedAt   time.Time      `json:"validatedAt"`
}

// ProductReward describes what a store product grants on purchase.
// Exactly one of Gems or AdRemoval is set per product.
type ProductReward struct {
	Gems      int64
	AdRemoval bool
}
