package domain

import (
	pDomain "github.com/ridloal/storefront-sync/internal/product/domain"
)

// CartItem is a copy of the product fields shown in the cart. It keeps no link to the
// product record: later edits or deletes of the product do not touch the cart.
type CartItem struct {
	Name     string        `json:"name" binding:"required"`
	Price    pDomain.Price `json:"price"`
	Image    string        `json:"image"`
	Category string        `json:"category"`
}

type Cart struct {
	ProfileID string     `json:"profile_id"`
	Items     []CartItem `json:"items"`
	Total     string     `json:"total"`
	Count     int        `json:"count"`
}

type BankDetails struct {
	Bank          string `json:"bank"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	ContactPhone  string `json:"contact_phone"`
}

// CheckoutSummary is the static payment instruction screen. Nothing is charged or sent.
type CheckoutSummary struct {
	Items        []CartItem  `json:"items"`
	Total        string      `json:"total"`
	Instructions string      `json:"instructions"`
	Bank         BankDetails `json:"bank"`
	FollowUp     string      `json:"follow_up"`
}
