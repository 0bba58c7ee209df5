package domain

import (
	"time"
)

// Status represents the FBS posting status reported by the Ozon Seller API.
type Status string

const (
	// StatusAwaitingRegistration indicates the posting awaits registration.
	StatusAwaitingRegistration Status = "awaiting_registration"
	// StatusAcceptanceInProgress indicates acceptance is in progress.
	StatusAcceptanceInProgress Status = "acceptance_in_progress"
	// StatusAwaitingApprove indicates the posting awaits confirmation.
	StatusAwaitingApprove Status = "awaiting_approve"
	// StatusAwaitingPackaging indicates the posting is ready to be packaged.
	StatusAwaitingPackaging Status = "awaiting_packaging"
	// StatusAwaitingDeliver indicates the posting is packaged and awaits handover.
	StatusAwaitingDeliver Status = "awaiting_deliver"
	// StatusArbitration indicates the posting is in arbitration.
	StatusArbitration Status = "arbitration"
	// StatusClientArbitration indicates the posting is in client delivery arbitration.
	StatusClientArbitration Status = "client_arbitration"
	// StatusDelivering indicates the posting is being delivered.
	StatusDelivering Status = "delivering"
	// StatusDriverPickup indicates the posting is with the driver.
	StatusDriverPickup Status = "driver_pickup"
	// StatusCancelled indicates the posting was cancelled.
	StatusCancelled Status = "cancelled"
	// StatusNotAccepted indicates the posting was not accepted at the sorting center.
	StatusNotAccepted Status = "not_accepted"
)

// statusLabels maps FBS statuses to human-readable text for notifications.
var statusLabels = map[Status]string{
	StatusAwaitingRegistration: "Awaiting registration",
	StatusAcceptanceInProgress: "Acceptance in progress",
	StatusAwaitingApprove:      "Awaiting confirmation",
	StatusAwaitingPackaging:    "Awaiting packaging",
	StatusAwaitingDeliver:      "Awaiting shipment",
	StatusArbitration:          "Arbitration",
	StatusClientArbitration:    "Client delivery arbitration",
	StatusDelivering:           "Delivering",
	StatusDriverPickup:         "With driver",
	StatusCancelled:            "Cancelled",
	StatusNotAccepted:          "Not accepted at sorting center",
}

// Label returns the human-readable description of the status.
// Unknown statuses are returned as-is so new API values still display.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Posting represents an FBS posting (order shipment) from the Ozon Seller API.
type Posting struct {
	// PostingNumber is the unique posting identifier (e.g., "12345-0001-1").
	PostingNumber string `json:"posting_number"`
	// OrderID is the numeric order identifier the posting belongs to.
	OrderID int64 `json:"order_id"`
	// OrderNumber is the human-facing order number.
	OrderNumber string `json:"order_number"`
	// Status is the current FBS status of the posting.
	Status Status `json:"status"`
	// ShipmentDate is the deadline for handing the posting to the carrier.
	ShipmentDate time.Time `json:"shipment_date"`
	// InProcessAt is when the posting entered processing.
	InProcessAt time.Time `json:"in_process_at"`
	// Products are the items included in the posting.
	Products []Product `json:"products"`
}

// Package describes one physical package when assembling a posting.
type Package struct {
	// Products lists the product quantities placed in the package.
	Products []PackageProduct `json:"products"`
}

// PackageProduct is a product quantity inside a package.
type PackageProduct struct {
	// ProductID is the Ozon product identifier (SKU).
	ProductID int64 `json:"product_id"`
	// Quantity is the number of units packed.
	Quantity int `json:"quantity"`
}

// SinglePackage builds one package containing every product of the posting.
// This is the default assembly used by the ship command.
func (p *Posting) SinglePackage() []Package {
	products := make([]PackageProduct, 0, len(p.Products))
	for _, product := range p.Products {
		products = append(products, PackageProduct{
			ProductID: product.SKU,
			Quantity:  product.Quantity,
		})
	}
	return []Package{{Products: products}}
}

// Product represents an individual item within a posting.
type Product struct {
	// SKU is the Ozon product identifier.
	SKU int64 `json:"sku"`
	// OfferID is the seller's own article for the product.
	OfferID string `json:"offer_id"`
	// Name is the product name.
	Name string `json:"name"`
	// Quantity is the number of units in the posting.
	Quantity int `json:"quantity"`
	// Price is the unit price as reported by the API (decimal string).
	Price string `json:"price"`
	// CurrencyCode is the price currency (e.g., RUB).
	CurrencyCode string `json:"currency_code"`
}
