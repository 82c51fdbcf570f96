package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "Cash on Delivery"

// Order is an immutable snapshot taken at placement time. Later price or
// title changes to the referenced products must not alter it.
type Order struct {
	ID              string
	Product         string // summary of the line items, e.g. "Mug x 2, Plate x 1"
	Name            string
	Contact         string
	Email           string
	Address         string
	ProductPrice    decimal.Decimal
	DeliveryCharges decimal.Decimal
	TotalAmount     decimal.Decimal
	Payment         string
	CreatedAt       string // UTC, RFC 3339
}

// LineItem is a (product, quantity) pair supplied when placing an order.
type LineItem struct {
	Product string `json:"product"`
	Qty     int    `json:"qty"`
}

// Customer carries the free-text fields captured with an order. The core
// requires them to be present but does not validate their shape.
type Customer struct {
	Name    string
	Contact string
	Email   string
	Address string
	Payment string
}

// OrderID formats an order id from its allocator sequence number.
func OrderID(seq int64) string {
	return "O" + strconv.FormatInt(seq, 10)
}

// Summarize builds the order's immutable product summary from resolved
// line items.
func Summarize(titles []string, qtys []int) string {
	parts := make([]string, 0, len(titles))
	for i, title := range titles {
		parts = append(parts, title+" x "+strconv.Itoa(qtys[i]))
	}
	return strings.Join(parts, ", ")
}
