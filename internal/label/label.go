// Package label renders shipping labels for placed orders. The core's
// only dependency on it is the render call after an order-by-id lookup.
package label

import (
	"strings"

	"storefront/internal/core/domain"
)

// Render produces the plain-text shipping label for an order.
func Render(o domain.Order) string {
	var b strings.Builder
	b.WriteString("Shipping Label\n")
	b.WriteString("-------------------------\n")
	b.WriteString("Order ID: " + o.ID + "\n")
	b.WriteString("Name: " + o.Name + "\n")
	b.WriteString("Contact: " + o.Contact + "\n")
	b.WriteString("Email: " + o.Email + "\n")
	b.WriteString("Address: " + o.Address + "\n")
	b.WriteString("Product: " + o.Product + "\n")
	b.WriteString("Total Amount: Rs." + domain.Money(o.TotalAmount) + "\n")
	b.WriteString("Shipping Charge: Rs." + domain.Money(o.DeliveryCharges) + "\n")
	b.WriteString("Payment Method: " + o.Payment + "\n")
	b.WriteString("Order Date: " + o.CreatedAt + "\n")
	return b.String()
}
