package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

const PlaceholderImage = "/images/placeholder.png"

type Product struct {
	ID    string
	Title string
	Price decimal.Decimal
	Img   string
	Stock int
}

// ProductID formats a product id from its allocator sequence number.
func ProductID(seq int64) string {
	return "p" + strconv.FormatInt(seq, 10)
}

// IDSequence extracts the numeric suffix of an id such as "p12" or "O7".
// Returns 0 for ids that do not follow the prefix+number format, so
// malformed rows never advance an allocator.
func IDSequence(id string) int64 {
	if len(id) < 2 {
		return 0
	}
	n, err := strconv.ParseInt(id[1:], 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
