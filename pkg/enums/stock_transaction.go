package enums

import "fmt"

// StockTransactionType marks the direction of a stock movement.
type StockTransactionType string

const (
	StockTransactionTypeIn  StockTransactionType = "in"
	StockTransactionTypeOut StockTransactionType = "out"
)

var validStockTransactionTypes = []StockTransactionType{
	StockTransactionTypeIn,
	StockTransactionTypeOut,
}

// String implements fmt.Stringer.
func (s StockTransactionType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockTransactionType.
func (s StockTransactionType) IsValid() bool {
	for _, candidate := range validStockTransactionTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockTransactionType converts raw input into a StockTransactionType.
func ParseStockTransactionType(value string) (StockTransactionType, error) {
	for _, candidate := range validStockTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock transaction type %q", value)
}
