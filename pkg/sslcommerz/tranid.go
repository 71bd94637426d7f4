package sslcommerz

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/sajidhasan/farmcart-backend/pkg/errors"
)

// Gateway transaction ids are self-describing: ORDER_{order uuid}_{unix ms}.
// The timestamp suffix keeps retried payment attempts distinct while the
// order id lets callbacks find their order without extra lookup state.
const tranIDPrefix = "ORDER_"

var tranIDPattern = regexp.MustCompile(`^ORDER_([0-9a-fA-F-]{36})_(\d+)$`)

// ErrMalformedTransactionID marks a transaction id that does not follow the
// ORDER_{uuid}_{ms} shape. Callbacks treat it differently from an unknown
// but well-formed id.
var ErrMalformedTransactionID = pkgerrors.New(pkgerrors.CodeValidation, "malformed transaction id")

// FormatTransactionID builds the gateway transaction id for an order.
func FormatTransactionID(orderID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s%s_%d", tranIDPrefix, orderID, at.UnixMilli())
}

// OrderIDFromTransactionID recovers the order id embedded in a gateway
// transaction id.
func OrderIDFromTransactionID(tranID string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(tranID)
	matches := tranIDPattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return uuid.Nil, ErrMalformedTransactionID
	}
	orderID, err := uuid.Parse(matches[1])
	if err != nil {
		return uuid.Nil, ErrMalformedTransactionID
	}
	return orderID, nil
}
