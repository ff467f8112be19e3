package engine

import (
	"errors"
	"fmt"
)

// RejectError reports a request the engine refused to apply. The log and
// balances are untouched when one is returned.
//
// RejectError includes structured fields for diagnostics; a zero field
// simply does not apply to the rejected operation.
type RejectError struct {
	// Code identifies the rejection category.
	Code RejectCode

	// Message is a human-readable description.
	Message string

	// CustomerID identifies the affected customer, when known.
	CustomerID string

	// ProductID identifies the affected product, when known.
	ProductID string

	// OrderID identifies the affected order (refund and lookup paths).
	OrderID string
}

// RejectCode categorizes rejections.
type RejectCode string

const (
	// ErrCodeValidation indicates malformed input (non-positive quantity,
	// empty identifier, wrong shelf).
	ErrCodeValidation RejectCode = "REJECT_VALIDATION"

	// ErrCodeUnknownProduct indicates the product ID is not in the catalog.
	ErrCodeUnknownProduct RejectCode = "REJECT_UNKNOWN_PRODUCT"

	// ErrCodeUnknownCustomer indicates the customer ID is not registered.
	ErrCodeUnknownCustomer RejectCode = "REJECT_UNKNOWN_CUSTOMER"

	// ErrCodeUnknownOrder indicates the order ID does not exist.
	ErrCodeUnknownOrder RejectCode = "REJECT_UNKNOWN_ORDER"

	// ErrCodeInsufficientStock indicates derived stock cannot cover the
	// requested quantity.
	ErrCodeInsufficientStock RejectCode = "REJECT_INSUFFICIENT_STOCK"

	// ErrCodeInsufficientPoints indicates the points balance cannot cover
	// a points-shelf purchase.
	ErrCodeInsufficientPoints RejectCode = "REJECT_INSUFFICIENT_POINTS"

	// ErrCodePointsCeiling indicates the buyer is at or over the points
	// ceiling and the purchase would earn more.
	ErrCodePointsCeiling RejectCode = "REJECT_POINTS_CEILING"

	// ErrCodeSpecialRedeem indicates a special user tried to redeem points.
	ErrCodeSpecialRedeem RejectCode = "REJECT_SPECIAL_REDEEM"

	// ErrCodeRefundWindow indicates the order is older than the refund
	// window.
	ErrCodeRefundWindow RejectCode = "REJECT_REFUND_WINDOW"

	// ErrCodeRefundExcess indicates the requested quantity exceeds what is
	// still refundable on the order.
	ErrCodeRefundExcess RejectCode = "REJECT_REFUND_EXCESS"

	// ErrCodeNotConfirmed indicates the operation needed explicit
	// confirmation and did not get it.
	ErrCodeNotConfirmed RejectCode = "REJECT_NOT_CONFIRMED"
)

// Error implements the error interface.
func (e *RejectError) Error() string {
	switch {
	case e.OrderID != "":
		return fmt.Sprintf("%s: %s (order=%s)", e.Code, e.Message, e.OrderID)
	case e.CustomerID != "" && e.ProductID != "":
		return fmt.Sprintf("%s: %s (customer=%s, product=%s)", e.Code, e.Message, e.CustomerID, e.ProductID)
	case e.CustomerID != "":
		return fmt.Sprintf("%s: %s (customer=%s)", e.Code, e.Message, e.CustomerID)
	case e.ProductID != "":
		return fmt.Sprintf("%s: %s (product=%s)", e.Code, e.Message, e.ProductID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// RejectCodeOf extracts the rejection code from err, or "" if err is not a
// RejectError. Uses errors.As to handle wrapped errors.
func RejectCodeOf(err error) RejectCode {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsReject returns true if err is a RejectError.
func IsReject(err error) bool {
	var re *RejectError
	return errors.As(err, &re)
}

// IsNotConfirmed returns true if the operation was cancelled for lack of
// confirmation.
func IsNotConfirmed(err error) bool {
	return RejectCodeOf(err) == ErrCodeNotConfirmed
}
