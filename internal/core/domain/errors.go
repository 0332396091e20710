package domain

import "fmt"

type ErrorKind string

const (
	ErrKindEmptyCart         ErrorKind = "EMPTY_CART"
	ErrKindProductNotFound   ErrorKind = "PRODUCT_NOT_FOUND"
	ErrKindFlashSaleEnded    ErrorKind = "FLASH_SALE_ENDED"
	ErrKindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	ErrKindRaceCondition     ErrorKind = "RACE_CONDITION"
	ErrKindLockTimeout       ErrorKind = "LOCK_TIMEOUT"
	ErrKindStoreUnavailable  ErrorKind = "STORE_UNAVAILABLE"
	ErrKindDuplicateRequest  ErrorKind = "DUPLICATE_REQUEST"
)

// CheckoutError is the failure contract of checkout and cart validation.
// ProductID and Available are zero unless the kind calls for them; Available
// is only meaningful for INSUFFICIENT_STOCK.
type CheckoutError struct {
	Kind      ErrorKind
	ProductID int64
	Available int
	Message   string
}

func (e *CheckoutError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Retryable reports whether resubmitting the same request may succeed.
// Validation failures are not retryable without changing the request.
func (e *CheckoutError) Retryable() bool {
	switch e.Kind {
	case ErrKindRaceCondition, ErrKindLockTimeout, ErrKindStoreUnavailable:
		return true
	}
	return false
}

// Is matches by kind so callers can use errors.Is with a bare-kind target.
func (e *CheckoutError) Is(target error) bool {
	t, ok := target.(*CheckoutError)
	return ok && t.Kind == e.Kind
}

func ErrEmptyCart() *CheckoutError {
	return &CheckoutError{Kind: ErrKindEmptyCart, Message: "cart is empty"}
}

func ErrProductNotFound(productID int64) *CheckoutError {
	return &CheckoutError{
		Kind:      ErrKindProductNotFound,
		ProductID: productID,
		Message:   fmt.Sprintf("product %d not found", productID),
	}
}

func ErrFlashSaleEnded(productID int64, name string) *CheckoutError {
	return &CheckoutError{
		Kind:      ErrKindFlashSaleEnded,
		ProductID: productID,
		Message:   fmt.Sprintf("flash sale has ended for %s", name),
	}
}

func ErrInsufficientStock(productID int64, name string, requested, available int) *CheckoutError {
	return &CheckoutError{
		Kind:      ErrKindInsufficientStock,
		ProductID: productID,
		Available: available,
		Message:   fmt.Sprintf("insufficient stock for %s: available %d, requested %d", name, available, requested),
	}
}

func ErrRaceCondition(productID int64) *CheckoutError {
	return &CheckoutError{
		Kind:      ErrKindRaceCondition,
		ProductID: productID,
		Message:   fmt.Sprintf("stock update for product %d affected no rows despite row lock", productID),
	}
}

func ErrLockTimeout(cause error) *CheckoutError {
	return &CheckoutError{
		Kind:    ErrKindLockTimeout,
		Message: fmt.Sprintf("lock wait timed out: %v", cause),
	}
}

func ErrStoreUnavailable(cause error) *CheckoutError {
	return &CheckoutError{
		Kind:    ErrKindStoreUnavailable,
		Message: fmt.Sprintf("store unavailable: %v", cause),
	}
}

func ErrDuplicateRequest(requestID string) *CheckoutError {
	return &CheckoutError{
		Kind:    ErrKindDuplicateRequest,
		Message: fmt.Sprintf("request %s already processed", requestID),
	}
}
