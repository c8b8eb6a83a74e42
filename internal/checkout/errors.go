package checkout

import "errors"

// User-recoverable checkout failures. Anything else surfacing from
// PlaceOrder is a persistence failure: logged with context, reported to
// the client as a generic message.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUndeliverableAddress = errors.New("address is outside our delivery area")
)
