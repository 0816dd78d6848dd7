package core

// PaymentStatus tracks the payment side of a procurement order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// FulfilmentStatus tracks the goods side of a procurement order.
type FulfilmentStatus string

const (
	FulfilmentCreated   FulfilmentStatus = "CREATED"
	FulfilmentInTransit FulfilmentStatus = "IN_TRANSIT"
	FulfilmentFulfilled FulfilmentStatus = "FULFILLED"
	FulfilmentCancelled FulfilmentStatus = "CANCELLED"
)

// OrderState is the (payment, fulfilment) pair a procurement order moves
// through:
//
//	payment:    PENDING → PAID; cancellation closes it as CANCELLED
//	fulfilment: CREATED → IN_TRANSIT → FULFILLED; cancellable until FULFILLED
//
// Both axes only move forward. FULFILLED, and CANCELLED on either axis, are
// terminal. Transitions are pure; services re-read the state under FOR UPDATE
// and apply these functions inside the same transaction.
type OrderState struct {
	Payment    PaymentStatus
	Fulfilment FulfilmentStatus
}

// NewOrderState is the state every order is created in.
func NewOrderState() OrderState {
	return OrderState{Payment: PaymentPending, Fulfilment: FulfilmentCreated}
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderState) Terminal() bool {
	return s.Fulfilment == FulfilmentFulfilled ||
		s.Fulfilment == FulfilmentCancelled ||
		s.Payment == PaymentCancelled
}

// MarkPaid moves payment PENDING → PAID.
func (s OrderState) MarkPaid() (OrderState, error) {
	if s.Terminal() || s.Payment != PaymentPending {
		return s, s.invalid("mark paid")
	}
	s.Payment = PaymentPaid
	return s, nil
}

// MarkInTransit moves fulfilment CREATED → IN_TRANSIT.
func (s OrderState) MarkInTransit() (OrderState, error) {
	if s.Terminal() || s.Fulfilment != FulfilmentCreated {
		return s, s.invalid("mark in transit")
	}
	s.Fulfilment = FulfilmentInTransit
	return s, nil
}

// MarkFulfilled moves fulfilment IN_TRANSIT → FULFILLED. The IN_TRANSIT step
// is mandatory; fulfilling straight from CREATED is rejected.
func (s OrderState) MarkFulfilled() (OrderState, error) {
	if s.Terminal() || s.Fulfilment != FulfilmentInTransit {
		return s, s.invalid("mark fulfilled")
	}
	s.Fulfilment = FulfilmentFulfilled
	return s, nil
}

// Cancel closes the fulfilment axis as CANCELLED. A PENDING payment is
// cancelled with it. A PAID payment is only cancelled while fulfilment is
// still CREATED; once goods are in transit the payment stands and any refund
// is handled outside this core. Fulfilled orders cannot be cancelled.
func (s OrderState) Cancel() (OrderState, error) {
	if s.Fulfilment == FulfilmentFulfilled || s.Fulfilment == FulfilmentCancelled ||
		s.Payment == PaymentCancelled {
		return s, s.invalid("cancel")
	}
	if s.Payment == PaymentPending || s.Fulfilment == FulfilmentCreated {
		s.Payment = PaymentCancelled
	}
	s.Fulfilment = FulfilmentCancelled
	return s, nil
}

func (s OrderState) invalid(event string) error {
	return &InvalidTransitionError{Event: event, Payment: s.Payment, Fulfilment: s.Fulfilment}
}
