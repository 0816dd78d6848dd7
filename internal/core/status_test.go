package core_test

import (
	"errors"
	"testing"

	"kettle-backoffice/internal/core"
)

func TestOrderState_Lifecycle(t *testing.T) {
	s := core.NewOrderState()
	if s.Payment != core.PaymentPending || s.Fulfilment != core.FulfilmentCreated {
		t.Fatalf("new order should start (PENDING, CREATED), got (%s, %s)", s.Payment, s.Fulfilment)
	}

	s, err := s.MarkPaid()
	if err != nil {
		t.Fatalf("MarkPaid from pending failed: %v", err)
	}
	s, err = s.MarkInTransit()
	if err != nil {
		t.Fatalf("MarkInTransit from created failed: %v", err)
	}
	s, err = s.MarkFulfilled()
	if err != nil {
		t.Fatalf("MarkFulfilled from in-transit failed: %v", err)
	}
	if s.Payment != core.PaymentPaid || s.Fulfilment != core.FulfilmentFulfilled {
		t.Errorf("expected (PAID, FULFILLED), got (%s, %s)", s.Payment, s.Fulfilment)
	}
	if !s.Terminal() {
		t.Error("fulfilled order should be terminal")
	}
}

func TestOrderState_Transitions(t *testing.T) {
	tests := []struct {
		name      string
		from      core.OrderState
		apply     func(core.OrderState) (core.OrderState, error)
		want      core.OrderState
		expectErr bool
	}{
		{
			name:  "pay pending order",
			from:  core.OrderState{Payment: core.PaymentPending, Fulfilment: core.FulfilmentCreated},
			apply: core.OrderState.MarkPaid,
			want:  core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentCreated},
		},
		{
			name:      "pay twice",
			from:      core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentCreated},
			apply:     core.OrderState.MarkPaid,
			expectErr: true,
		},
		{
			name:      "fulfil straight from created",
			from:      core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentCreated},
			apply:     core.OrderState.MarkFulfilled,
			expectErr: true,
		},
		{
			name:  "transit before payment",
			from:  core.OrderState{Payment: core.PaymentPending, Fulfilment: core.FulfilmentCreated},
			apply: core.OrderState.MarkInTransit,
			want:  core.OrderState{Payment: core.PaymentPending, Fulfilment: core.FulfilmentInTransit},
		},
		{
			name:      "transit twice",
			from:      core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentInTransit},
			apply:     core.OrderState.MarkInTransit,
			expectErr: true,
		},
		{
			name:  "cancel fresh order cancels payment too",
			from:  core.OrderState{Payment: core.PaymentPending, Fulfilment: core.FulfilmentCreated},
			apply: core.OrderState.Cancel,
			want:  core.OrderState{Payment: core.PaymentCancelled, Fulfilment: core.FulfilmentCancelled},
		},
		{
			name:  "cancel paid order before dispatch refunds payment",
			from:  core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentCreated},
			apply: core.OrderState.Cancel,
			want:  core.OrderState{Payment: core.PaymentCancelled, Fulfilment: core.FulfilmentCancelled},
		},
		{
			name:  "cancel paid order in transit keeps payment",
			from:  core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentInTransit},
			apply: core.OrderState.Cancel,
			want:  core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentCancelled},
		},
		{
			name:      "cancel fulfilled order",
			from:      core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentFulfilled},
			apply:     core.OrderState.Cancel,
			expectErr: true,
		},
		{
			name:      "cancel twice",
			from:      core.OrderState{Payment: core.PaymentCancelled, Fulfilment: core.FulfilmentCancelled},
			apply:     core.OrderState.Cancel,
			expectErr: true,
		},
		{
			name:      "pay cancelled order",
			from:      core.OrderState{Payment: core.PaymentCancelled, Fulfilment: core.FulfilmentCancelled},
			apply:     core.OrderState.MarkPaid,
			expectErr: true,
		},
		{
			name:      "fulfil cancelled order",
			from:      core.OrderState{Payment: core.PaymentPaid, Fulfilment: core.FulfilmentCancelled},
			apply:     core.OrderState.MarkFulfilled,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.apply(tt.from)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error from (%s, %s), got nil", tt.from.Payment, tt.from.Fulfilment)
				}
				var ite *core.InvalidTransitionError
				if !errors.As(err, &ite) {
					t.Errorf("expected InvalidTransitionError, got %T: %v", err, err)
				}
				if got != tt.from {
					t.Errorf("failed transition must not change state: got (%s, %s)", got.Payment, got.Fulfilment)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected (%s, %s), got (%s, %s)",
					tt.want.Payment, tt.want.Fulfilment, got.Payment, got.Fulfilment)
			}
		})
	}
}
