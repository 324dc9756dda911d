package enums

import "testing"

func TestOrderStatusIsValid(t *testing.T) {
	t.Parallel()

	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered} {
		if !status.IsValid() {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if OrderStatus("CANCELED").IsValid() {
		t.Fatal("unknown status must be invalid")
	}
	if OrderStatus("processing").IsValid() {
		t.Fatal("statuses are case sensitive")
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	if !OrderStatusPending.CanTransitionTo(OrderStatusProcessing) {
		t.Fatal("pending -> processing must be allowed")
	}
	if !OrderStatusPending.CanTransitionTo(OrderStatusDelivered) {
		t.Fatal("forward jumps are allowed")
	}
	if OrderStatusShipped.CanTransitionTo(OrderStatusProcessing) {
		t.Fatal("backward transitions must be rejected")
	}
	if !OrderStatusShipped.CanTransitionTo(OrderStatusShipped) {
		t.Fatal("same-status transition is a no-op, not an error")
	}
	if OrderStatus("X").CanTransitionTo(OrderStatusShipped) {
		t.Fatal("unknown source status cannot transition")
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseOrderStatus("SHIPPED")
	if err != nil || status != OrderStatusShipped {
		t.Fatalf("unexpected result: %v %v", status, err)
	}
	if _, err := ParseOrderStatus("refunded"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
