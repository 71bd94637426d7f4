package enums

import "testing"

func TestOrderStatusOrdering(t *testing.T) {
	statuses := OrderStatuses()
	if len(statuses) != 5 {
		t.Fatalf("expected 5 statuses, got %d", len(statuses))
	}
	for i, status := range statuses {
		if status.Index() != i {
			t.Errorf("status %s index = %d, want %d", status, status.Index(), i)
		}
	}
	if OrderStatusPending.Compare(OrderStatusDelivered) >= 0 {
		t.Error("pending should precede delivered")
	}
	if OrderStatusShipped.Compare(OrderStatusProcessing) <= 0 {
		t.Error("shipped should follow processing")
	}
	if OrderStatusConfirmed.Compare(OrderStatusConfirmed) != 0 {
		t.Error("status should compare equal to itself")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusDelivered.IsTerminal() {
		t.Error("delivered must be terminal")
	}
	for _, status := range OrderStatuses()[:4] {
		if status.IsTerminal() {
			t.Errorf("%s must not be terminal", status)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("shipped"); err != nil {
		t.Fatalf("parse shipped: %v", err)
	}
	if _, err := ParseOrderStatus("teleported"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if OrderStatus("teleported").Index() != -1 {
		t.Error("unknown status should have index -1")
	}
}

func TestParseSubscriptionFrequency(t *testing.T) {
	cases := []struct {
		in      string
		want    SubscriptionFrequency
		wantErr bool
	}{
		{in: "weekly", want: SubscriptionFrequencyWeekly},
		{in: " WEEKLY ", want: SubscriptionFrequencyWeekly},
		{in: "Monthly", want: SubscriptionFrequencyMonthly},
		{in: "daily", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseSubscriptionFrequency(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSubscriptionFrequency(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSubscriptionFrequency(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSubscriptionFrequency(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
