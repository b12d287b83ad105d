package billing

import "testing"

func TestLookupPlan(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		credits int64
		found   bool
	}{
		{in: "basic", want: "basic", credits: 5, found: true},
		{in: "standard", want: "standard", credits: 15, found: true},
		{in: "premium", want: "premium", credits: 50, found: true},
		{in: "pro", want: "pro", credits: 200, found: true},
		{in: "  Basic ", want: "basic", credits: 5, found: true},
		{in: "enterprise", found: false},
		{in: "", found: false},
	}

	for _, tt := range tests {
		got, ok := LookupPlan(tt.in)
		if ok != tt.found {
			t.Fatalf("LookupPlan(%q) found = %v, want %v", tt.in, ok, tt.found)
		}
		if !tt.found {
			continue
		}
		if got.ID != tt.want || got.Credits != tt.credits {
			t.Fatalf("LookupPlan(%q) = %+v, want id=%q credits=%d", tt.in, got, tt.want, tt.credits)
		}
	}
}

func TestPlanIsRecurring(t *testing.T) {
	for _, id := range []string{"basic", "standard", "premium"} {
		p, _ := LookupPlan(id)
		if p.IsRecurring() {
			t.Fatalf("expected plan %q to be one-time", id)
		}
	}
	pro, _ := LookupPlan("pro")
	if !pro.IsRecurring() {
		t.Fatalf("expected plan pro to be recurring")
	}
	if pro.Interval != IntervalMonthly {
		t.Fatalf("expected pro interval %q, got %q", IntervalMonthly, pro.Interval)
	}
}

func TestListPlansOrder(t *testing.T) {
	plans := ListPlans()
	if len(plans) != 4 {
		t.Fatalf("expected 4 plans, got %d", len(plans))
	}
	for i, want := range []string{"basic", "standard", "premium", "pro"} {
		if plans[i].ID != want {
			t.Fatalf("plans[%d] = %q, want %q", i, plans[i].ID, want)
		}
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	for _, status := range []string{"active", "trialing", "past_due"} {
		if !isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be entitling", status)
		}
	}
	for _, status := range []string{"canceled", "incomplete", "unpaid", ""} {
		if isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}
