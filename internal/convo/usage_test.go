package convo

import "testing"

func TestTokenCountAdd(t *testing.T) {
	tests := []struct {
		name       string
		a, b       TokenCount
		want       uint64
		wantApprox bool
	}{
		{"actual plus actual stays actual", Actual(10), Actual(5), 15, false},
		{"actual plus approx degrades", Actual(10), Approx(5), 15, true},
		{"approx plus actual degrades", Approx(10), Actual(5), 15, true},
		{"absent is identity", TokenCount{}, Actual(5), 5, false},
		{"identity on the right", Approx(7), TokenCount{}, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := tt.a.Add(tt.b)
			got, ok := sum.Value()
			if !ok {
				t.Fatal("sum not present")
			}
			if got != tt.want || sum.IsApprox() != tt.wantApprox {
				t.Fatalf("Add = (%d, approx=%v), want (%d, approx=%v)", got, sum.IsApprox(), tt.want, tt.wantApprox)
			}
		})
	}

	if _, ok := (TokenCount{}).Add(TokenCount{}).Value(); ok {
		t.Fatal("absent plus absent should stay absent")
	}
}

func TestCostAdd(t *testing.T) {
	if got, ok := (Cost{}).Add(NewCost(0.25)).Value(); !ok || got != 0.25 {
		t.Fatalf("None + x = (%v, %v), want 0.25", got, ok)
	}
	if got, ok := NewCost(0.5).Add(NewCost(0.25)).Value(); !ok || got != 0.75 {
		t.Fatalf("sum = (%v, %v), want 0.75", got, ok)
	}
	if _, ok := (Cost{}).Add(Cost{}).Value(); ok {
		t.Fatal("absent plus absent should stay absent")
	}
}
