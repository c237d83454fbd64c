package models

import "testing"

func TestSeriesPointValue(t *testing.T) {
	p := SeriesPoint{Date: "2024-01-01", Steel: 1, Wood: 2, Glass: 3}

	tests := []struct {
		material Material
		want     float64
	}{
		{MaterialSteel, 1},
		{MaterialWood, 2},
		{MaterialGlass, 3},
		{Material{Key: "copper"}, 0},
	}

	for _, tt := range tests {
		if got := p.Value(tt.material); got != tt.want {
			t.Errorf("Value(%s) = %v, want %v", tt.material.Key, got, tt.want)
		}
	}
}

func TestMaterialsOrder(t *testing.T) {
	got := Materials()
	if len(got) != 3 {
		t.Fatalf("Materials() returned %d entries, want 3", len(got))
	}
	want := []string{"Steel", "Wood", "Glass"}
	for i, m := range got {
		if m.Label != want[i] {
			t.Errorf("Materials()[%d] = %s, want %s", i, m.Label, want[i])
		}
	}
}

func TestEntryConstructors(t *testing.T) {
	u := UserEntry("  raise steel  ")
	if u.Role != RoleUser || u.Text != "  raise steel  " {
		t.Errorf("UserEntry() = %+v", u)
	}

	a := AssistantEntry("ok")
	if a.Role != RoleAssistant || a.Text != "ok" {
		t.Errorf("AssistantEntry() = %+v", a)
	}
}
