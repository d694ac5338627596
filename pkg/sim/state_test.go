package sim

import "testing"

func TestStateAt(t *testing.T) {
	tests := []struct {
		name   string
		along  float64
		length float64
		want   State
	}{
		{"start -> idle", 0, 100, StateIdle},
		{"moving -> driving", 0.1, 100, StateDriving},
		{"end -> arrived", 100, 100, StateArrived},
		{"beyond -> arrived", 150, 100, StateArrived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stateAt(tt.along, tt.length); got != tt.want {
				t.Errorf("stateAt(%v, %v) = %v, want %v", tt.along, tt.length, got, tt.want)
			}
		})
	}
}
