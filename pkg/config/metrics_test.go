package config

import "testing"

func TestInitializeMetrics_Disabled(t *testing.T) {
	result := InitializeMetrics(&Config{})

	if result.Server != nil {
		t.Error("Expected no server when metrics are disabled")
	}
	if result.Kernel == nil {
		t.Error("Expected a no-op kernel collector")
	}
	if result.Backend != nil {
		t.Error("Expected no backend metrics factory when disabled")
	}
}
