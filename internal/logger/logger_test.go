package logger

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		env, level string
		debug      bool
	}{
		{"production", "info", false},
		{"development", "debug", true},
		{"test", "invalido", false},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			log := New(tt.env, tt.level)
			if log == nil {
				t.Fatal("New() returned nil")
			}
			if got := log.Desugar().Core().Enabled(-1); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}
