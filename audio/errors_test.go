package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidDstSize", ErrInvalidDstSize, "dst size must be multiple of channels"},
		{"ErrInvalidRate", ErrInvalidRate, "sample rate must be positive"},
		{"ErrInvalidChannels", ErrInvalidChannels, "channel count must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("%s is nil", tt.name)
			}
			if tt.err.Error() != tt.msg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.msg)
			}
		})
	}
}

func TestSentinelErrors_Comparison(t *testing.T) {
	t.Parallel()

	if !errors.Is(ErrInvalidRate, ErrInvalidRate) {
		t.Error("errors.Is() failed for ErrInvalidRate")
	}

	otherErr := errors.New("some other error")
	if errors.Is(otherErr, ErrInvalidRate) {
		t.Error("errors.Is() should return false for different error")
	}
}

func TestSentinelErrors_Wrapping(t *testing.T) {
	t.Parallel()

	wrappedErr := fmt.Errorf("resampler 0 -> 8000 Hz: %w", ErrInvalidRate)
	if !errors.Is(wrappedErr, ErrInvalidRate) {
		t.Error("errors.Is() failed for wrapped ErrInvalidRate")
	}
}
