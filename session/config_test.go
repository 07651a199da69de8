package session

import (
	"errors"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	c := Config{}
	c.setDefaults()
	if c.BufferSize != 2056 {
		t.Errorf("BufferSize = %d, want 2056", c.BufferSize)
	}
	if c.RxWindow != 2*time.Millisecond {
		t.Errorf("RxWindow = %v, want 2ms", c.RxWindow)
	}
	if c.ResponseTimeout != time.Second {
		t.Errorf("ResponseTimeout = %v, want 1s", c.ResponseTimeout)
	}
	if c.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("New(nil transport) = %v, want ErrInvalidParameter", err)
	}
	if _, err := New(NewTestTransport(), Config{BufferSize: -1}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("New with negative capacity = %v, want ErrInvalidParameter", err)
	}
}
