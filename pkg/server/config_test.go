package server

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Address != ":8080" {
		t.Errorf("address %q", c.Address)
	}
	if c.SessionConfig == nil {
		t.Fatal("session config missing")
	}
	if c.SessionConfig.ReadTimeout != 60*time.Second {
		t.Errorf("read timeout %v", c.SessionConfig.ReadTimeout)
	}
	if c.LivePath != "/_glint/live" {
		t.Errorf("live path %q", c.LivePath)
	}
}

func TestWithDefaultsFillsUnsetFields(t *testing.T) {
	c := (&Config{Address: ":9999"}).withDefaults()
	if c.Address != ":9999" {
		t.Errorf("explicit address overwritten: %q", c.Address)
	}
	if c.ReadBufferSize != 4096 {
		t.Errorf("buffer default not applied: %d", c.ReadBufferSize)
	}
	if c.SessionConfig == nil {
		t.Error("session config default not applied")
	}
}

func TestWithDefaultsNil(t *testing.T) {
	c := (*Config)(nil).withDefaults()
	if c == nil || c.Address == "" {
		t.Fatal("nil config should produce full defaults")
	}
}
