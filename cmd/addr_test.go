package cmd

import (
	"testing"

	"github.com/voxpersona/voxpersona/internal/api"
)

func TestValidateAddr(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"loopback with port", "127.0.0.1:8080", false},
		{"localhost", "localhost:3000", false},
		{"all interfaces", ":8080", false},
		{"auto-assign port", "127.0.0.1:0", false},
		{"ipv6", "[::1]:8080", false},
		{"missing port", "127.0.0.1", true},
		{"non-numeric port", "127.0.0.1:http", true},
		{"port too large", "127.0.0.1:70000", true},
		{"whitespace host", "bad host:8080", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAddr(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAddr(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultServeAddr(t *testing.T) {
	t.Setenv("VOXPERSONA_ADDR", "")
	if got := defaultServeAddr(); got != api.DefaultAddr {
		t.Errorf("default addr = %q, want %q", got, api.DefaultAddr)
	}

	t.Setenv("VOXPERSONA_ADDR", "0.0.0.0:9000")
	if got := defaultServeAddr(); got != "0.0.0.0:9000" {
		t.Errorf("env addr = %q, want 0.0.0.0:9000", got)
	}
}
