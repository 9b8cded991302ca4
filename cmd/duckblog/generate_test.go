package main

import (
	"bytes"
	"testing"
)

func TestLocalURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":3000", "http://127.0.0.1:3000"},
		{"0.0.0.0:8080", "http://127.0.0.1:8080"},
		{"localhost:9000", "http://localhost:9000"},
		{"[::]:3000", "http://127.0.0.1:3000"},
	}
	for _, tt := range tests {
		got, err := localURL(tt.addr)
		if err != nil {
			t.Fatalf("localURL(%q) error = %v", tt.addr, err)
		}
		if got != tt.want {
			t.Errorf("localURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestLocalURLRejectsMissingPort(t *testing.T) {
	if _, err := localURL("localhost"); err == nil {
		t.Error("localURL(\"localhost\") error = nil, want error")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, want := out.String(), "duckblog dev\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
