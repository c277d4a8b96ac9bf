package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "version"} {
		if !names[want] {
			t.Errorf("root command missing %q subcommand", want)
		}
	}
}

func TestServeFlags(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		name string
		def  string
	}{
		{"addr", ":8080"},
		{"config", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.name)
			if f == nil {
				t.Fatalf("flag --%s not defined", tt.name)
			}
			if f.DefValue != tt.def {
				t.Errorf("--%s default = %q, want %q", tt.name, f.DefValue, tt.def)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(buf.String(), "artwork-table "+version) {
		t.Errorf("output = %q, want version line", buf.String())
	}
}

func TestServe_InvalidConfig(t *testing.T) {
	t.Setenv("PAGE_SIZE", "-1")
	t.Setenv("CONFIG_PATH", "")

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})

	if err := root.Execute(); err == nil {
		t.Fatal("serve with an invalid page size should fail")
	}
}
