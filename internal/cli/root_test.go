package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/svz/pkg/buildinfo"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"graph", "parse", "render", "browse", "export", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if cmd, _, err := root.Find([]string{"export", "neo4j"}); err != nil || cmd.Name() != "neo4j" {
		t.Error("export neo4j not registered")
	}
}

func TestRootCommandVersion(t *testing.T) {
	isolate(t)
	defer func(v string) { buildinfo.Version = v }(buildinfo.Version)
	buildinfo.Version = "v1.2.3"

	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !strings.Contains(out.String(), "v1.2.3") {
		t.Errorf("--version output = %q, want it to contain v1.2.3", out.String())
	}
}

func TestGraphFlagsRegistered(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	cmd, _, err := root.Find([]string{"graph"})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"output", "format", "parser", "accent", "no-color", "no-cache", "refresh", "scale"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("graph is missing --%s", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root is missing --config")
	}
}
