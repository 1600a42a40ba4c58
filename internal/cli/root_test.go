package cli

import (
	"context"
	"io"
	"testing"

	"github.com/inklet/inklet/pkg/store"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"inspect", "convert", "validate", "render", "edit", "serve", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}

	if !root.SilenceUsage {
		t.Error("root command should silence usage on errors")
	}
}

func TestNewStoreBackends(t *testing.T) {
	c := New(io.Discard, LogInfo)

	c.Config.Store.Backend = "memory"
	st, err := c.newStore(context.Background())
	if err != nil {
		t.Fatalf("newStore(memory) error: %v", err)
	}
	if _, ok := st.(*store.MemoryStore); !ok {
		t.Errorf("newStore(memory) = %T", st)
	}
	st.Close()

	c.Config.Store.Backend = "file"
	c.Config.Store.Dir = t.TempDir()
	st, err = c.newStore(context.Background())
	if err != nil {
		t.Fatalf("newStore(file) error: %v", err)
	}
	if _, ok := st.(*store.FileStore); !ok {
		t.Errorf("newStore(file) = %T", st)
	}
	st.Close()

	c.Config.Store.Backend = "sqlite"
	if _, err := c.newStore(context.Background()); err == nil {
		t.Error("newStore should reject unknown backends")
	}
}
