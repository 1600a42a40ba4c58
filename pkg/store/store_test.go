package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// localBackends returns the backends that need no external service.
func localBackends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range localBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			data := []byte(`<mxfile name="doc"></mxfile>`)
			if err := st.Put(ctx, "doc", data); err != nil {
				t.Fatalf("Put: %v", err)
			}
			rec, err := st.Get(ctx, "doc")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if rec.Name != "doc" || !bytes.Equal(rec.Data, data) {
				t.Errorf("record = %+v", rec)
			}
			if rec.Modified.IsZero() {
				t.Error("modified time not set")
			}

			// Overwrite replaces the payload.
			if err := st.Put(ctx, "doc", []byte("v2")); err != nil {
				t.Fatalf("Put v2: %v", err)
			}
			rec, err = st.Get(ctx, "doc")
			if err != nil {
				t.Fatalf("Get v2: %v", err)
			}
			if string(rec.Data) != "v2" {
				t.Errorf("data = %q, want v2", rec.Data)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	for name, st := range localBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()
			if _, err := st.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	for name, st := range localBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			if err := st.Put(ctx, "doc", []byte("x")); err != nil {
				t.Fatal(err)
			}
			if err := st.Delete(ctx, "doc"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := st.Get(ctx, "doc"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete = %v, want ErrNotFound", err)
			}
			if err := st.Delete(ctx, "doc"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestListSorted(t *testing.T) {
	ctx := context.Background()
	for name, st := range localBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()

			for _, doc := range []string{"zeta", "alpha", "mid"} {
				if err := st.Put(ctx, doc, []byte(doc)); err != nil {
					t.Fatal(err)
				}
			}
			names, err := st.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{"alpha", "mid", "zeta"}
			if len(names) != len(want) {
				t.Fatalf("names = %v, want %v", names, want)
			}
			for i := range want {
				if names[i] != want[i] {
					t.Fatalf("names = %v, want %v", names, want)
				}
			}
		})
	}
}

func TestInvalidNames(t *testing.T) {
	ctx := context.Background()
	for name, st := range localBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer st.Close()
			if err := st.Put(ctx, "", []byte("x")); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Put empty name = %v, want ErrInvalidName", err)
			}
		})
	}
}

func TestFileStoreRejectsPathNames(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{"../escape", "a/b", ".hidden"} {
		if err := fs.Put(ctx, bad, []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) = %v, want ErrInvalidName", bad, err)
		}
	}
}
