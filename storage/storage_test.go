package storage

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/formloom/formloom/form"

	"github.com/google/go-cmp/cmp"
)

func TestImpl(t *testing.T) {
	// Just confirm that these compile as Stores.
	var _ Store = &BoltStore{}
	var _ Store = &FileStore{}
	var _ Store = &MemStore{}
}

func sampleForms() []*form.FormSchema {
	return []*form.FormSchema{
		{
			Id:        "one",
			Name:      "contact",
			CreatedAt: form.Timestamp(),
			Fields: []form.FieldDefinition{
				{Id: "a", Type: form.Text, Label: "Name", Required: true},
				{Id: "b", Type: form.Text, Label: "Email",
					Validations: []form.ValidationRule{{Kind: form.Email, Message: "Please enter a valid email address."}}},
			},
		},
		{
			Id:        "two",
			Name:      "order",
			CreatedAt: form.Timestamp(),
			Fields: []form.FieldDefinition{
				{Id: "p", Type: form.Number, Label: "Price"},
				{Id: "q", Type: form.Number, Label: "Qty"},
				{Id: "t", Type: form.Text, Label: "Total",
					IsDerived:            true,
					ParentFieldIds:       []string{"p", "q"},
					DerivationExpression: `Number(parents["Price"]) * Number(parents["Qty"])`},
			},
		},
	}
}

func TestBoltRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "forms.db")

	s, err := NewBoltStore(filename)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
	}()

	// Empty store degrades to an empty collection.
	if got := s.LoadAll(ctx); len(got) != 0 {
		t.Fatalf("surprised by %d forms", len(got))
	}

	want := sampleForms()
	if err := s.SaveAll(ctx, want); err != nil {
		t.Fatal(err)
	}

	got := s.LoadAll(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}

	// Field order survives, which matters: it's the display order.
	if got[1].Fields[2].Label != "Total" {
		t.Fatalf("surprised by %q", got[1].Fields[2].Label)
	}
}

func TestFileRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "forms.json")

	s := NewFileStore(filename)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if got := s.LoadAll(ctx); len(got) != 0 {
		t.Fatalf("surprised by %d forms", len(got))
	}

	want := sampleForms()
	if err := s.SaveAll(ctx, want); err != nil {
		t.Fatal(err)
	}

	got := s.LoadAll(ctx)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestFileDegradesToEmpty(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "garbage.json")
	if err := ioutil.WriteFile(filename, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(filename)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if got := s.LoadAll(ctx); len(got) != 0 {
		t.Fatalf("an unreadable store should degrade to empty, got %d", len(got))
	}
}

func TestFileSaveFailureSurfaces(t *testing.T) {
	// A directory that doesn't exist: the write must fail, and the
	// failure must come back as an IOError for the caller.
	filename := filepath.Join(t.TempDir(), "nope", "forms.json")

	s := NewFileStore(filename)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := s.SaveAll(ctx, sampleForms())
	if err == nil {
		t.Fatal("wanted a complaint")
	}
	if _, is := err.(*IOError); !is {
		t.Fatalf("%#v isn't an IOError", err)
	}
	if _, statErr := os.Stat(filename); statErr == nil {
		t.Fatal("wrote something anyway?")
	}
}

func TestMemStoreCopies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemStore()
	want := sampleForms()
	if err := s.SaveAll(ctx, want); err != nil {
		t.Fatal(err)
	}

	// Mutating what we loaded must not corrupt the store.
	got := s.LoadAll(ctx)
	got[0].Name = "mangled"

	again := s.LoadAll(ctx)
	if again[0].Name != "contact" {
		t.Fatalf("surprised by %q", again[0].Name)
	}
}
