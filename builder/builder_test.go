package builder

import (
	"context"
	"testing"

	"github.com/formloom/formloom/form"
	"github.com/formloom/formloom/storage"

	"github.com/google/go-cmp/cmp"
)

func TestAddField(t *testing.T) {
	b := NewBuilder()

	f := b.AddField(form.Number)

	if f.Id == "" {
		t.Fatal("no id")
	}
	if f.Label != "Number Field" {
		t.Fatalf("surprised by %q", f.Label)
	}
	if f.Required || f.IsDerived {
		t.Fatal("fresh fields start plain")
	}
	if len(f.Validations) != 0 {
		t.Fatalf("surprised by %#v", f.Validations)
	}
	if b.Selected != f.Id {
		t.Fatal("a new field should be selected")
	}

	g := b.AddField(form.Text)
	if g.Id == f.Id {
		t.Fatal("ids should be unique")
	}
	if b.Selected != g.Id {
		t.Fatal("selection should follow the newest field")
	}
}

func TestUpdateField(t *testing.T) {
	b := NewBuilder()
	f := b.AddField(form.Text)

	label := "Price"
	required := true
	b.UpdateField(f.Id, FieldPatch{Label: &label, Required: &required})

	got := b.SelectedField()
	if got.Label != "Price" || !got.Required {
		t.Fatalf("surprised by %#v", got)
	}

	// Absent id: a no-op, not an error.
	b.UpdateField("nope", FieldPatch{Label: &label})
	if len(b.Fields) != 1 {
		t.Fatalf("surprised by %d fields", len(b.Fields))
	}
}

func TestClearingDerivedRetainsConfig(t *testing.T) {
	b := NewBuilder()
	f := b.AddField(form.Text)

	on := true
	parents := []string{"p1", "p2"}
	expr := `parents["A"] + parents["B"]`
	b.UpdateField(f.Id, FieldPatch{
		IsDerived:            &on,
		ParentFieldIds:       &parents,
		DerivationExpression: &expr,
	})

	off := false
	b.UpdateField(f.Id, FieldPatch{IsDerived: &off})

	got := b.SelectedField()
	if got.IsDerived {
		t.Fatal("still derived")
	}
	// Re-enabling shouldn't lose the prior configuration.
	if diff := cmp.Diff(parents, got.ParentFieldIds); diff != "" {
		t.Fatal(diff)
	}
	if got.DerivationExpression != expr {
		t.Fatalf("surprised by %q", got.DerivationExpression)
	}
}

func TestRemoveField(t *testing.T) {
	b := NewBuilder()
	f := b.AddField(form.Text)
	g := b.AddField(form.Text)

	// g is selected; removing f leaves the selection alone.
	b.RemoveField(f.Id)
	if b.Selected != g.Id {
		t.Fatal("selection shouldn't move")
	}

	b.RemoveField(g.Id)
	if b.Selected != "" {
		t.Fatal("selection should clear")
	}
	if len(b.Fields) != 0 {
		t.Fatalf("surprised by %d fields", len(b.Fields))
	}
}

func TestRemoveFieldNoCascade(t *testing.T) {
	b := NewBuilder()
	parent := b.AddField(form.Text)
	child := b.AddField(form.Text)

	on := true
	parents := []string{parent.Id}
	expr := `parents["Text Field"]`
	b.UpdateField(child.Id, FieldPatch{
		IsDerived:            &on,
		ParentFieldIds:       &parents,
		DerivationExpression: &expr,
	})

	b.RemoveField(parent.Id)

	// The dangling reference is tolerated, not cleaned.
	got := b.fieldById(child.Id)
	if len(got.ParentFieldIds) != 1 || got.ParentFieldIds[0] != parent.Id {
		t.Fatalf("surprised by %#v", got.ParentFieldIds)
	}
}

func TestMoveField(t *testing.T) {
	b := NewBuilder()
	f := b.AddField(form.Text)
	g := b.AddField(form.Number)
	h := b.AddField(form.Date)

	order := func() []string {
		acc := make([]string, 0, len(b.Fields))
		for i := range b.Fields {
			acc = append(acc, b.Fields[i].Id)
		}
		return acc
	}

	// Boundary no-ops.
	b.MoveField(f.Id, Up)
	if diff := cmp.Diff([]string{f.Id, g.Id, h.Id}, order()); diff != "" {
		t.Fatal(diff)
	}
	b.MoveField(h.Id, Down)
	if diff := cmp.Diff([]string{f.Id, g.Id, h.Id}, order()); diff != "" {
		t.Fatal(diff)
	}

	b.MoveField(g.Id, Up)
	if diff := cmp.Diff([]string{g.Id, f.Id, h.Id}, order()); diff != "" {
		t.Fatal(diff)
	}
	b.MoveField(g.Id, Down)
	b.MoveField(g.Id, Down)
	if diff := cmp.Diff([]string{f.Id, h.Id, g.Id}, order()); diff != "" {
		t.Fatal(diff)
	}
}

func TestToggleValidation(t *testing.T) {
	b := NewBuilder()
	b.AddField(form.Text)

	b.ToggleValidation(form.MinLength, true)
	b.ToggleValidation(form.Email, true)

	f := b.SelectedField()
	if len(f.Validations) != 2 {
		t.Fatalf("surprised by %#v", f.Validations)
	}
	if f.Validations[0].Kind != form.MinLength {
		t.Fatal("rules should keep their added order")
	}
	if f.Validations[0].Message != form.DefaultMessage(form.MinLength) {
		t.Fatalf("surprised by %q", f.Validations[0].Message)
	}

	// A kind appears at most once.
	b.ToggleValidation(form.Email, true)
	if len(b.SelectedField().Validations) != 2 {
		t.Fatal("duplicated a rule kind")
	}

	b.SetValidationParam(form.MinLength, "5")
	if r, _ := b.SelectedField().Rule(form.MinLength); r.Parameter != "5" {
		t.Fatalf("surprised by %q", r.Parameter)
	}

	b.ToggleValidation(form.MinLength, false)
	f = b.SelectedField()
	if len(f.Validations) != 1 || f.Validations[0].Kind != form.Email {
		t.Fatalf("surprised by %#v", f.Validations)
	}
}

func TestOpenValidationInput(t *testing.T) {
	b := NewBuilder()

	if b.ValidationInputOpen(form.MinLength) {
		t.Fatal("starts closed")
	}
	b.OpenValidationInput(form.MinLength)
	if !b.ValidationInputOpen(form.MinLength) {
		t.Fatal("didn't open")
	}
	b.OpenValidationInput(form.MinLength)
	if b.ValidationInputOpen(form.MinLength) {
		t.Fatal("didn't close")
	}
}

func TestSavePreconditions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.NewMemStore()
	b := NewBuilder()
	b.AddField(form.Text)

	if _, err := b.Save(ctx, store, "   "); err == nil {
		t.Fatal("blank name should fail")
	} else if _, is := err.(*ValidationError); !is {
		t.Fatalf("%#v isn't a ValidationError", err)
	}

	empty := NewBuilder()
	if _, err := empty.Save(ctx, store, "fine name"); err == nil {
		t.Fatal("empty field list should fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.NewMemStore()

	b := NewBuilder()
	b.AddField(form.Text)
	b.AddField(form.Number)
	b.ToggleValidation(form.MaxLength, true)
	b.SetValidationParam(form.MaxLength, "10")

	saved, err := b.Save(ctx, store, "order form")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Id == "" || saved.CreatedAt == "" {
		t.Fatalf("surprised by %#v", saved)
	}

	loaded := store.LoadAll(ctx)
	if len(loaded) != 1 {
		t.Fatalf("surprised by %d forms", len(loaded))
	}
	if diff := cmp.Diff(saved, loaded[0]); diff != "" {
		t.Fatal(diff)
	}

	// Saving again updates in place: same id, still one form.
	label := "Quantity"
	b.UpdateField(b.Fields[1].Id, FieldPatch{Label: &label})
	again, err := b.Save(ctx, store, "order form")
	if err != nil {
		t.Fatal(err)
	}
	if again.Id != saved.Id {
		t.Fatal("id should be stable across updates")
	}
	if loaded = store.LoadAll(ctx); len(loaded) != 1 {
		t.Fatalf("surprised by %d forms", len(loaded))
	}
	if loaded[0].Fields[1].Label != "Quantity" {
		t.Fatalf("surprised by %q", loaded[0].Fields[1].Label)
	}
}

func TestEdit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.NewMemStore()

	b := NewBuilder()
	b.AddField(form.Text)
	saved, err := b.Save(ctx, store, "original")
	if err != nil {
		t.Fatal(err)
	}

	e := Edit(saved)
	if e.FormId != saved.Id || e.CreatedAt != saved.CreatedAt {
		t.Fatalf("surprised by %#v", e)
	}

	// Editing works on a copy.
	label := "Changed"
	e.UpdateField(e.Fields[0].Id, FieldPatch{Label: &label})
	if saved.Fields[0].Label == "Changed" {
		t.Fatal("edited the caller's schema")
	}
}
