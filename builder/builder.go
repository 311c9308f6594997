/* Copyright 2025 Formloom Authors
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package builder is the in-memory mutation API the form editor
// drives: an ordered field list, a single selection, and a Save that
// snapshots the whole thing into an immutable FormSchema.
package builder

import (
	"context"
	"strings"

	"github.com/formloom/formloom/form"
	"github.com/formloom/formloom/storage"
)

// Direction says which neighbor MoveField swaps with.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ValidationError occurs when user input violates a save
// precondition.  Recoverable: surface the Reason inline and carry on.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Builder holds one form being edited.
//
// A Builder belongs to one editing session and is not safe for
// concurrent use.
type Builder struct {
	// FormId is empty while creating a new form and stable while
	// editing an existing one.
	FormId string

	// CreatedAt is retained from the loaded schema when editing.
	CreatedAt string

	// Doc is the form's optional Markdown description.
	Doc string

	// Fields in display order.
	Fields []form.FieldDefinition

	// Selected is the id of the field being configured, or "".
	// Not part of the persisted schema.
	Selected string

	// open tracks which rule-parameter editors are open.
	// Transient display state, like Selected.
	open map[form.RuleKind]bool
}

// NewBuilder starts an empty editing session.
func NewBuilder() *Builder {
	return &Builder{
		Fields: make([]form.FieldDefinition, 0, 8),
		open:   make(map[form.RuleKind]bool, 4),
	}
}

// Edit starts an editing session over an existing schema.  The
// schema's fields are copied; the caller's schema is not touched.
func Edit(s *form.FormSchema) *Builder {
	b := NewBuilder()
	b.FormId = s.Id
	b.CreatedAt = s.CreatedAt
	b.Doc = s.Doc
	for i := range s.Fields {
		b.Fields = append(b.Fields, *s.Fields[i].Copy())
	}
	return b
}

// AddField appends a new field of the given type with a fresh id and
// a type-derived label, and selects it.  Never fails.
func (b *Builder) AddField(t form.FieldType) *form.FieldDefinition {
	f := form.FieldDefinition{
		Id:          form.Gensym(32),
		Type:        t,
		Label:       form.DefaultLabel(t),
		Validations: []form.ValidationRule{},
	}
	b.Fields = append(b.Fields, f)
	b.Selected = f.Id
	return &b.Fields[len(b.Fields)-1]
}

// FieldPatch is a partial change for UpdateField.  Nil members leave
// the field's member alone.
type FieldPatch struct {
	Type         *form.FieldType
	Label        *string
	Required     *bool
	DefaultValue *interface{}
	Placeholder  *string
	Options      *[]string
	Validations  *[]form.ValidationRule

	// Clearing IsDerived retains ParentFieldIds and
	// DerivationExpression; they're just ignored until it's set
	// again, so toggling doesn't lose prior configuration.
	IsDerived            *bool
	ParentFieldIds       *[]string
	DerivationExpression *string
}

// UpdateField merges the patch into the field with that id.  A no-op,
// not an error, when the id is absent.
func (b *Builder) UpdateField(id string, patch FieldPatch) {
	f := b.fieldById(id)
	if f == nil {
		return
	}
	if patch.Type != nil {
		f.Type = *patch.Type
	}
	if patch.Label != nil {
		f.Label = *patch.Label
	}
	if patch.Required != nil {
		f.Required = *patch.Required
	}
	if patch.DefaultValue != nil {
		f.DefaultValue = *patch.DefaultValue
	}
	if patch.Placeholder != nil {
		f.Placeholder = *patch.Placeholder
	}
	if patch.Options != nil {
		f.Options = *patch.Options
	}
	if patch.Validations != nil {
		f.Validations = *patch.Validations
	}
	if patch.IsDerived != nil {
		f.IsDerived = *patch.IsDerived
	}
	if patch.ParentFieldIds != nil {
		f.ParentFieldIds = *patch.ParentFieldIds
	}
	if patch.DerivationExpression != nil {
		f.DerivationExpression = *patch.DerivationExpression
	}
}

// RemoveField deletes the field and clears the selection if it
// pointed there.
//
// Other fields' ParentFieldIds that referenced the removed field are
// left alone.  The evaluator tolerates dangling references.
func (b *Builder) RemoveField(id string) {
	acc := b.Fields[:0]
	for i := range b.Fields {
		if b.Fields[i].Id != id {
			acc = append(acc, b.Fields[i])
		}
	}
	b.Fields = acc
	if b.Selected == id {
		b.Selected = ""
	}
}

// MoveField swaps the field with its immediate neighbor.  A no-op at
// either boundary.
func (b *Builder) MoveField(id string, dir Direction) {
	i := b.indexOf(id)
	if i < 0 {
		return
	}
	switch dir {
	case Up:
		if 0 < i {
			b.Fields[i], b.Fields[i-1] = b.Fields[i-1], b.Fields[i]
		}
	case Down:
		if i < len(b.Fields)-1 {
			b.Fields[i], b.Fields[i+1] = b.Fields[i+1], b.Fields[i]
		}
	}
}

// Select points the selection at the field with that id.  A no-op
// when the id is absent.
func (b *Builder) Select(id string) {
	if b.fieldById(id) != nil {
		b.Selected = id
	}
}

// SelectedField returns the field being configured, or nil.
func (b *Builder) SelectedField() *form.FieldDefinition {
	if b.Selected == "" {
		return nil
	}
	return b.fieldById(b.Selected)
}

// ToggleValidation adds or removes the selected field's rule of the
// given kind.  An added rule starts with the kind's default message
// and no parameter.  A no-op without a selection.
func (b *Builder) ToggleValidation(kind form.RuleKind, enabled bool) {
	f := b.SelectedField()
	if f == nil {
		return
	}
	if enabled {
		if _, have := f.Rule(kind); have {
			return
		}
		f.Validations = append(f.Validations, form.ValidationRule{
			Kind:    kind,
			Message: form.DefaultMessage(kind),
		})
		return
	}
	acc := f.Validations[:0]
	for _, r := range f.Validations {
		if r.Kind != kind {
			acc = append(acc, r)
		}
	}
	f.Validations = acc
}

// SetValidationParam sets the parameter of the selected field's rule
// of the given kind.  A no-op when there's no selection or no such
// rule.
func (b *Builder) SetValidationParam(kind form.RuleKind, value string) {
	f := b.SelectedField()
	if f == nil {
		return
	}
	for i := range f.Validations {
		if f.Validations[i].Kind == kind {
			f.Validations[i].Parameter = value
		}
	}
}

// OpenValidationInput toggles the parameter editor for the given rule
// kind.  Transient display state only.
func (b *Builder) OpenValidationInput(kind form.RuleKind) {
	if b.open == nil {
		b.open = make(map[form.RuleKind]bool, 4)
	}
	b.open[kind] = !b.open[kind]
}

// ValidationInputOpen reports whether the parameter editor for the
// given rule kind is open.
func (b *Builder) ValidationInputOpen(kind form.RuleKind) bool {
	return b.open[kind]
}

// Save snapshots the builder into an immutable FormSchema and hands
// it to the store, read-modify-write over the whole collection.  A
// new form gets a fresh id; an existing form keeps its id.
//
// Fails with a ValidationError when the name is blank or the field
// list is empty.  A store write failure comes back as the store's
// error, for the caller to retry or report.
func (b *Builder) Save(ctx context.Context, store storage.Store, name string) (*form.FormSchema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Reason: "empty name"}
	}
	if len(b.Fields) == 0 {
		return nil, &ValidationError{Reason: "no fields"}
	}

	s := &form.FormSchema{
		Id:        b.FormId,
		Name:      name,
		Doc:       b.Doc,
		CreatedAt: b.CreatedAt,
		Fields:    make([]form.FieldDefinition, 0, len(b.Fields)),
	}
	if s.Id == "" {
		s.Id = form.Gensym(32)
	}
	if s.CreatedAt == "" {
		s.CreatedAt = form.Timestamp()
	}
	for i := range b.Fields {
		s.Fields = append(s.Fields, *b.Fields[i].Copy())
	}

	forms := store.LoadAll(ctx)
	replaced := false
	for i, existing := range forms {
		if existing.Id == s.Id {
			forms[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		forms = append(forms, s)
	}

	if err := store.SaveAll(ctx, forms); err != nil {
		return nil, err
	}

	b.FormId = s.Id
	b.CreatedAt = s.CreatedAt

	return s, nil
}

func (b *Builder) fieldById(id string) *form.FieldDefinition {
	i := b.indexOf(id)
	if i < 0 {
		return nil
	}
	return &b.Fields[i]
}

func (b *Builder) indexOf(id string) int {
	for i := range b.Fields {
		if b.Fields[i].Id == id {
			return i
		}
	}
	return -1
}
