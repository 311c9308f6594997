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

package form

// FieldType is the kind of input a field presents.
type FieldType string

const (
	Text     FieldType = "Text"
	Number   FieldType = "Number"
	Textarea FieldType = "Textarea"
	Select   FieldType = "Select"
	Radio    FieldType = "Radio"
	Checkbox FieldType = "Checkbox"
	Date     FieldType = "Date"
)

// FieldTypes lists every FieldType in display order.
var FieldTypes = []FieldType{Text, Number, Textarea, Select, Radio, Checkbox, Date}

// KnownType reports whether t is one of the FieldTypes.
func KnownType(t FieldType) bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DefaultLabel gives the label a freshly created field of the given
// type gets before anybody renames it.
func DefaultLabel(t FieldType) string {
	return string(t) + " Field"
}

// RuleKind is the category of a validation rule, which determines
// which check the rule performs.
type RuleKind string

const (
	NotEmpty  RuleKind = "notEmpty"
	MinLength RuleKind = "minLength"
	MaxLength RuleKind = "maxLength"
	Email     RuleKind = "email"
	Password  RuleKind = "password"

	// Required is not a configurable rule.  A rule of this kind
	// only carries a custom message for the required check, which
	// is otherwise driven by FieldDefinition.Required.
	Required RuleKind = "required"
)

// RuleKinds lists the configurable rule kinds in display order.
//
// Required is deliberately absent.  See that constant.
var RuleKinds = []RuleKind{NotEmpty, MinLength, MaxLength, Email, Password}

// DefaultMessage gives the display message a rule of the given kind
// carries when nobody supplies one.
func DefaultMessage(kind RuleKind) string {
	switch kind {
	case MinLength:
		return "Input is too short"
	case MaxLength:
		return "Input is too long"
	case Email:
		return "Please enter a valid email address."
	case Password:
		return "Please meet the password requirements"
	default:
		return "Invalid input"
	}
}

// ValidationRule is one check attached to a field.
//
// A field carries at most one rule per Kind.
type ValidationRule struct {
	Kind RuleKind `json:"type" yaml:"type"`

	// Parameter is a string-encoded bound.  Only MinLength and
	// MaxLength use it.
	Parameter string `json:"value,omitempty" yaml:"value,omitempty"`

	// Message is display text.  Defaulted by Kind if not
	// supplied; see DefaultMessage.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// FieldDefinition describes one field of a form.
type FieldDefinition struct {
	// Id is unique within a FormSchema and stable once created.
	Id string `json:"id" yaml:"id"`

	Type  FieldType `json:"type" yaml:"type"`
	Label string    `json:"label" yaml:"label"`

	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// DefaultValue seeds the field's value when a session starts.
	// Should be compatible with Type.
	DefaultValue interface{} `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`

	// Placeholder is an optional display hint.  No validation
	// semantics.
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	// Options is the ordered set of selectable values.  Only
	// Select and Radio fields use it.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Validations is ordered and unique by Kind.
	Validations []ValidationRule `json:"validations,omitempty" yaml:"validations,omitempty"`

	// IsDerived marks a field whose value is computed rather than
	// entered.  A derived field's Required and Validations are
	// ignored: derivation owns the value.
	IsDerived bool `json:"isDerived,omitempty" yaml:"isDerived,omitempty"`

	// ParentFieldIds names the fields this field's expression
	// reads.  Only meaningful when IsDerived.  A parent id that
	// no longer resolves is tolerated; the expression just sees
	// nothing under that parent's label.
	ParentFieldIds []string `json:"parentFields,omitempty" yaml:"parentFields,omitempty"`

	// DerivationExpression is a user-authored formula over the
	// parent values.  Only meaningful when IsDerived.
	DerivationExpression string `json:"derivationLogic,omitempty" yaml:"derivationLogic,omitempty"`
}

// Rule returns the field's rule of the given kind, if any.
func (f *FieldDefinition) Rule(kind RuleKind) (ValidationRule, bool) {
	for _, r := range f.Validations {
		if r.Kind == kind {
			return r, true
		}
	}
	return ValidationRule{}, false
}

// Copy makes a deep copy of the field.
func (f *FieldDefinition) Copy() *FieldDefinition {
	g := *f
	if f.Options != nil {
		g.Options = append([]string{}, f.Options...)
	}
	if f.Validations != nil {
		g.Validations = append([]ValidationRule{}, f.Validations...)
	}
	if f.ParentFieldIds != nil {
		g.ParentFieldIds = append([]string{}, f.ParentFieldIds...)
	}
	return &g
}

// FormSchema is a complete form: an ordered sequence of fields plus
// identifying data.  Field order is the display order and is
// significant.
type FormSchema struct {
	Id   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Doc is optional Markdown describing the form.  Audience is
	// whoever reads the rendered form page.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// CreatedAt is an RFC3339Nano timestamp.
	CreatedAt string `json:"createdAt" yaml:"createdAt"`

	Fields []FieldDefinition `json:"fields" yaml:"fields"`
}

// FieldById finds the field with the given id, or nil.
func (s *FormSchema) FieldById(id string) *FieldDefinition {
	for i := range s.Fields {
		if s.Fields[i].Id == id {
			return &s.Fields[i]
		}
	}
	return nil
}

// Copy makes a deep copy of the schema.
func (s *FormSchema) Copy() *FormSchema {
	c := *s
	c.Fields = make([]FieldDefinition, 0, len(s.Fields))
	for i := range s.Fields {
		c.Fields = append(c.Fields, *s.Fields[i].Copy())
	}
	return &c
}
