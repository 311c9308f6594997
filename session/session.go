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

// Package session runs one in-progress submission of a saved form:
// current values, touched flags, and errors.
//
// <schema> → <values,touched> → <accepted | errors>
//
// Each change event runs to completion before the next: set the
// value, recompute derived fields, validate.  Nothing here is safe
// for concurrent use; a Session belongs to one preview.
package session

import (
	"context"
	"log"

	"github.com/formloom/formloom/derive"
	"github.com/formloom/formloom/form"
	"github.com/formloom/formloom/validate"
)

// State is where the session is in its lifecycle.
type State int

const (
	Initializing State = iota
	Ready
	Submitting
	Accepted
	ReadyWithErrors
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Accepted:
		return "accepted"
	case ReadyWithErrors:
		return "ready-with-errors"
	}
	return "unknown"
}

// Session is one live run of a form.
type Session struct {
	Schema *form.FormSchema

	// Values maps field ids to current values.
	Values derive.Values

	// Touched marks the fields the user has interacted with.
	Touched map[string]bool

	// Errors maps field ids to their current first-violation
	// message.  A valid field is absent.
	Errors map[string]string

	// Evaluator recomputes derived fields.  Defaults to a fresh
	// one with the default execution bound.
	Evaluator *derive.Evaluator

	// Logf is where contained derivation failures go.  Defaults
	// to log.Printf.
	Logf func(format string, args ...interface{})

	state State
}

// New seeds a Session from the schema's defaults and leaves it Ready.
//
// Seeding: the field's default value if it has one, false for
// Checkbox fields, "" otherwise.
func New(schema *form.FormSchema) *Session {
	s := &Session{
		Schema:    schema,
		Evaluator: derive.NewEvaluator(),
	}
	s.Evaluator.Logf = s.logf
	s.reset()
	return s
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// State reports where the session is.
func (s *Session) State() State {
	return s.state
}

// reset seeds fresh values and clears touched flags and errors.
func (s *Session) reset() {
	s.state = Initializing

	s.Values = derive.NewValues()
	s.Touched = make(map[string]bool, len(s.Schema.Fields))
	s.Errors = make(map[string]string, 4)

	for i := range s.Schema.Fields {
		f := &s.Schema.Fields[i]
		switch {
		case f.DefaultValue != nil && f.DefaultValue != "":
			s.Values[f.Id] = f.DefaultValue
		case f.Type == form.Checkbox:
			s.Values[f.Id] = false
		default:
			s.Values[f.Id] = ""
		}
	}

	s.state = Ready
}

// OnChange records a new value for the field, recomputes derived
// fields over the full value set, marks the field touched, and
// refreshes the field's error.  The session stays Ready.
//
// A fieldId that isn't in the schema is a no-op.
func (s *Session) OnChange(ctx context.Context, fieldId string, value interface{}) {
	f := s.Schema.FieldById(fieldId)
	if f == nil {
		return
	}
	if s.state != Ready && s.state != ReadyWithErrors {
		return
	}

	s.Values[fieldId] = value

	// The evaluator logs any contained failures through our logf;
	// a bad formula never surfaces as a field error.
	updated, _ := s.Evaluator.Recompute(ctx, s.Schema, s.Values)
	s.Values = updated

	s.Touched[fieldId] = true

	if msg := validate.Field(f, s.Values[fieldId]); msg != "" {
		s.Errors[fieldId] = msg
	} else {
		delete(s.Errors, fieldId)
	}
}

// OnSubmit validates every field, touched or not, against its current
// value.
//
// With any violation the session lands in ReadyWithErrors: messages
// surfaced, values retained, session continues.  With none it's
// Accepted and the session restarts fresh, reseeded from defaults.
func (s *Session) OnSubmit(ctx context.Context) (accepted bool, errors map[string]string) {
	s.state = Submitting

	found := make(map[string]string, 4)
	for i := range s.Schema.Fields {
		f := &s.Schema.Fields[i]
		s.Touched[f.Id] = true
		if msg := validate.Field(f, s.Values[f.Id]); msg != "" {
			found[f.Id] = msg
		}
	}

	if 0 < len(found) {
		s.Errors = found
		s.state = ReadyWithErrors

		errors = make(map[string]string, len(found))
		for id, msg := range found {
			errors[id] = msg
		}
		return false, errors
	}

	s.state = Accepted
	s.reset()
	return true, nil
}
