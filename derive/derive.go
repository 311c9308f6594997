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

// Package derive recomputes the values of derived fields.
//
// A derived field's expression is user-authored text, so it runs in a
// Goja runtime that gets exactly one input: the mapping from parent
// labels to parent values.  No filesystem, no network, no ambient
// state, and a hard execution bound via Runtime.Interrupt.
package derive

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/formloom/formloom/form"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is the cause reported when an expression runs
	// past the evaluator's Timeout.
	Interrupted = errors.New(InterruptedMessage)

	// DefaultTimeout bounds the execution of a single expression.
	// A formula that loops must not hang the event loop.
	DefaultTimeout = 250 * time.Millisecond
)

// Evaluator computes derived field values with Goja.
//
// An Evaluator belongs to one session and is not safe for concurrent
// use.
type Evaluator struct {
	// Timeout is the execution bound for one expression.
	Timeout time.Duration

	// Logf is the observability channel for contained failures.
	// Defaults to log.Printf.
	Logf func(format string, args ...interface{})

	// programs caches compiled expressions by their source text.
	programs map[string]*goja.Program
}

// NewEvaluator makes an Evaluator with the default execution bound.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		Timeout:  DefaultTimeout,
		programs: make(map[string]*goja.Program, 8),
	}
}

func (e *Evaluator) logf(format string, args ...interface{}) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func wrapSrc(expr string) string {
	return fmt.Sprintf("(function () {\nreturn (%s\n);\n}());\n", expr)
}

// compile compiles the expression, consulting and feeding the cache.
func (e *Evaluator) compile(expr string) (*goja.Program, error) {
	if p, have := e.programs[expr]; have {
		return p, nil
	}
	p, err := goja.Compile("", wrapSrc(expr), true)
	if err != nil {
		return nil, err
	}
	if e.programs == nil {
		e.programs = make(map[string]*goja.Program, 8)
	}
	e.programs[expr] = p
	return p, nil
}

// eval runs one compiled expression against the parents mapping.
func (e *Evaluator) eval(ctx context.Context, p *goja.Program, parents map[string]interface{}) (interface{}, error) {
	o := goja.New()
	o.Set("parents", parents)

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithTimeout(ctx, timeout)
	go func() {
		<-ictx.Done()
		// If eval calls cancel() after RunProgram returns,
		// we'll never see this InterruptedMessage, which is
		// the behavior we want.  In that case, we weren't
		// actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	return v.Export(), nil
}

// Recompute evaluates every derived field of the schema against the
// given values and returns the updated mapping.
//
// Derived fields are evaluated in dependency order, parents before
// dependents, so derived-from-derived chains resolve in one pass.
// Fields on a dependency cycle are not evaluated; they fail with a
// CycleError and keep their prior values.  Any single field's failure
// is contained: the error is logged and reported in the returned map,
// the field keeps its prior value, and the pass continues.
//
// When no derived value actually differs, Recompute returns the
// original Values (same reference), so callers can cheaply skip
// downstream work.
func (e *Evaluator) Recompute(ctx context.Context, s *form.FormSchema, values Values) (Values, map[string]error) {
	ordered, cyclic := orderDerived(s)
	if len(ordered) == 0 && len(cyclic) == 0 {
		return values, nil
	}

	var (
		problems   map[string]error
		working    = values
		hasChanges = false
	)

	report := func(id string, err error) {
		if problems == nil {
			problems = make(map[string]error, 4)
		}
		problems[id] = err
		e.logf("derive error: %s", err)
	}

	for _, id := range cyclic {
		report(id, &CycleError{FieldId: id})
	}

	for _, id := range ordered {
		f := s.FieldById(id)

		parents := make(map[string]interface{}, len(f.ParentFieldIds))
		for _, pid := range f.ParentFieldIds {
			parent := s.FieldById(pid)
			if parent == nil {
				// Dangling reference: the expression
				// just sees nothing under that label.
				continue
			}
			if v, have := working[pid]; have {
				parents[parent.Label] = v
			}
		}

		p, err := e.compile(f.DerivationExpression)
		if err != nil {
			report(id, &DerivationError{FieldId: id, Err: err})
			continue
		}

		v, err := e.eval(ctx, p, parents)
		if err != nil {
			report(id, &DerivationError{FieldId: id, Err: err})
			continue
		}

		old, had := working[id]
		if had && reflect.DeepEqual(old, v) {
			continue
		}
		if !had && v == nil {
			continue
		}

		if !hasChanges {
			working = values.Copy()
			hasChanges = true
		}
		working[id] = v
	}

	if !hasChanges {
		return values, problems
	}
	return working, problems
}

// orderDerived topologically sorts the schema's derived fields by
// their parent edges.  Only edges between derived fields matter;
// plain fields are always "already computed".  Returns the ids to
// evaluate, in order, and the ids stuck on a cycle.
func orderDerived(s *form.FormSchema) (ordered, cyclic []string) {
	derived := make(map[string]*form.FieldDefinition, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.IsDerived && len(f.ParentFieldIds) > 0 && f.DerivationExpression != "" {
			derived[f.Id] = f
		}
	}
	if len(derived) == 0 {
		return nil, nil
	}

	// Kahn's algorithm over the derived-to-derived edges, visiting
	// ready fields in schema order to keep evaluation deterministic.
	indegree := make(map[string]int, len(derived))
	dependents := make(map[string][]string, len(derived))
	for id, f := range derived {
		for _, pid := range f.ParentFieldIds {
			if pid == id {
				indegree[id]++
				continue
			}
			if _, is := derived[pid]; is {
				indegree[id]++
				dependents[pid] = append(dependents[pid], id)
			}
		}
	}

	done := make(map[string]bool, len(derived))
	for len(done) < len(derived) {
		progressed := false
		for i := range s.Fields {
			id := s.Fields[i].Id
			if _, is := derived[id]; !is || done[id] || 0 < indegree[id] {
				continue
			}
			ordered = append(ordered, id)
			done[id] = true
			progressed = true
			for _, dep := range dependents[id] {
				indegree[dep]--
			}
		}
		if !progressed {
			break
		}
	}

	for i := range s.Fields {
		id := s.Fields[i].Id
		if _, is := derived[id]; is && !done[id] {
			cyclic = append(cyclic, id)
		}
	}

	return ordered, cyclic
}
