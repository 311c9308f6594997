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

// Package storage persists the collection of saved forms.
//
// The collection is read and written whole, read-modify-write on each
// mutation.  Single writer, last write wins.  Callers that grow
// multiple writers must serialize saves themselves.
package storage

import (
	"context"

	"github.com/formloom/formloom/form"
)

// Store is the persistence contract.
//
// LoadAll never fails the caller: an empty or unreadable store
// degrades to an empty collection.  SaveAll failures are surfaced so
// the caller can retry or warn.
type Store interface {
	LoadAll(ctx context.Context) []*form.FormSchema
	SaveAll(ctx context.Context, forms []*form.FormSchema) error
}

// IOError occurs when a store write fails.  Recoverable: never crash
// the session over one.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MemStore retains the collection in memory.  Handy for tests and
// for callers that opt out of durability.
type MemStore struct {
	forms []*form.FormSchema
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) LoadAll(ctx context.Context) []*form.FormSchema {
	acc := make([]*form.FormSchema, 0, len(s.forms))
	for _, f := range s.forms {
		acc = append(acc, f.Copy())
	}
	return acc
}

func (s *MemStore) SaveAll(ctx context.Context, forms []*form.FormSchema) error {
	acc := make([]*form.FormSchema, 0, len(forms))
	for _, f := range forms {
		acc = append(acc, f.Copy())
	}
	s.forms = acc
	return nil
}
