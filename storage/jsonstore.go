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

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"os"

	"github.com/formloom/formloom/form"
)

var errNotOpen = errors.New("store not open")

// FileStore is a primitive facility to store the forms collection as
// JSON in a file.
//
// Not glamorous or efficient.
type FileStore struct {
	Filename string
	Debug    bool
}

func NewFileStore(filename string) *FileStore {
	return &FileStore{
		Filename: filename,
	}
}

func (s *FileStore) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("FileStore "+format, args...)
	}
}

// LoadAll reads the file.  A missing or unparsable file degrades to
// an empty collection; the problem is logged, not returned.
func (s *FileStore) LoadAll(ctx context.Context) []*form.FormSchema {
	var forms []*form.FormSchema

	bs, err := ioutil.ReadFile(s.Filename)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logf("LoadAll degrading to empty: %s", err)
		}
		return []*form.FormSchema{}
	}
	if err = json.Unmarshal(bs, &forms); err != nil {
		s.logf("LoadAll degrading to empty: %s", err)
		return []*form.FormSchema{}
	}
	if forms == nil {
		forms = []*form.FormSchema{}
	}

	s.logf("LoadAll found %d forms", len(forms))

	return forms
}

// SaveAll writes the whole collection as JSON.
func (s *FileStore) SaveAll(ctx context.Context, forms []*form.FormSchema) error {
	if s.Filename == "" {
		return &IOError{Op: "save", Err: errNotOpen}
	}

	js, err := json.MarshalIndent(forms, "", "  ")
	if err != nil {
		return &IOError{Op: "save", Err: err}
	}

	s.logf("SaveAll writing %d forms (%d bytes)", len(forms), len(js))

	if err = ioutil.WriteFile(s.Filename, js, 0644); err != nil {
		return &IOError{Op: "save", Err: err}
	}
	return nil
}
