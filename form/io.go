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

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"strings"

	"github.com/jsccast/yaml"
)

// ParseSchema reads a FormSchema from YAML (or JSON, which is YAML
// enough for our parser).
func ParseSchema(bs []byte) (*FormSchema, error) {
	var s FormSchema
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	if s.Name == "" {
		return nil, errors.New("schema has no name")
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Id == "" {
			f.Id = Gensym(32)
		}
		if !KnownType(f.Type) {
			return nil, errors.New(`unknown field type "` + string(f.Type) + `"`)
		}
		if f.Label == "" {
			f.Label = DefaultLabel(f.Type)
		}
	}
	if s.Id == "" {
		s.Id = Gensym(32)
	}
	if s.CreatedAt == "" {
		s.CreatedAt = Timestamp()
	}
	return &s, nil
}

// ReadSchemaFile reads one FormSchema from a YAML or JSON file.
func ReadSchemaFile(filename string) (*FormSchema, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSchema(bs)
}

// ReadSchemaDir gathers up FormSchemas from the YAML files in the
// given directory, in filename order.
func ReadSchemaDir(dir string) ([]*FormSchema, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	acc := make([]*FormSchema, 0, len(files))
	for _, fi := range files {
		name := fi.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		s, err := ReadSchemaFile(dir + "/" + name)
		if err != nil {
			return nil, errors.New(name + ": " + err.Error())
		}
		acc = append(acc, s)
	}

	return acc, nil
}

// WriteSchemaFile writes the schema as JSON.
func WriteSchemaFile(s *FormSchema, filename string) error {
	js, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filename, js, 0644)
}
