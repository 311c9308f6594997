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

// Package testutil has schema fixtures and small helpers for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/formloom/formloom/form"
)

// JS renders its argument as JSON or as a string indicating an error.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		log.Printf("warning: testutil.JS error %s for %#v", err, x)
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// TextField makes a Text field with the given id and label.
func TextField(id, label string) form.FieldDefinition {
	return form.FieldDefinition{
		Id:    id,
		Type:  form.Text,
		Label: label,
	}
}

// DerivedField makes a derived field computing the given expression
// over the given parents.
func DerivedField(id, label, expr string, parentIds ...string) form.FieldDefinition {
	return form.FieldDefinition{
		Id:                   id,
		Type:                 form.Text,
		Label:                label,
		IsDerived:            true,
		ParentFieldIds:       parentIds,
		DerivationExpression: expr,
	}
}

// Schema wraps fields in a FormSchema with stable id and name.
func Schema(name string, fields ...form.FieldDefinition) *form.FormSchema {
	return &form.FormSchema{
		Id:        name,
		Name:      name,
		CreatedAt: form.Timestamp(),
		Fields:    fields,
	}
}
