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

package derive

// Values is a map from field ids to their current values.
type Values map[string]interface{}

func NewValues() Values {
	return make(Values, 8)
}

// Extend adds the value; modifies and returns the Values.
//
// The Values are modified.
func (vs Values) Extend(id string, v interface{}) Values {
	vs[id] = v
	return vs
}

// Copy makes a shallow copy of the Values.
func (vs Values) Copy() Values {
	acc := make(Values, len(vs))
	for id, v := range vs {
		acc[id] = v
	}
	return acc
}
