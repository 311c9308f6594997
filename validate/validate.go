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

// Package validate checks a candidate value against a field's rules.
//
// Field is a pure function.  It returns the first violated rule's
// message and stops there; callers that want every violation don't
// exist in this system.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/formloom/formloom/form"
)

// RequiredMessage is the message for the required check when the
// field doesn't carry a required-kind rule with its own message.
var RequiredMessage = "This field is required"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field checks the value against the field's rules and returns the
// first violated rule's message, or "" when the value passes.
//
// String values are trimmed before any check.  Rules that don't apply
// to the value's type never trigger: a length rule on a boolean is
// vacuously satisfied.
func Field(f *form.FieldDefinition, value interface{}) string {
	if f.IsDerived {
		// Derivation owns the value.
		return ""
	}

	v := normalize(value)

	if f.Required && isEmpty(v) {
		if r, have := f.Rule(form.Required); have && r.Message != "" {
			return r.Message
		}
		return RequiredMessage
	}

	for _, r := range f.Validations {
		if msg := check(r, v); msg != "" {
			return msg
		}
	}

	return ""
}

func check(r form.ValidationRule, v interface{}) string {
	switch r.Kind {
	case form.NotEmpty:
		if isEmpty(v) {
			return "This field must not be empty"
		}
	case form.MinLength:
		if s, is := v.(string); is && s != "" {
			if n, ok := bound(r.Parameter); ok && utf8.RuneCountInString(s) < n {
				return fmt.Sprintf("Minimum length is %d", n)
			}
		}
	case form.MaxLength:
		if s, is := v.(string); is && s != "" {
			if n, ok := bound(r.Parameter); ok && utf8.RuneCountInString(s) > n {
				return fmt.Sprintf("Maximum length is %d", n)
			}
		}
	case form.Email:
		if s, is := v.(string); is && s != "" && !emailPattern.MatchString(s) {
			return "Please enter a valid email"
		}
	case form.Password:
		if s, is := v.(string); is && s != "" && !strongPassword(s) {
			return "Password must contain at least 8 characters, including uppercase, lowercase, and numbers"
		}
	}
	return ""
}

// bound parses a rule's string-encoded length bound.  A bound that
// doesn't parse is treated as satisfied rather than as an error, so a
// misconfigured rule never produces spurious violations.
func bound(parameter string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(parameter))
	if err != nil {
		return 0, false
	}
	return n, true
}

// strongPassword wants at least 8 characters with at least one digit,
// one lowercase letter, and one uppercase letter.
func strongPassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var digit, lower, upper bool
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return digit && lower && upper
}

// normalize trims string values.  Anything else passes through.
func normalize(value interface{}) interface{} {
	if s, is := value.(string); is {
		return strings.TrimSpace(s)
	}
	return value
}

// isEmpty reports whether the normalized value counts as
// empty/false-like for the required and notEmpty checks: nil, "",
// false, and numeric zero all do.
func isEmpty(v interface{}) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return vv == ""
	case bool:
		return !vv
	case float64:
		return vv == 0
	case float32:
		return vv == 0
	case int:
		return vv == 0
	case int64:
		return vv == 0
	}
	return false
}
