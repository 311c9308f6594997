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

// Package tools renders form schemas as static documentation.
package tools

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/formloom/formloom/form"

	md "github.com/russross/blackfriday/v2"
)

// RenderFormHTML writes an HTML fragment describing the schema: its
// Doc (Markdown) and a table of fields with their rules and
// derivations.
func RenderFormHTML(s *form.FormSchema, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if s.Doc != "" {
		f(`<div class="formDoc doc">%s</div>`, md.Run([]byte(s.Doc)))
	}

	f(`<div class="fields"><table>`)
	for i := range s.Fields {
		fd := &s.Fields[i]

		f(`<tr class="field"><td><span id="%s" class="fieldLabel">%s</span></td><td>`,
			html.EscapeString(fd.Id), html.EscapeString(fd.Label))

		f(`<div class="fieldType">%s</div>`, fd.Type)
		if fd.Required {
			f(`<div class="fieldRequired">required</div>`)
		}
		if fd.Placeholder != "" {
			f(`<div class="fieldPlaceholder">%s</div>`, html.EscapeString(fd.Placeholder))
		}
		if 0 < len(fd.Options) {
			f(`<div class="fieldOptions">%s</div>`,
				html.EscapeString(strings.Join(fd.Options, ", ")))
		}

		if 0 < len(fd.Validations) {
			f(`<div class="rules"><table>`)
			for _, r := range fd.Validations {
				f(`<tr><td><code>%s</code></td><td>%s</td><td>%s</td></tr>`,
					r.Kind,
					html.EscapeString(r.Parameter),
					html.EscapeString(r.Message))
			}
			f(`</table></div>`)
		}

		if fd.IsDerived {
			f(`<div class="derivation">`)
			f(`<div class="parents">`)
			for _, pid := range fd.ParentFieldIds {
				label := pid
				if parent := s.FieldById(pid); parent != nil {
					label = parent.Label
				}
				f(`<a href="#%s"><code>%s</code></a>`,
					html.EscapeString(pid), html.EscapeString(label))
			}
			f(`</div>`)
			f(`<div class="code"><pre>%s</pre></div>`,
				html.EscapeString(fd.DerivationExpression))
			f(`</div>`)
		}

		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderFormPage writes a complete HTML page for the schema.
func RenderFormPage(s *form.FormSchema, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/form-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(s.Name))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(s.Name))

	if err := RenderFormHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderFormPage reads a schema file (YAML or JSON) and
// renders it as a page.
func ReadAndRenderFormPage(filename string, cssFiles []string, out io.Writer) error {
	s, err := form.ReadSchemaFile(filename)
	if err != nil {
		return err
	}
	return RenderFormPage(s, out, cssFiles)
}
