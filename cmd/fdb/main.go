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

// Package main is a command-line form debugger in the spirit of gdb:
// edit a form field by field, preview it, and poke values at it.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/formloom/formloom/builder"
	"github.com/formloom/formloom/form"
	"github.com/formloom/formloom/session"
	"github.com/formloom/formloom/storage"
	"github.com/formloom/formloom/tools"
	"github.com/formloom/formloom/util"
	. "github.com/formloom/formloom/util/testutil"
)

type Opts struct {
	dbFile   string
	jsonFile string
	echo     bool
}

func main() {

	opts := &Opts{}
	flag.StringVar(&opts.dbFile, "d", "forms.db", "bbolt database file")
	flag.StringVar(&opts.jsonFile, "f", "", "JSON file store (instead of bbolt)")
	flag.BoolVar(&opts.echo, "e", false, "echo input")
	flag.Parse()

	if err := opts.run(); err != nil {
		panic(err)
	}
}

func (opts *Opts) run() error {

	in := os.Stdin
	w := os.Stdout

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store storage.Store
	if opts.jsonFile != "" {
		store = storage.NewFileStore(opts.jsonFile)
	} else {
		bs, err := storage.NewBoltStore(opts.dbFile)
		if err != nil {
			return err
		}
		if err = bs.Open(ctx); err != nil {
			return err
		}
		defer bs.Close(ctx)
		store = bs
	}

	var (
		add = regexp.MustCompile(`^add +([a-zA-Z]+)`)

		sel = regexp.MustCompile(`^sel +([-a-zA-Z0-9_]+)`)

		label = regexp.MustCompile(`^label +(.*)`)

		required = regexp.MustCompile(`^required +(on|off)`)

		rule = regexp.MustCompile(`^rule +([a-zA-Z]+) +(on|off)`)

		param = regexp.MustCompile(`^param +([a-zA-Z]+) +(.*)`)

		derived = regexp.MustCompile(`^derive +([-a-zA-Z0-9_,]+) +(.*)`)

		underived = regexp.MustCompile(`^underive`)

		rem = regexp.MustCompile(`^(rem|del|remove|delete) +([-a-zA-Z0-9_]+)`)

		mv = regexp.MustCompile(`^mv +([-a-zA-Z0-9_]+) +(up|down)`)

		save = regexp.MustCompile(`^save +(.*)`)

		load = regexp.MustCompile(`^(edit|load) +([-a-zA-Z0-9_]+)`)

		imp = regexp.MustCompile(`^import +(.*)`)

		render = regexp.MustCompile(`^render +([-a-zA-Z0-9_]+)`)

		forms = regexp.MustCompile(`^forms`)

		print = regexp.MustCompile(`^print`)

		preview = regexp.MustCompile(`^preview( +([-a-zA-Z0-9_]+))?`)

		set = regexp.MustCompile(`^set +([-a-zA-Z0-9_]+) +(.*)`)

		submit = regexp.MustCompile(`^submit`)

		values = regexp.MustCompile(`^values`)

		help = regexp.MustCompile(`^(help|h|\?)`)

		debug = regexp.MustCompile(`^debug(ging)? (on|off)`)

		outputPrefix = "# "

		say = func(format string, args ...interface{}) {
			fmt.Fprintf(w, outputPrefix+format+"\n", args...)
		}

		protest = func(format string, args ...interface{}) {
			say("error: "+format, args...)
		}

		b = builder.NewBuilder()

		sess *session.Session
	)

	fieldByPrefix := func(id string) *form.FieldDefinition {
		for i := range b.Fields {
			if strings.HasPrefix(b.Fields[i].Id, id) || b.Fields[i].Label == id {
				return &b.Fields[i]
			}
		}
		return nil
	}

	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if opts.echo {
			fmt.Fprintf(w, "%s\n", line)
		}

		switch {
		case help.MatchString(line):
			say(`forms                     list saved forms
edit ID                   edit a saved form
add TYPE                  add a field (Text, Number, Textarea, Select, Radio, Checkbox, Date)
sel ID                    select a field (id prefix or label)
label TEXT                relabel the selected field
required on|off           toggle required on the selected field
rule KIND on|off          toggle a validation rule on the selected field
param KIND N              set a rule's bound on the selected field
derive IDS EXPR           mark selected derived from comma-separated parents
underive                  clear the derived flag (config is retained)
rem ID / mv ID up|down    remove or reorder a field
save NAME                 snapshot and persist the form
import FILE               read a schema from a YAML file and persist it
render ID                 write the form as an HTML page
preview [ID]              start a session (current form if no id)
set FIELD VALUE / submit  drive the session
values / print            dump session values / builder fields
debug on|off`)

		case debug.MatchString(line):
			util.Logging = debug.FindStringSubmatch(line)[2] == "on"
			say("debugging %v", util.Logging)

		case forms.MatchString(line):
			all := store.LoadAll(ctx)
			util.Logf("fdb loaded %d forms", len(all))
			for _, s := range all {
				say("%s %s (%d fields)", s.Id, s.Name, len(s.Fields))
			}

		case load.MatchString(line):
			id := load.FindStringSubmatch(line)[2]
			var found *form.FormSchema
			for _, s := range store.LoadAll(ctx) {
				if s.Id == id || strings.HasPrefix(s.Id, id) || s.Name == id {
					found = s
					break
				}
			}
			if found == nil {
				protest(`no form "%s"`, id)
				continue
			}
			b = builder.Edit(found)
			say("editing %s %s", found.Id, found.Name)

		case add.MatchString(line):
			t := form.FieldType(add.FindStringSubmatch(line)[1])
			if !form.KnownType(t) {
				protest(`unknown field type "%s"`, t)
				continue
			}
			f := b.AddField(t)
			say("added %s %s", f.Id, f.Label)

		case sel.MatchString(line):
			f := fieldByPrefix(sel.FindStringSubmatch(line)[1])
			if f == nil {
				protest("no such field")
				continue
			}
			b.Select(f.Id)
			say("selected %s %s", f.Id, f.Label)

		case label.MatchString(line):
			f := b.SelectedField()
			if f == nil {
				protest("nothing selected")
				continue
			}
			text := strings.TrimSpace(label.FindStringSubmatch(line)[1])
			b.UpdateField(f.Id, builder.FieldPatch{Label: &text})

		case required.MatchString(line):
			f := b.SelectedField()
			if f == nil {
				protest("nothing selected")
				continue
			}
			on := required.FindStringSubmatch(line)[1] == "on"
			b.UpdateField(f.Id, builder.FieldPatch{Required: &on})

		case rule.MatchString(line):
			m := rule.FindStringSubmatch(line)
			b.ToggleValidation(form.RuleKind(m[1]), m[2] == "on")

		case param.MatchString(line):
			m := param.FindStringSubmatch(line)
			b.SetValidationParam(form.RuleKind(m[1]), strings.TrimSpace(m[2]))

		case derived.MatchString(line):
			f := b.SelectedField()
			if f == nil {
				protest("nothing selected")
				continue
			}
			m := derived.FindStringSubmatch(line)
			parents := strings.Split(m[1], ",")
			expr := strings.TrimSpace(m[2])
			on := true
			b.UpdateField(f.Id, builder.FieldPatch{
				IsDerived:            &on,
				ParentFieldIds:       &parents,
				DerivationExpression: &expr,
			})

		case underived.MatchString(line):
			f := b.SelectedField()
			if f == nil {
				protest("nothing selected")
				continue
			}
			off := false
			b.UpdateField(f.Id, builder.FieldPatch{IsDerived: &off})

		case rem.MatchString(line):
			f := fieldByPrefix(rem.FindStringSubmatch(line)[2])
			if f == nil {
				protest("no such field")
				continue
			}
			b.RemoveField(f.Id)

		case mv.MatchString(line):
			m := mv.FindStringSubmatch(line)
			f := fieldByPrefix(m[1])
			if f == nil {
				protest("no such field")
				continue
			}
			b.MoveField(f.Id, builder.Direction(m[2]))

		case save.MatchString(line):
			name := strings.TrimSpace(save.FindStringSubmatch(line)[1])
			s, err := b.Save(ctx, store, name)
			if err != nil {
				protest("%s", err)
				continue
			}
			say("saved %s %s", s.Id, s.Name)

		case imp.MatchString(line):
			filename := strings.TrimSpace(imp.FindStringSubmatch(line)[1])
			s, err := form.ReadSchemaFile(filename)
			if err != nil {
				protest("%s", err)
				continue
			}
			all := append(store.LoadAll(ctx), s)
			if err = store.SaveAll(ctx, all); err != nil {
				protest("%s", err)
				continue
			}
			say("imported %s %s", s.Id, s.Name)

		case render.MatchString(line):
			id := render.FindStringSubmatch(line)[1]
			for _, s := range store.LoadAll(ctx) {
				if s.Id == id || strings.HasPrefix(s.Id, id) || s.Name == id {
					if err := tools.RenderFormPage(s, w, nil); err != nil {
						protest("%s", err)
					}
					break
				}
			}

		case print.MatchString(line):
			for i := range b.Fields {
				mark := " "
				if b.Fields[i].Id == b.Selected {
					mark = "*"
				}
				say("%s %s", mark, JS(b.Fields[i]))
			}

		case preview.MatchString(line):
			id := preview.FindStringSubmatch(line)[2]
			var s *form.FormSchema
			if id == "" {
				if len(b.Fields) == 0 {
					protest("nothing to preview")
					continue
				}
				s = Schema("scratch", b.Fields...)
			} else {
				for _, saved := range store.LoadAll(ctx) {
					if saved.Id == id || strings.HasPrefix(saved.Id, id) || saved.Name == id {
						s = saved
						break
					}
				}
				if s == nil {
					protest(`no form "%s"`, id)
					continue
				}
			}
			sess = session.New(s)
			say("previewing %s (%s)", s.Name, sess.State())

		case set.MatchString(line):
			if sess == nil {
				protest("no session (use preview)")
				continue
			}
			m := set.FindStringSubmatch(line)
			var f *form.FieldDefinition
			for i := range sess.Schema.Fields {
				fd := &sess.Schema.Fields[i]
				if strings.HasPrefix(fd.Id, m[1]) || fd.Label == m[1] {
					f = fd
					break
				}
			}
			if f == nil {
				protest("no such field")
				continue
			}
			sess.OnChange(ctx, f.Id, strings.TrimSpace(m[2]))
			util.Logf("fdb set %s; session %s", f.Id, sess.State())
			if msg, have := sess.Errors[f.Id]; have {
				say("invalid: %s", msg)
			}

		case submit.MatchString(line):
			if sess == nil {
				protest("no session (use preview)")
				continue
			}
			accepted, errs := sess.OnSubmit(ctx)
			if accepted {
				say("accepted")
				continue
			}
			for id, msg := range errs {
				say("%s: %s", id, msg)
			}

		case values.MatchString(line):
			if sess == nil {
				protest("no session (use preview)")
				continue
			}
			say("%s", JS(sess.Values))

		default:
			protest(`unknown command (try "help")`)
		}
	}
}
