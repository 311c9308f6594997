// Package formloom provides schema-driven form machinery: typed field
// definitions, a validation rule engine, and derived fields computed
// from other fields' values.
//
// The schema model is in package 'form', the engines are in 'validate'
// and 'derive', and a command-line form debugger is in `cmd/fdb`.
//
// See https://github.com/formloom/formloom/blob/master/README.md for more.
package formloom
