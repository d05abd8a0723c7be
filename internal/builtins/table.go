// Package builtins is the external collaborator that supplies the
// interpreter's built-in function table: the fixed set of names a program
// can call without having declared them, each backed by Go rather than
// generated bytecode.
package builtins

import "corelang/internal/bytecode"

// Spec names one built-in: its arity (the interpreter validates call sites
// against this) and the ID the interpreter's dispatch switch keys on.
type Spec struct {
	Name  string
	Arity int
	ID    int
}

const (
	Length = iota
	Substring
	Locate
	Replace
	Match
	Capture
	Split
	Regex
	TypeOf
	Dump
	Keys
	Sort
	Push
	Pop
	Insert
	Delete
	Contains
	AppendFn
	Open
	ReadLine
	WriteLine
	Close
	Humanize
	UUID
)

// All lists every built-in in a stable order; RegisterInto relies on this
// order matching each Spec's ID only incidentally — IDs are explicit above
// so reordering this table can never silently change dispatch.
func All() []Spec {
	return []Spec{
		{"length", 1, Length},
		{"substring", 3, Substring},
		{"locate", 2, Locate},
		{"replace", 3, Replace},
		{"match", 2, Match},
		{"capture", 2, Capture},
		{"split", 2, Split},
		{"regex", 2, Regex},
		{"type", 1, TypeOf},
		{"dump", 1, Dump},
		{"keys", 1, Keys},
		{"sort", 1, Sort},
		{"push", 2, Push},
		{"pop", 1, Pop},
		{"insert", 3, Insert},
		{"delete", 2, Delete},
		{"contains", 2, Contains},
		{"append", 2, AppendFn},
		{"open", 2, Open},
		{"readline", 1, ReadLine},
		{"writeline", 2, WriteLine},
		{"close", 1, Close},
		{"humanize", 1, Humanize},
		{"uuid", 0, UUID},
	}
}

// RegisterInto installs every built-in into fm ahead of any declared
// function, so FrameMap indices for builtins are stable regardless of what
// the program under compilation declares.
func RegisterInto(fm *bytecode.FrameMap) {
	for _, s := range All() {
		fm.AddBuiltin(s.Name, s.Arity, s.ID)
	}
}
