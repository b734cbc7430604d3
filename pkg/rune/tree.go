package rune

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

var (
	nodeType  = reflect.TypeFor[Node]()
	tokenType = reflect.TypeFor[Token]()
)

// FormatTree renders a program as an indented tree. Each line names a node
// kind in snake case followed by its scalar attributes; child nodes are
// nested under the field that holds them.
func FormatTree(prog *Program) string {
	var b strings.Builder
	b.WriteString("program\n")
	for _, s := range prog.Stmts {
		writeNode(&b, 1, "", s)
	}
	return b.String()
}

type treeChild struct {
	label string
	value reflect.Value
}

func writeNode(b *strings.Builder, depth int, label string, n Node) {
	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	var attrs []string
	var children []treeChild
	collectFields(v, &attrs, &children)

	b.WriteString(strings.Repeat("  ", depth))
	if label != "" {
		b.WriteString(label + ": ")
	}
	b.WriteString(strcase.ToSnake(v.Type().Name()))
	for _, a := range attrs {
		b.WriteString(" " + a)
	}
	b.WriteByte('\n')

	for _, c := range children {
		writeValue(b, depth+1, c.label, c.value)
	}
}

func collectFields(v reflect.Value, attrs *[]string, children *[]treeChild) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)
		if f.Anonymous && fv.Kind() == reflect.Struct {
			collectFields(fv, attrs, children)
			continue
		}
		name := strcase.ToSnake(f.Name)
		switch {
		case f.Type == tokenType:
			*attrs = append(*attrs, name+"="+fv.Interface().(Token).Lexeme)
		case f.Type.Kind() == reflect.Slice && f.Type.Elem() == tokenType:
			toks := fv.Interface().([]Token)
			lexemes := make([]string, len(toks))
			for j, tok := range toks {
				lexemes[j] = tok.Lexeme
			}
			*attrs = append(*attrs, name+"=("+strings.Join(lexemes, ", ")+")")
		case holdsNodes(f.Type):
			*children = append(*children, treeChild{label: name, value: fv})
		default:
			if fv.Kind() == reflect.Interface && fv.IsNil() {
				continue
			}
			*attrs = append(*attrs, fmt.Sprintf("%s=%v", name, fv.Interface()))
		}
	}
}

func holdsNodes(t reflect.Type) bool {
	if t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return t.Implements(nodeType) || (t.Kind() == reflect.Interface && t.Implements(nodeType))
}

func writeValue(b *strings.Builder, depth int, label string, v reflect.Value) {
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			writeValue(b, depth, fmt.Sprintf("%s[%d]", label, i), v.Index(i))
		}
		return
	}
	if (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) && v.IsNil() {
		return
	}
	if n, ok := v.Interface().(Node); ok {
		writeNode(b, depth, label, n)
	}
}
