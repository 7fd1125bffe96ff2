// Package schema declares the input contract of every tool and validates
// planner-proposed tool calls against it before anything side-effecting can
// run. Field specs are a closed tagged variant per type so validation is
// exhaustive and statically checkable.
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindBool
	KindEnum
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one declared input of a tool. Pattern applies to KindString,
// Enum to KindEnum, Min/Max to the numeric kinds, Fields to KindObject.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Desc     string
	Pattern  *regexp.Regexp
	Enum     []string
	Min      *float64
	Max      *float64
	Fields   []Field
}

// Tool is the immutable schema of one registered tool.
type Tool struct {
	Name   string
	Desc   string
	Fields []Field
}

// FieldOption customizes a field declaration.
type FieldOption func(*Field)

func Required() FieldOption {
	return func(f *Field) { f.Required = true }
}

func Desc(d string) FieldOption {
	return func(f *Field) { f.Desc = d }
}

// Pattern attaches an anchored regexp constraint to a string field. Panics
// on an invalid expression; schemas are declared once at startup.
func Pattern(expr string) FieldOption {
	re := regexp.MustCompile(expr)
	return func(f *Field) { f.Pattern = re }
}

func Min(v float64) FieldOption {
	return func(f *Field) { f.Min = &v }
}

func Max(v float64) FieldOption {
	return func(f *Field) { f.Max = &v }
}

// Builder declares a tool schema fluently:
//
//	schema.NewTool("send_otp", "Send a verification code").
//	    String("mobile_number", schema.Required(), schema.Pattern(`^\d{10}$`)).
//	    Build()
type Builder struct {
	tool Tool
}

func NewTool(name, desc string) *Builder {
	return &Builder{tool: Tool{Name: name, Desc: desc}}
}

func (b *Builder) add(f Field, opts []FieldOption) *Builder {
	for _, opt := range opts {
		opt(&f)
	}
	b.tool.Fields = append(b.tool.Fields, f)
	return b
}

func (b *Builder) String(name string, opts ...FieldOption) *Builder {
	return b.add(Field{Name: name, Kind: KindString}, opts)
}

func (b *Builder) Integer(name string, opts ...FieldOption) *Builder {
	return b.add(Field{Name: name, Kind: KindInteger}, opts)
}

func (b *Builder) Number(name string, opts ...FieldOption) *Builder {
	return b.add(Field{Name: name, Kind: KindNumber}, opts)
}

func (b *Builder) Bool(name string, opts ...FieldOption) *Builder {
	return b.add(Field{Name: name, Kind: KindBool}, opts)
}

func (b *Builder) Enum(name string, values []string, opts ...FieldOption) *Builder {
	return b.add(Field{Name: name, Kind: KindEnum, Enum: values}, opts)
}

// Object declares a nested object field whose own fields come from nested.
func (b *Builder) Object(name string, nested *Builder, opts ...FieldOption) *Builder {
	f := Field{Name: name, Kind: KindObject}
	if nested != nil {
		f.Fields = nested.tool.Fields
	}
	return b.add(f, opts)
}

func (b *Builder) Build() Tool {
	return b.tool
}

// Describe renders one field for the planner prompt.
func (f Field) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- %s: %s", f.Name, f.Kind)
	if f.Required {
		sb.WriteString(" (REQUIRED)")
	}
	if f.Desc != "" {
		fmt.Fprintf(&sb, " - %s", f.Desc)
	}
	if f.Pattern != nil {
		fmt.Fprintf(&sb, "; pattern %s", f.Pattern.String())
	}
	if len(f.Enum) > 0 {
		fmt.Fprintf(&sb, "; one of [%s]", strings.Join(f.Enum, ", "))
	}
	return sb.String()
}
