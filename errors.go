package yangson

import "fmt"

// Kind identifies the class of failure raised by the core, per the error
// taxonomy the spec defines. Local recovery never happens inside the core;
// the CLI (or any other caller) maps a Kind to whatever exit status or
// transport error it needs.
type Kind int

const (
	KindBadYangLibrary Kind = iota
	KindFeaturePrerequisiteError
	KindMultipleImplementedRevisions
	KindModuleNotFound
	KindNonexistentSchemaNode
	KindBadSchemaNodeType
	KindRawMemberError
	KindRawTypeError
	KindTypeError
	KindSchemaError
	KindSemanticError
	KindNonexistentInstance
	KindInstanceValueError
	KindUnexpectedInput
	KindEndOfInput
)

func (k Kind) String() string {
	switch k {
	case KindBadYangLibrary:
		return "bad-yang-library"
	case KindFeaturePrerequisiteError:
		return "feature-prerequisite-error"
	case KindMultipleImplementedRevisions:
		return "multiple-implemented-revisions"
	case KindModuleNotFound:
		return "module-not-found"
	case KindNonexistentSchemaNode:
		return "nonexistent-schema-node"
	case KindBadSchemaNodeType:
		return "bad-schema-node-type"
	case KindRawMemberError:
		return "raw-member-error"
	case KindRawTypeError:
		return "raw-type-error"
	case KindTypeError:
		return "type-error"
	case KindSchemaError:
		return "schema-error"
	case KindSemanticError:
		return "semantic-error"
	case KindNonexistentInstance:
		return "nonexistent-instance"
	case KindInstanceValueError:
		return "instance-value-error"
	case KindUnexpectedInput:
		return "unexpected-input"
	case KindEndOfInput:
		return "end-of-input"
	default:
		return "unknown-error"
	}
}

// Cursor locates the failure: a schema path, an instance JSON pointer, or
// an offset into parsed path text. At most one field is meaningful for any
// given Error; the others are zero.
type Cursor struct {
	SchemaPath string
	Instance   string
	Offset     int
}

// Error is the single error type the core raises. It is never wrapped or
// translated internally; callers match on Kind.
type Error struct {
	Kind    Kind
	Message string
	Cursor  Cursor
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cursor.SchemaPath != "" {
		return fmt.Sprintf("[%s] %s (at %s)", e.Kind, e.Message, e.Cursor.SchemaPath)
	}
	if e.Cursor.Instance != "" {
		return fmt.Sprintf("[%s] %s (at %s)", e.Kind, e.Message, e.Cursor.Instance)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func newErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func newSchemaErrorf(kind Kind, path, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cursor: Cursor{SchemaPath: path}}
}

func newInstanceErrorf(kind Kind, instance, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cursor: Cursor{Instance: instance}}
}

func newOffsetErrorf(kind Kind, offset int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cursor: Cursor{Offset: offset}}
}
