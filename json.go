package yangson

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON renders v (already bound to schema) as RFC 7951 JSON text.
// It walks the tree itself rather than handing an ObjectValue to
// encoding/json's map encoder, since that would re-sort members
// alphabetically and lose the member order ObjectValue preserves.
func MarshalJSON(schema *SchemaNode, v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalValue(&buf, schema, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalValue(buf *bytes.Buffer, schema *SchemaNode, v Value) error {
	switch val := v.(type) {
	case *ObjectValue:
		return marshalObject(buf, schema, val)
	case *ArrayValue:
		return marshalArray(buf, schema, val)
	case *ScalarValue:
		return marshalScalar(buf, schema, val)
	default:
		buf.WriteString("null")
		return nil
	}
}

func marshalObject(buf *bytes.Buffer, schema *SchemaNode, o *ObjectValue) error {
	buf.WriteByte('{')
	for i, key := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		child, _ := o.Get(key)
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if err := marshalValue(buf, childSchemaFor(schema, key), child); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func marshalArray(buf *bytes.Buffer, schema *SchemaNode, a *ArrayValue) error {
	buf.WriteByte('[')
	for i, it := range a.Items() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalValue(buf, schema, it); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalScalar(buf *bytes.Buffer, schema *SchemaNode, sv *ScalarValue) error {
	raw := sv.Value
	if schema != nil && schema.datatype != nil {
		var err error
		raw, err = schema.datatype.ToRaw(sv.Value)
		if err != nil {
			return err
		}
	}
	enc, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}

// UnmarshalJSON decodes RFC 7951 JSON text against schema, delegating the
// schema-driven raw-to-cooked conversion to SchemaNode.FromRawValue.
// Member order on the wire is immaterial for decoding (RFC 7951 JSON
// objects are unordered), so the standard library's map decoding is fine
// here: wire order is not kept, FromRawValue stores members in schema
// child order, and MarshalJSON writes them out in that order.
func UnmarshalJSON(schema *SchemaNode, data []byte) (Value, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newErrorf(KindRawTypeError, "invalid JSON: %v", err)
	}
	return schema.FromRawValue(raw)
}
