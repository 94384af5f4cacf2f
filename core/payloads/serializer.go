package payloads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
)

var emptyObject = []byte("{}")

// Serialize converts payload into the JSON body published on topic.
//
// Payload may be nil, a JSON string or byte slice, a map or a typed payload
// struct. For registered topics the result is strictly decoded into the
// topic's type and re-encoded, so the wire shape always matches the
// registry. Unregistered topics accept anything JSON can encode.
func Serialize(topic string, payload any) ([]byte, error) {
	t, known := TypeFor(topic)

	if raw, ok := rawBody(payload); ok {
		if len(raw) == 0 {
			if !known {
				return emptyObject, nil
			}
			raw = emptyObject
		} else if !json.Valid(raw) {
			return nil, fmt.Errorf("%w: %s: not valid json", ErrInvalidPayload, topic)
		}
		if !known {
			return raw, nil
		}
		v, err := strictDecode(raw, t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", topic, err)
		}
		return json.Marshal(v.Interface())
	}

	if !known {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, topic, err)
		}
		return b, nil
	}

	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		if rv.Type() != t {
			return nil, fmt.Errorf("%w: %s expects %s, got %s", ErrInvalidPayload, topic, t.Name(), rv.Type().Name())
		}
		return json.Marshal(rv.Interface())
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, topic, err)
	}
	v, err := strictDecode(b, t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", topic, err)
	}
	return json.Marshal(v.Interface())
}

// Deserialize decodes a message body received on topic. Registered topics
// yield their payload type by value. Other topics yield EmptyMessage for an
// empty body, a map for JSON objects and the plain decoded value otherwise.
func Deserialize(topic string, data []byte) (any, error) {
	if t, ok := TypeFor(topic); ok {
		v, err := strictDecode(data, t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", topic, err)
		}
		return v.Interface(), nil
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return EmptyMessage{}, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, topic, err)
	}
	if m, ok := out.(map[string]any); ok && len(m) == 0 {
		return EmptyMessage{}, nil
	}
	return out, nil
}

// Decode strictly decodes data into T. T must be a struct payload type.
func Decode[T any](data []byte) (T, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return zero, fmt.Errorf("%w: %T is not a payload type", ErrInvalidPayload, zero)
	}
	v, err := strictDecode(data, t)
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

func rawBody(payload any) ([]byte, bool) {
	switch p := payload.(type) {
	case nil:
		return nil, true
	case string:
		return bytes.TrimSpace([]byte(p)), true
	case []byte:
		return bytes.TrimSpace(p), true
	case json.RawMessage:
		return bytes.TrimSpace(p), true
	}
	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, true
	}
	return nil, false
}

// strictDecode rejects unknown fields and trailing data, then hands the
// shape checks to checkRequired. Required fields are the ones tagged
// without omitempty.
func strictDecode(data []byte, t reflect.Type) (reflect.Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = emptyObject
	}
	ptr := reflect.New(t)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ptr.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return reflect.Value{}, fmt.Errorf("%w: trailing data after object", ErrInvalidPayload)
	}
	if err := checkRequired(t, data, ""); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// checkRequired walks data alongside t and rejects what encoding/json would
// silently zero-fill: absent or null required fields, arrays of the wrong
// length and null elements. A null slice is accepted as empty since that is
// how encoding/json writes a nil slice.
func checkRequired(t reflect.Type, data json.RawMessage, path string) error {
	switch t.Kind() {
	case reflect.Struct:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if obj == nil && len(fieldsOf(t)) > 0 {
			return fmt.Errorf("%w: %snull object", ErrInvalidPayload, path)
		}
		for _, f := range fieldsOf(t) {
			raw, ok := obj[f.name]
			if ok && isNull(raw) && f.typ.Kind() == reflect.Slice {
				continue
			}
			if !ok || isNull(raw) {
				if !f.required {
					continue
				}
				if !ok {
					return fmt.Errorf("%w: missing field %s%s", ErrInvalidPayload, path, f.name)
				}
				return fmt.Errorf("%w: null field %s%s", ErrInvalidPayload, path, f.name)
			}
			if err := checkRequired(f.typ, raw, path+f.name+"."); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if t.Kind() == reflect.Array && len(items) != t.Len() {
			return fmt.Errorf("%w: %shas %d elements, want %d", ErrInvalidPayload, path, len(items), t.Len())
		}
		for i, item := range items {
			elemPath := fmt.Sprintf("%s%d.", path, i)
			if isNull(item) {
				return fmt.Errorf("%w: null element %s", ErrInvalidPayload, strings.TrimSuffix(elemPath, "."))
			}
			if err := checkRequired(t.Elem(), item, elemPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

type fieldInfo struct {
	name     string
	required bool
	typ      reflect.Type
}

var fieldCache sync.Map // reflect.Type -> []fieldInfo

func fieldsOf(t reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	fields := make([]fieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, fieldInfo{
			name:     name,
			required: !strings.Contains(opts, "omitempty"),
			typ:      sf.Type,
		})
	}
	fieldCache.Store(t, fields)
	return fields
}
