package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// utf8BOM is stripped from the front of documents saved by spreadsheet tools.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports a buffer that is not a well-formed JSON object.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// Parse turns raw bytes into a document tree. The top-level value must be an
// object. Object members keep their source order.
func Parse(data []byte) (Value, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, &ParseError{Reason: "document is empty"}
	}

	if !json.Valid(data) {
		return Value{}, &ParseError{Reason: syntaxReason(data)}
	}

	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, &ParseError{Reason: err.Error()}
	}
	if typ != jsonparser.Object {
		return Value{}, &ParseError{Reason: fmt.Sprintf("top-level value is %s, want object", kindOf(typ))}
	}

	doc, err := decode(raw, typ)
	if err != nil {
		return Value{}, &ParseError{Reason: err.Error()}
	}
	return doc, nil
}

// syntaxReason recovers a descriptive message for invalid input.
func syntaxReason(data []byte) string {
	var discard any
	err := json.Unmarshal(data, &discard)

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("%s (offset %d)", syntaxErr.Error(), syntaxErr.Offset)
	}
	if err != nil {
		return err.Error()
	}
	return "invalid JSON"
}

func decode(raw []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.Null:
		return Null(), nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("bad string: %w", err)
		}
		return String(s), nil

	case jsonparser.Number:
		return Number(string(raw)), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, fmt.Errorf("bad boolean: %w", err)
		}
		return Bool(b), nil

	case jsonparser.Object:
		var members []Member
		err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
			// ObjectEach hands over keys already unescaped.
			name := string(key)
			child, err := decode(value, dataType)
			if err != nil {
				return err
			}
			members = append(members, Member{Key: name, Value: child})
			return nil
		})
		if err != nil {
			return Value{}, err
		}
		return Object(members...), nil

	case jsonparser.Array:
		var (
			elems    []Value
			firstErr error
		)
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
			if firstErr != nil {
				return
			}
			if err != nil {
				firstErr = err
				return
			}
			child, err := decode(value, dataType)
			if err != nil {
				firstErr = err
				return
			}
			elems = append(elems, child)
		})
		if err == nil {
			err = firstErr
		}
		if err != nil {
			return Value{}, err
		}
		return Array(elems...), nil
	}

	return Value{}, fmt.Errorf("unexpected value %q", raw)
}

func kindOf(typ jsonparser.ValueType) string {
	switch typ {
	case jsonparser.String:
		return KindString.String()
	case jsonparser.Number:
		return KindNumber.String()
	case jsonparser.Boolean:
		return KindBool.String()
	case jsonparser.Null:
		return KindNull.String()
	case jsonparser.Array:
		return KindArray.String()
	case jsonparser.Object:
		return KindObject.String()
	}
	return "unknown"
}
