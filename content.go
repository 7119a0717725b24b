package jsonschema

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// defaultDecoders seeds a Compiler's contentEncoding table (teacher's
// Compiler.Decoders, compiler.go setupMediaTypes/RegisterDecoder family).
func defaultDecoders() map[string]ContentDecoder {
	return map[string]ContentDecoder{
		"base64":    base64.StdEncoding.DecodeString,
		"base64url": base64.URLEncoding.DecodeString,
		"base32":    base32.StdEncoding.DecodeString,
		"hex":       hex.DecodeString,
		"quoted-printable": func(s string) ([]byte, error) {
			return []byte(s), nil // pass-through: no stdlib quoted-printable decoder in scope
		},
	}
}

// defaultMediaTypes seeds a Compiler's contentMediaType table (teacher's
// Compiler.MediaTypes).
func defaultMediaTypes() map[string]ContentMediaTypeFunc {
	return map[string]ContentMediaTypeFunc{
		"application/json": func(data []byte) (Value, error) {
			v, err := decodeValue(data)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshal, err)
			}
			return v, nil
		},
		"text/plain": func(data []byte) (Value, error) {
			return string(data), nil
		},
	}
}

// evaluateContent runs one stage of the contentEncoding -> contentMediaType
// -> contentSchema pipeline (the decoding or the media-type parse named by
// instr) for a single string instance, ported from the teacher's
// evaluateContent (content.go). runNode chains the stages and applies
// contentSchema itself; instructions are only emitted for the keywords the
// schema actually declared (compileContent in compiler.go).
func (m *vm) evaluateContent(instr Instruction, s string) (decoded []byte, parsed Value, hasParsed bool, err error) {
	switch instr.Op {
	case OpContentEncoding:
		name := m.program.strings[instr.Pool]
		dec, ok := m.compiler.decoders[name]
		if !ok {
			return nil, nil, false, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
		}
		b, err := dec(s)
		if err != nil {
			return nil, nil, false, err
		}
		return b, nil, false, nil
	case OpContentMediaType:
		name := m.program.strings[instr.Pool]
		fn, ok := m.compiler.mediaTypes[name]
		if !ok {
			return nil, nil, false, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, name)
		}
		v, err := fn([]byte(s))
		if err != nil {
			return nil, nil, false, err
		}
		return nil, v, true, nil
	default:
		return nil, nil, false, nil
	}
}
