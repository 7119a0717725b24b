package jsonschema

import (
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// decodeValue parses raw JSON bytes into the Value tree described in
// value.go, preserving each number's literal text through newNumberFromLiteral
// instead of routing through encoding/json's lossy float64 unmarshal. This
// is what both schema documents and candidate instances are decoded with.
func decodeValue(data []byte) (Value, error) {
	dec := jsontext.NewDecoder(newBytesReader(data))
	v, err := decodeNext(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeNext(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}
	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 'f':
		return false, nil
	case 't':
		return true, nil
	case '"':
		return tok.String(), nil
	case '0':
		n, ok := newNumberFromLiteral(tok.String())
		if !ok {
			n = Number{Kind: kindFloat64, F64: tok.Float()}
		}
		return n, nil
	case '[':
		arr := make([]any, 0, 4)
		for dec.PeekKind() != ']' {
			elem, err := decodeNext(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		if _, err := dec.ReadToken(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil
	case '{':
		obj := make(map[string]any, 4)
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			val, err := decodeNext(dec)
			if err != nil {
				return nil, err
			}
			obj[keyTok.String()] = val
		}
		if _, err := dec.ReadToken(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

// bytesReaderAt adapts a []byte for jsontext.NewDecoder, which wants an
// io.Reader; avoids pulling in bytes.NewReader just for this one call site
// to keep the import list in one place.
type bytesReaderAt struct {
	b []byte
	i int
}

func newBytesReader(b []byte) *bytesReaderAt { return &bytesReaderAt{b: b} }

func (r *bytesReaderAt) Read(p []byte) (int, error) {
	if r.i >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.i:])
	r.i += n
	return n, nil
}
