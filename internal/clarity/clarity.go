// Package clarity decodes hex-encoded Clarity values as they appear in
// chainhook event payloads (print event data, NFT token ids) into plain
// structured Go values.
package clarity

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Type is the wire-format type tag of a Clarity value.
type Type byte

const (
	TypeInt               Type = 0x00
	TypeUInt              Type = 0x01
	TypeBuffer            Type = 0x02
	TypeBoolTrue          Type = 0x03
	TypeBoolFalse         Type = 0x04
	TypePrincipalStandard Type = 0x05
	TypePrincipalContract Type = 0x06
	TypeResponseOk        Type = 0x07
	TypeResponseErr       Type = 0x08
	TypeOptionalNone      Type = 0x09
	TypeOptionalSome      Type = 0x0a
	TypeList              Type = 0x0b
	TypeTuple             Type = 0x0c
	TypeStringASCII       Type = 0x0d
	TypeStringUTF8        Type = 0x0e
)

// DecodeError reports malformed or unrecognized Clarity wire data.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "clarity: " + e.Reason
}

func decodeErrf(format string, args ...interface{}) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// Value is a decoded Clarity value. Exactly the fields relevant to Type are
// populated; principals keep their raw version+hash bytes so values can be
// re-encoded byte for byte.
type Value struct {
	Type Type

	Int   *big.Int // TypeInt, TypeUInt
	Bytes []byte   // TypeBuffer; principals: 21 bytes (version + hash160)
	Str   string   // strings; contract principal name
	Inner *Value   // TypeResponseOk/Err, TypeOptionalSome

	List      []Value
	Tuple     map[string]Value
	TupleKeys []string // wire order of tuple fields
}

const (
	maxStringLen = 1 << 20
	intByteLen   = 16
	hashByteLen  = 20
)

// Decode parses a hex string (with or without 0x prefix) containing a single
// serialized Clarity value. Trailing bytes after the value are an error.
func Decode(hexStr string) (Value, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		return Value{}, decodeErrf("invalid hex: %v", err)
	}

	v, rest, err := decodeValue(raw)
	if err != nil {
		return Value{}, err
	}
	if len(rest) != 0 {
		return Value{}, decodeErrf("%d trailing bytes after value", len(rest))
	}
	return v, nil
}

func decodeValue(b []byte) (Value, []byte, error) {
	if len(b) == 0 {
		return Value{}, nil, decodeErrf("unexpected end of input")
	}
	tag := Type(b[0])
	b = b[1:]

	switch tag {
	case TypeInt, TypeUInt:
		if len(b) < intByteLen {
			return Value{}, nil, decodeErrf("truncated %d-bit integer", intByteLen*8)
		}
		n := new(big.Int).SetBytes(b[:intByteLen])
		if tag == TypeInt && b[0]&0x80 != 0 {
			// Two's complement: subtract 2^128.
			n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 128))
		}
		return Value{Type: tag, Int: n}, b[intByteLen:], nil

	case TypeBuffer:
		data, rest, err := readLenPrefixed(b, "buffer")
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Type: tag, Bytes: data}, rest, nil

	case TypeBoolTrue, TypeBoolFalse, TypeOptionalNone:
		return Value{Type: tag}, b, nil

	case TypePrincipalStandard:
		if len(b) < 1+hashByteLen {
			return Value{}, nil, decodeErrf("truncated principal")
		}
		return Value{Type: tag, Bytes: append([]byte(nil), b[:1+hashByteLen]...)}, b[1+hashByteLen:], nil

	case TypePrincipalContract:
		if len(b) < 1+hashByteLen+1 {
			return Value{}, nil, decodeErrf("truncated contract principal")
		}
		addr := append([]byte(nil), b[:1+hashByteLen]...)
		b = b[1+hashByteLen:]
		name, rest, err := readClarityName(b)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Type: tag, Bytes: addr, Str: name}, rest, nil

	case TypeResponseOk, TypeResponseErr, TypeOptionalSome:
		inner, rest, err := decodeValue(b)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Type: tag, Inner: &inner}, rest, nil

	case TypeList:
		if len(b) < 4 {
			return Value{}, nil, decodeErrf("truncated list length")
		}
		count := binary.BigEndian.Uint32(b)
		b = b[4:]
		if uint64(count) > uint64(len(b)) {
			return Value{}, nil, decodeErrf("list length %d exceeds input", count)
		}
		items := make([]Value, 0, count)
		for i := uint32(0); i < count; i++ {
			item, rest, err := decodeValue(b)
			if err != nil {
				return Value{}, nil, err
			}
			items = append(items, item)
			b = rest
		}
		return Value{Type: tag, List: items}, b, nil

	case TypeTuple:
		if len(b) < 4 {
			return Value{}, nil, decodeErrf("truncated tuple length")
		}
		count := binary.BigEndian.Uint32(b)
		b = b[4:]
		if uint64(count) > uint64(len(b)) {
			return Value{}, nil, decodeErrf("tuple length %d exceeds input", count)
		}
		fields := make(map[string]Value, count)
		keys := make([]string, 0, count)
		for i := uint32(0); i < count; i++ {
			name, rest, err := readClarityName(b)
			if err != nil {
				return Value{}, nil, err
			}
			item, rest, err := decodeValue(rest)
			if err != nil {
				return Value{}, nil, err
			}
			fields[name] = item
			keys = append(keys, name)
			b = rest
		}
		return Value{Type: tag, Tuple: fields, TupleKeys: keys}, b, nil

	case TypeStringASCII, TypeStringUTF8:
		data, rest, err := readLenPrefixed(b, "string")
		if err != nil {
			return Value{}, nil, err
		}
		return Value{Type: tag, Str: string(data)}, rest, nil

	default:
		return Value{}, nil, decodeErrf("unknown type tag 0x%02x", byte(tag))
	}
}

func readLenPrefixed(b []byte, what string) ([]byte, []byte, error) {
	if len(b) < 4 {
		return nil, nil, decodeErrf("truncated %s length", what)
	}
	n := binary.BigEndian.Uint32(b)
	b = b[4:]
	if n > maxStringLen || uint64(n) > uint64(len(b)) {
		return nil, nil, decodeErrf("%s length %d exceeds input", what, n)
	}
	return append([]byte(nil), b[:n]...), b[n:], nil
}

// readClarityName reads a 1-byte length prefixed identifier.
func readClarityName(b []byte) (string, []byte, error) {
	if len(b) < 1 {
		return "", nil, decodeErrf("truncated name length")
	}
	n := int(b[0])
	b = b[1:]
	if n > len(b) {
		return "", nil, decodeErrf("name length %d exceeds input", n)
	}
	return string(b[:n]), b[n:], nil
}

// Encode serializes a value back to its wire form. Together with Decode it
// round-trips any value Decode accepts.
func Encode(v Value) ([]byte, error) {
	var out []byte
	return appendValue(out, v)
}

func appendValue(out []byte, v Value) ([]byte, error) {
	out = append(out, byte(v.Type))

	switch v.Type {
	case TypeInt, TypeUInt:
		if v.Int == nil {
			return nil, decodeErrf("integer value missing")
		}
		n := v.Int
		if v.Type == TypeInt && n.Sign() < 0 {
			n = new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), 128))
		}
		buf := make([]byte, intByteLen)
		n.FillBytes(buf)
		return append(out, buf...), nil

	case TypeBuffer:
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.Bytes)))
		return append(out, v.Bytes...), nil

	case TypeBoolTrue, TypeBoolFalse, TypeOptionalNone:
		return out, nil

	case TypePrincipalStandard:
		if len(v.Bytes) != 1+hashByteLen {
			return nil, decodeErrf("principal must be %d bytes", 1+hashByteLen)
		}
		return append(out, v.Bytes...), nil

	case TypePrincipalContract:
		if len(v.Bytes) != 1+hashByteLen {
			return nil, decodeErrf("principal must be %d bytes", 1+hashByteLen)
		}
		out = append(out, v.Bytes...)
		out = append(out, byte(len(v.Str)))
		return append(out, v.Str...), nil

	case TypeResponseOk, TypeResponseErr, TypeOptionalSome:
		if v.Inner == nil {
			return nil, decodeErrf("inner value missing")
		}
		return appendValue(out, *v.Inner)

	case TypeList:
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.List)))
		var err error
		for _, item := range v.List {
			if out, err = appendValue(out, item); err != nil {
				return nil, err
			}
		}
		return out, nil

	case TypeTuple:
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.TupleKeys)))
		var err error
		for _, key := range v.TupleKeys {
			out = append(out, byte(len(key)))
			out = append(out, key...)
			if out, err = appendValue(out, v.Tuple[key]); err != nil {
				return nil, err
			}
		}
		return out, nil

	case TypeStringASCII, TypeStringUTF8:
		out = binary.BigEndian.AppendUint32(out, uint32(len(v.Str)))
		return append(out, v.Str...), nil

	default:
		return nil, decodeErrf("unknown type tag 0x%02x", byte(v.Type))
	}
}

// Interface converts a value to its plain JSON-shaped form: tuples become
// maps, lists become slices, integers become uint64/int64 when they fit
// (decimal strings otherwise), principals become addresses, optionals and
// responses unwrap to their inner value (none becomes nil).
func (v Value) Interface() interface{} {
	switch v.Type {
	case TypeInt:
		if v.Int.IsInt64() {
			return v.Int.Int64()
		}
		return v.Int.String()
	case TypeUInt:
		if v.Int.IsUint64() {
			return v.Int.Uint64()
		}
		return v.Int.String()
	case TypeBuffer:
		return "0x" + hex.EncodeToString(v.Bytes)
	case TypeBoolTrue:
		return true
	case TypeBoolFalse:
		return false
	case TypePrincipalStandard, TypePrincipalContract:
		return v.Principal()
	case TypeResponseOk, TypeResponseErr, TypeOptionalSome:
		return v.Inner.Interface()
	case TypeOptionalNone:
		return nil
	case TypeList:
		items := make([]interface{}, len(v.List))
		for i, item := range v.List {
			items[i] = item.Interface()
		}
		return items
	case TypeTuple:
		fields := make(map[string]interface{}, len(v.Tuple))
		for name, item := range v.Tuple {
			fields[name] = item.Interface()
		}
		return fields
	case TypeStringASCII, TypeStringUTF8:
		return v.Str
	default:
		return nil
	}
}

// Principal returns the c32check address of a principal value, with the
// contract name appended for contract principals. Empty string for
// non-principal values.
func (v Value) Principal() string {
	if v.Type != TypePrincipalStandard && v.Type != TypePrincipalContract {
		return ""
	}
	addr := c32Address(v.Bytes[0], v.Bytes[1:])
	if v.Type == TypePrincipalContract {
		return addr + "." + v.Str
	}
	return addr
}

// DecodePrintEvent decodes the hex payload of a contract print event and
// unwraps it down to the tuple mapping the contract emitted. Callers treat a
// failure as "no data" rather than propagating it.
func DecodePrintEvent(hexStr string) (map[string]interface{}, error) {
	v, err := Decode(hexStr)
	if err != nil {
		return nil, err
	}
	for v.Inner != nil {
		v = *v.Inner
	}
	if v.Type != TypeTuple {
		return nil, decodeErrf("print payload is not a tuple")
	}
	fields, _ := v.Interface().(map[string]interface{})
	return fields, nil
}
