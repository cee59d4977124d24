package agtype

import (
	"sort"
	"strconv"
	"strings"
)

// Encode renders a Value as a Cypher literal suitable for embedding in a
// query body sent to AGE.
//
// Encoding rules:
//   - integers and floats are emitted as unquoted decimal literals; a
//     float that happens to be integral keeps a ".0" suffix so it decodes
//     back as a float, not an integer
//   - booleans are emitted as lowercase true/false
//   - strings are single-quoted with embedded quotes and backslashes
//     escaped; user text never reaches the query unescaped
//   - null is emitted as the literal null (map encoding omits null
//     entries entirely, see EncodeMap)
//   - arrays and maps encode recursively
func Encode(v Value) string {
	var sb strings.Builder
	encodeTo(&sb, v)
	return sb.String()
}

func encodeTo(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		sb.WriteString(s)
		// Keep the float tag through a decode round trip.
		if !strings.ContainsAny(s, ".eE") {
			sb.WriteString(".0")
		}
	case KindString:
		encodeString(sb, v.s)
	case KindArray:
		sb.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			encodeTo(sb, item)
		}
		sb.WriteByte(']')
	case KindMap:
		encodeMapTo(sb, v.obj)
	}
}

func encodeString(sb *strings.Builder, s string) {
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
}

// EncodeMap renders a property map as a Cypher map literal, for example
// {age: 30, name: 'Alice'}. Keys are emitted in sorted order so the same
// properties always produce the same text. Entries whose value is null
// are omitted: AGE treats an absent key as "no property", and emitting
// quoted empty strings instead is exactly the historical bug this layer
// exists to avoid.
func EncodeMap(props map[string]Value) string {
	var sb strings.Builder
	encodeMapTo(&sb, props)
	return sb.String()
}

func encodeMapTo(sb *strings.Builder, props map[string]Value) {
	keys := make([]string, 0, len(props))
	for k, v := range props {
		if v.IsNull() {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		encodeTo(sb, props[k])
	}
	sb.WriteByte('}')
}
