package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// obj is a serializable PDF object.
type obj interface {
	writeTo(b *bytes.Buffer)
}

type name string

func (n name) writeTo(b *bytes.Buffer) {
	b.WriteByte('/')
	b.WriteString(pdfName(string(n)))
}

type integer int64

func (i integer) writeTo(b *bytes.Buffer) {
	b.WriteString(strconv.FormatInt(int64(i), 10))
}

type real float64

func (r real) writeTo(b *bytes.Buffer) {
	b.WriteString(fnum(float64(r)))
}

type boolean bool

func (v boolean) writeTo(b *bytes.Buffer) {
	if v {
		b.WriteString("true")
	} else {
		b.WriteString("false")
	}
}

// literal is an escaped (...) string.
type literal []byte

func (s literal) writeTo(b *bytes.Buffer) {
	b.WriteByte('(')
	for _, ch := range s {
		switch ch {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		case '\b':
			b.WriteString("\\b")
		case '\f':
			b.WriteString("\\f")
		default:
			if ch < 0x20 || ch >= 0x80 {
				fmt.Fprintf(b, "\\%03o", ch)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte(')')
}

// hexString is a <...> string.
type hexString []byte

func (s hexString) writeTo(b *bytes.Buffer) {
	b.WriteByte('<')
	for _, ch := range s {
		fmt.Fprintf(b, "%02X", ch)
	}
	b.WriteByte('>')
}

// ref is an indirect reference. Generation is always zero here.
type ref int

func (r ref) writeTo(b *bytes.Buffer) {
	fmt.Fprintf(b, "%d 0 R", int(r))
}

type array struct {
	items []obj
}

func newArray(items ...obj) *array { return &array{items: items} }

func (a *array) append(items ...obj) { a.items = append(a.items, items...) }

func (a *array) writeTo(b *bytes.Buffer) {
	b.WriteByte('[')
	for i, it := range a.items {
		if i > 0 {
			b.WriteByte(' ')
		}
		it.writeTo(b)
	}
	b.WriteByte(']')
}

// dict preserves insertion order so caller-supplied entries appear in the
// file in the order they were set.
type dict struct {
	keys []name
	kv   map[name]obj
}

func newDict() *dict {
	return &dict{kv: make(map[name]obj)}
}

func (d *dict) set(k name, v obj) {
	if _, ok := d.kv[k]; !ok {
		d.keys = append(d.keys, k)
	}
	d.kv[k] = v
}

func (d *dict) len() int { return len(d.keys) }

func (d *dict) writeTo(b *bytes.Buffer) {
	b.WriteString("<<")
	for _, k := range d.keys {
		k.writeTo(b)
		b.WriteByte(' ')
		d.kv[k].writeTo(b)
	}
	b.WriteString(">>")
}

type stream struct {
	dict *dict
	data []byte
}

func newStream(d *dict, data []byte) *stream {
	d.set("Length", integer(len(data)))
	return &stream{dict: d, data: data}
}

func (s *stream) writeTo(b *bytes.Buffer) {
	s.dict.writeTo(b)
	b.WriteString("stream\n")
	b.Write(s.data)
	b.WriteString("\nendstream")
}

// writeIndirect emits one numbered object body.
func writeIndirect(b *bytes.Buffer, num int, o obj) {
	fmt.Fprintf(b, "%d 0 obj\n", num)
	o.writeTo(b)
	b.WriteString("\nendobj\n")
}

// textString picks the representation for human-readable text: a literal
// string when the text survives single-byte encoding, a UTF-16BE hex
// string with BOM otherwise.
func textString(s string) obj {
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r < 0x20 || r > 0x7e {
			u := utf16.Encode([]rune(s))
			out := make([]byte, 0, 2+len(u)*2)
			out = append(out, 0xfe, 0xff)
			for _, v := range u {
				out = append(out, byte(v>>8), byte(v))
			}
			return hexString(out)
		}
	}
	return literal(s)
}

// pdfName escapes a name so delimiters and whitespace survive as #XX.
func pdfName(value string) string {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '_' || ch == '.' || ch == '+' {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "#%02X", ch)
	}
	return b.String()
}

// fnum formats a coordinate with two decimals, trailing zeros trimmed.
func fnum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
