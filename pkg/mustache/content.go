package mustache

import (
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Encoder receives the rendered output of a template.
type Encoder interface {
	// WriteUnescaped writes s verbatim.
	WriteUnescaped(s string) error
	// WriteEscaped writes s with every character significant to the output
	// format neutralised.
	WriteEscaped(s string) error
}

// Content is the rendering contract every value placed into a template must
// satisfy. The engine never inspects values directly, it only calls these
// methods.
//
// The RenderField methods report whether name is a field of the receiver. A
// false result is not an error: it tells the engine to keep searching the
// enclosing contexts. hash is Hash(name), computed once when the template was
// parsed; implementations that do not need it may ignore it.
type Content interface {
	IsTruthy() bool
	RenderEscaped(enc Encoder) error
	RenderUnescaped(enc Encoder) error
	RenderSection(section Section, enc Encoder) error
	RenderInverse(section Section, enc Encoder) error

	RenderFieldEscaped(hash uint64, name string, enc Encoder) (bool, error)
	RenderFieldUnescaped(hash uint64, name string, enc Encoder) (bool, error)
	RenderFieldSection(hash uint64, name string, section Section, enc Encoder) (bool, error)
	RenderFieldInverse(hash uint64, name string, section Section, enc Encoder) (bool, error)
}

// Hash returns the stable hash of a field name handed to the RenderField
// methods.
func Hash(name string) uint64 {
	return xxhash.Sum64String(name)
}

// NoFields can be embedded by Content implementations that expose no named
// fields.
type NoFields struct{}

func (NoFields) RenderFieldEscaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (NoFields) RenderFieldUnescaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (NoFields) RenderFieldSection(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}
func (NoFields) RenderFieldInverse(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}

// RenderIfTruthy renders section once, without changing the context, when c
// is truthy. It is the conventional section behaviour for scalars.
func RenderIfTruthy(c Content, section Section, enc Encoder) error {
	if c.IsTruthy() {
		return section.Render(enc)
	}
	return nil
}

// RenderIfFalsy renders section once when c is not truthy. It is the
// conventional inverse section behaviour.
func RenderIfFalsy(c Content, section Section, enc Encoder) error {
	if !c.IsTruthy() {
		return section.Render(enc)
	}
	return nil
}

// String adapts a Go string to Content. It is truthy when non-empty.
type String string

func (s String) IsTruthy() bool { return s != "" }

func (s String) RenderEscaped(enc Encoder) error { return enc.WriteEscaped(string(s)) }

func (s String) RenderUnescaped(enc Encoder) error { return enc.WriteUnescaped(string(s)) }

func (s String) RenderSection(section Section, enc Encoder) error {
	return RenderIfTruthy(s, section, enc)
}

func (s String) RenderInverse(section Section, enc Encoder) error {
	return RenderIfFalsy(s, section, enc)
}

func (String) RenderFieldEscaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (String) RenderFieldUnescaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (String) RenderFieldSection(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}
func (String) RenderFieldInverse(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}

// Number adapts a float64 to Content. It renders the shortest decimal text
// that round-trips, without an exponent, so 3.5 renders as "3.5" and 2.0 as
// "2". It is truthy when non-zero.
type Number float64

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (n Number) IsTruthy() bool { return n != 0 }

// Numbers never contain characters that need escaping.
func (n Number) RenderEscaped(enc Encoder) error { return enc.WriteUnescaped(n.String()) }

func (n Number) RenderUnescaped(enc Encoder) error { return enc.WriteUnescaped(n.String()) }

func (n Number) RenderSection(section Section, enc Encoder) error {
	return RenderIfTruthy(n, section, enc)
}

func (n Number) RenderInverse(section Section, enc Encoder) error {
	return RenderIfFalsy(n, section, enc)
}

func (Number) RenderFieldEscaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (Number) RenderFieldUnescaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (Number) RenderFieldSection(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}
func (Number) RenderFieldInverse(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}

// Int adapts an int to Content. It is truthy when non-zero.
type Int int

func (n Int) IsTruthy() bool { return n != 0 }

func (n Int) RenderEscaped(enc Encoder) error { return enc.WriteUnescaped(strconv.Itoa(int(n))) }

func (n Int) RenderUnescaped(enc Encoder) error { return enc.WriteUnescaped(strconv.Itoa(int(n))) }

func (n Int) RenderSection(section Section, enc Encoder) error {
	return RenderIfTruthy(n, section, enc)
}

func (n Int) RenderInverse(section Section, enc Encoder) error {
	return RenderIfFalsy(n, section, enc)
}

func (Int) RenderFieldEscaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (Int) RenderFieldUnescaped(uint64, string, Encoder) (bool, error) { return false, nil }
func (Int) RenderFieldSection(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}
func (Int) RenderFieldInverse(uint64, string, Section, Encoder) (bool, error) {
	return false, nil
}

// Fields is a fixed set of named values. It renders nothing by itself, is
// truthy when non-empty and, as a section, renders once with itself pushed
// as the context.
type Fields map[string]Content

func (f Fields) IsTruthy() bool { return len(f) > 0 }

func (Fields) RenderEscaped(Encoder) error { return nil }

func (Fields) RenderUnescaped(Encoder) error { return nil }

func (f Fields) RenderSection(section Section, enc Encoder) error {
	if !f.IsTruthy() {
		return nil
	}
	return section.With(f).Render(enc)
}

func (f Fields) RenderInverse(section Section, enc Encoder) error {
	return RenderIfFalsy(f, section, enc)
}

func (f Fields) RenderFieldEscaped(_ uint64, name string, enc Encoder) (bool, error) {
	c, ok := f[name]
	if !ok {
		return false, nil
	}
	return true, c.RenderEscaped(enc)
}

func (f Fields) RenderFieldUnescaped(_ uint64, name string, enc Encoder) (bool, error) {
	c, ok := f[name]
	if !ok {
		return false, nil
	}
	return true, c.RenderUnescaped(enc)
}

func (f Fields) RenderFieldSection(_ uint64, name string, section Section, enc Encoder) (bool, error) {
	c, ok := f[name]
	if !ok {
		return false, nil
	}
	return true, c.RenderSection(section, enc)
}

func (f Fields) RenderFieldInverse(_ uint64, name string, section Section, enc Encoder) (bool, error) {
	c, ok := f[name]
	if !ok {
		return false, nil
	}
	return true, c.RenderInverse(section, enc)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// HTMLEncoder writes rendered output to an io.Writer, HTML-escaping the
// escaped writes. Errors from the writer are returned unchanged.
type HTMLEncoder struct {
	w io.Writer
}

// NewHTMLEncoder returns an Encoder writing to w.
func NewHTMLEncoder(w io.Writer) *HTMLEncoder {
	return &HTMLEncoder{w: w}
}

func (e *HTMLEncoder) WriteUnescaped(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *HTMLEncoder) WriteEscaped(s string) error {
	_, err := htmlEscaper.WriteString(e.w, s)
	return err
}
