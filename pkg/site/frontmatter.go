package site

import (
	"bytes"
	"errors"

	"github.com/CTAG07/Lamina/pkg/content"
)

// Format identifies the front matter syntax of a source file.
type Format int

const (
	FormatNone Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "none"
	}
}

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing one.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Split separates front matter from the body. "+++" delimits TOML and "---"
// delimits YAML; the delimiter must be the very first line. A document
// without front matter is returned whole as the body with FormatNone.
func Split(src []byte) (format Format, frontmatter []byte, body []byte, err error) {
	nl := detectNewline(src)

	var delim string
	switch {
	case bytes.HasPrefix(src, []byte("+++"+nl)):
		format, delim = FormatTOML, "+++"
	case bytes.HasPrefix(src, []byte("---"+nl)):
		format, delim = FormatYAML, "---"
	default:
		return FormatNone, nil, src, nil
	}

	start := len(delim) + len(nl)
	rest := src[start:]
	if bytes.HasPrefix(rest, []byte(delim+nl)) {
		return format, []byte{}, rest[len(delim)+len(nl):], nil
	}
	if string(rest) == delim {
		return format, []byte{}, []byte{}, nil
	}

	closeSeq := []byte(nl + delim + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return format, rest[:idx+len(nl)], rest[idx+len(closeSeq):], nil
	}
	// The closing delimiter may be the last line without a newline.
	if tail := []byte(nl + delim); bytes.HasSuffix(rest, tail) {
		return format, rest[:len(rest)-len(delim)], []byte{}, nil
	}
	return FormatNone, nil, nil, ErrMissingClosingDelimiter
}

// DecodeFrontMatter decodes raw front matter of the given format. FormatNone
// and empty input decode into an empty map.
func DecodeFrontMatter(format Format, frontmatter []byte) (*content.Map, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return content.NewMap(), nil
	}
	switch format {
	case FormatTOML:
		return content.DecodeTOML(frontmatter)
	case FormatYAML:
		return content.DecodeYAML(frontmatter)
	default:
		return content.NewMap(), nil
	}
}

func detectNewline(src []byte) string {
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			if i > 0 && src[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}
