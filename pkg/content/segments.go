package content

import (
	"os"

	"github.com/CTAG07/Lamina/pkg/mustache"
)

// PathSegments is a relative path, stored without a leading separator, that
// renders as breadcrumbs. Referenced directly it renders as "/" followed by
// the path; as a section it renders once per ancestor Segment.
type PathSegments string

var _ mustache.Content = PathSegments("")

func (p PathSegments) String() string { return string(p) }

func (p PathSegments) IsTruthy() bool { return p != "" }

func (p PathSegments) RenderEscaped(enc mustache.Encoder) error {
	if p == "" {
		return nil
	}
	if err := enc.WriteUnescaped("/"); err != nil {
		return err
	}
	return enc.WriteEscaped(string(p))
}

func (p PathSegments) RenderUnescaped(enc mustache.Encoder) error {
	if p == "" {
		return nil
	}
	if err := enc.WriteUnescaped("/"); err != nil {
		return err
	}
	return enc.WriteUnescaped(string(p))
}

// RenderSection renders one iteration per path component. For "a/b/c" the
// contexts are {a, a}, {b, a/b} and {c, a/b/c}; a trailing separator does not
// produce an empty segment.
func (p PathSegments) RenderSection(section mustache.Section, enc mustache.Encoder) error {
	s := string(p)
	if s == "" {
		return nil
	}

	previous := 0
	for i := 0; i < len(s); i++ {
		if !os.IsPathSeparator(s[i]) {
			continue
		}
		if err := section.With(Segment{Name: s[previous:i], Full: s[:i]}).Render(enc); err != nil {
			return err
		}
		previous = i + 1
	}
	if previous < len(s) {
		return section.With(Segment{Name: s[previous:], Full: s}).Render(enc)
	}
	return nil
}

func (p PathSegments) RenderInverse(section mustache.Section, enc mustache.Encoder) error {
	return mustache.RenderIfFalsy(p, section, enc)
}

func (PathSegments) RenderFieldEscaped(uint64, string, mustache.Encoder) (bool, error) {
	return false, nil
}

func (PathSegments) RenderFieldUnescaped(uint64, string, mustache.Encoder) (bool, error) {
	return false, nil
}

func (PathSegments) RenderFieldSection(uint64, string, mustache.Section, mustache.Encoder) (bool, error) {
	return false, nil
}

func (PathSegments) RenderFieldInverse(uint64, string, mustache.Section, mustache.Encoder) (bool, error) {
	return false, nil
}

// Segment is one breadcrumb entry: the component Name and the Full path up
// to and including it.
type Segment struct {
	Name string
	Full string
}

var (
	hashName = mustache.Hash("name")
	hashFull = mustache.Hash("full")
)

var _ mustache.Content = Segment{}

func (s Segment) field(hash uint64, name string) (mustache.String, bool) {
	switch {
	case hash == hashName && name == "name":
		return mustache.String(s.Name), true
	case hash == hashFull && name == "full":
		return mustache.String(s.Full), true
	default:
		return "", false
	}
}

func (s Segment) IsTruthy() bool { return true }

func (s Segment) RenderEscaped(mustache.Encoder) error { return nil }

func (s Segment) RenderUnescaped(mustache.Encoder) error { return nil }

func (s Segment) RenderSection(section mustache.Section, enc mustache.Encoder) error {
	return section.With(s).Render(enc)
}

func (s Segment) RenderInverse(mustache.Section, mustache.Encoder) error { return nil }

func (s Segment) RenderFieldEscaped(hash uint64, name string, enc mustache.Encoder) (bool, error) {
	f, ok := s.field(hash, name)
	if !ok {
		return false, nil
	}
	return true, f.RenderEscaped(enc)
}

func (s Segment) RenderFieldUnescaped(hash uint64, name string, enc mustache.Encoder) (bool, error) {
	f, ok := s.field(hash, name)
	if !ok {
		return false, nil
	}
	return true, f.RenderUnescaped(enc)
}

func (s Segment) RenderFieldSection(hash uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	f, ok := s.field(hash, name)
	if !ok {
		return false, nil
	}
	return true, f.RenderSection(section, enc)
}

func (s Segment) RenderFieldInverse(hash uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	f, ok := s.field(hash, name)
	if !ok {
		return false, nil
	}
	return true, f.RenderInverse(section, enc)
}
