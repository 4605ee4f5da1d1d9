package mustache

import "fmt"

const maxPartialDepth = 32

// Section is a parsed block of a template together with the stack of contexts
// it is rendered against. Sections are values: With returns a new Section and
// never modifies the receiver, so a Section may be rendered any number of
// times.
type Section struct {
	nodes    []node
	stack    []Content
	partials Partials
	depth    int
}

// With returns a copy of the section with c pushed as the innermost context.
func (s Section) With(c Content) Section {
	stack := make([]Content, len(s.stack)+1)
	copy(stack, s.stack)
	stack[len(s.stack)] = c
	return Section{nodes: s.nodes, stack: stack, partials: s.partials, depth: s.depth}
}

// Render renders the section's block once against its current contexts.
func (s Section) Render(enc Encoder) error {
	return s.render(s.nodes, enc)
}

func (s Section) block(nodes []node) Section {
	return Section{nodes: nodes, stack: s.stack, partials: s.partials, depth: s.depth}
}

func (s Section) top() Content {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s Section) render(nodes []node, enc Encoder) error {
	for i := range nodes {
		n := &nodes[i]
		var err error
		switch n.kind {
		case nodeText:
			err = enc.WriteUnescaped(n.text)
		case nodeEscaped:
			err = s.renderVariable(n, enc, true)
		case nodeUnescaped:
			err = s.renderVariable(n, enc, false)
		case nodeSection:
			err = s.renderSection(n, enc)
		case nodeInverse:
			err = s.renderInverse(n, enc)
		case nodePartial:
			err = s.renderPartial(n, enc)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s Section) renderVariable(n *node, enc Encoder, escaped bool) error {
	if n.name == "." {
		c := s.top()
		if c == nil {
			return nil
		}
		if escaped {
			return c.RenderEscaped(enc)
		}
		return c.RenderUnescaped(enc)
	}
	for i := len(s.stack) - 1; i >= 0; i-- {
		var found bool
		var err error
		if escaped {
			found, err = s.stack[i].RenderFieldEscaped(n.hash, n.name, enc)
		} else {
			found, err = s.stack[i].RenderFieldUnescaped(n.hash, n.name, enc)
		}
		if err != nil || found {
			return err
		}
	}
	return nil
}

func (s Section) renderSection(n *node, enc Encoder) error {
	inner := s.block(n.children)
	if n.name == "." {
		if c := s.top(); c != nil {
			return c.RenderSection(inner, enc)
		}
		return nil
	}
	for i := len(s.stack) - 1; i >= 0; i-- {
		found, err := s.stack[i].RenderFieldSection(n.hash, n.name, inner, enc)
		if err != nil || found {
			return err
		}
	}
	return nil
}

func (s Section) renderInverse(n *node, enc Encoder) error {
	inner := s.block(n.children)
	if n.name == "." {
		if c := s.top(); c != nil {
			return c.RenderInverse(inner, enc)
		}
		return inner.Render(enc)
	}
	for i := len(s.stack) - 1; i >= 0; i-- {
		found, err := s.stack[i].RenderFieldInverse(n.hash, n.name, inner, enc)
		if err != nil || found {
			return err
		}
	}
	// A name missing from every context counts as falsy.
	return inner.Render(enc)
}

func (s Section) renderPartial(n *node, enc Encoder) error {
	if s.partials == nil {
		return nil
	}
	t, ok := s.partials.Partial(n.name)
	if !ok {
		return nil
	}
	if s.depth >= maxPartialDepth {
		return fmt.Errorf("%w: %s", ErrPartialDepth, n.name)
	}
	inner := s.block(t.nodes)
	inner.depth++
	return inner.Render(enc)
}
