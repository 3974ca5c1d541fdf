package schema

// tnode is an in-memory Node for tests.
type tnode struct {
	name     string
	text     string
	children []*tnode
}

func el(name, text string, children ...*tnode) *tnode {
	return &tnode{name: name, text: text, children: children}
}

func (n *tnode) Name() string { return n.name }
func (n *tnode) Text() string { return n.text }

func (n *tnode) Child(tag string) Node {
	for _, c := range n.children {
		if c.name == tag {
			return c
		}
	}
	return nil
}

func (n *tnode) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}
