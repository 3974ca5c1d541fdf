package schema

// Node is one element of a definition tree.
type Node interface {
	// Name is the element tag.
	Name() string
	// Text is the character data of the element, untrimmed.
	Text() string
	// Child returns the first child element with the given tag, or nil.
	Child(tag string) Node
	// Children returns the child elements in document order.
	Children() []Node
}
