package entitydef

import (
	"github.com/reallyoldfogie/wows-replay-go/schema"
)

// CompileAliases compiles every child of node into an alias named after the
// child tag. Children are compiled in document order, each one against base
// plus the aliases before it. base is not modified.
func CompileAliases(node schema.Node, base schema.Aliases) schema.Aliases {
	aliases := base.Clone()
	for _, child := range node.Children() {
		aliases[child.Name()] = schema.CompileType(child, aliases)
	}
	return aliases
}

// LoadAliases parses an alias file and compiles it on top of base.
func LoadAliases(path string, base schema.Aliases) (schema.Aliases, error) {
	root, err := ParseXMLFile(path)
	if err != nil {
		return nil, err
	}
	return CompileAliases(root, base), nil
}
