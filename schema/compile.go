package schema

import (
	"strconv"
	"strings"

	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
)

var log = logging.WithComponent("schema")

// CompileType turns a definition node into a descriptor.
//
// The node text is trimmed and upper-cased, then matched against the
// primitive table, the ARRAY, FIXED_DICT, TUPLE and USER_TYPE keywords and
// finally the alias table. Anything else compiles to Unknown.
func CompileType(node Node, aliases Aliases) ArgType {
	typeName := normalizeTypeName(node.Text())

	if k, ok := primitiveNames[typeName]; ok {
		return &Primitive{Kind: k}
	}

	switch typeName {
	case "ARRAY":
		arr := &ArrayType{}
		if of := node.Child("of"); of != nil {
			arr.Elem = CompileType(of, aliases)
		}
		if size := node.Child("size"); size != nil {
			if n, ok := parseSize(size.Text()); ok {
				arr.Size = n
				arr.Fixed = true
			}
		}
		return arr

	case "FIXED_DICT":
		return compileFixedDict(node, aliases)

	case "TUPLE":
		tuple := &Tuple{}
		if of := node.Child("of"); of != nil {
			tuple.Elem = CompileType(of, aliases)
		}
		if size := node.Child("size"); size != nil {
			if n, ok := parseSize(size.Text()); ok {
				tuple.Size = n
			}
		}
		return tuple

	case "USER_TYPE":
		typeElem := node.Child("Type")
		if typeElem == nil {
			return &Primitive{Kind: KindBlob}
		}
		// The inner name is matched verbatim, and an alias hit is resolved
		// through the outer type name. Replays decoded so far depend on
		// exactly this lookup.
		text := typeElem.Text()
		if k, ok := primitiveNames[text]; ok {
			return &User{Inner: &Primitive{Kind: k}}
		}
		if _, ok := aliases[text]; ok {
			inner, found := aliases[typeName]
			if !found {
				inner = &Unknown{}
			}
			return &User{Inner: inner}
		}
	}

	if alias, ok := aliases[typeName]; ok {
		return alias
	}

	log.WithField("type", typeName).Debug("unresolved type name")
	return &Unknown{}
}

func compileFixedDict(node Node, aliases Aliases) *FixedDict {
	dict := &FixedDict{}

	if allowNone := node.Child("AllowNone"); allowNone != nil {
		v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(allowNone.Text())))
		if err != nil {
			log.WithField("value", allowNone.Text()).Error("failed to parse AllowNone of FIXED_DICT")
		} else {
			dict.AllowNone = v
		}
	}

	if props := node.Child("Properties"); props != nil {
		for _, prop := range props.Children() {
			typeElem := prop.Child("Type")
			if typeElem == nil {
				continue
			}
			dict.Properties = append(dict.Properties, Property{
				Name: prop.Name(),
				Type: CompileType(typeElem, aliases),
			})
		}
	}
	return dict
}

func normalizeTypeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func parseSize(s string) (int, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 31)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
