package entitydef

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reallyoldfogie/wows-replay-go/schema"
)

// element is the XML backed schema.Node.
type element struct {
	name     string
	text     strings.Builder
	sawChild bool
	children []*element
}

func (e *element) Name() string { return e.name }

// Text returns the character data that precedes the first child element.
func (e *element) Text() string { return e.text.String() }

func (e *element) Child(tag string) schema.Node {
	for _, c := range e.children {
		if c.name == tag {
			return c
		}
	}
	return nil
}

func (e *element) Children() []schema.Node {
	out := make([]schema.Node, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

// ParseXML reads one XML document and returns its root element.
func ParseXML(r io.Reader) (schema.Node, error) {
	d := xml.NewDecoder(r)
	// definition files are hand written, do not reject unknown entities
	d.Strict = false

	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
				parent.sawChild = true
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse xml: unexpected </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if !top.sawChild {
				top.text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parse xml: no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("parse xml: unclosed <%s>", stack[len(stack)-1].name)
	}
	return root, nil
}

// ParseXMLFile parses the XML file at path.
func ParseXMLFile(path string) (schema.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := ParseXML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}
