package entitydef

import (
	"sort"
	"strings"

	"github.com/reallyoldfogie/wows-replay-go/schema"
)

// Flag is the distribution flag of a property.
type Flag uint8

const (
	FlagUnknown Flag = iota
	FlagBase
	FlagBaseAndClient
	FlagCellPrivate
	FlagCellPublic
	FlagCellPublicAndOwn
	FlagOwnClient
	FlagAllClients
	FlagOtherClients
)

var flagNames = map[string]Flag{
	"BASE":                FlagBase,
	"BASE_AND_CLIENT":     FlagBaseAndClient,
	"CELL_PRIVATE":        FlagCellPrivate,
	"CELL_PUBLIC":         FlagCellPublic,
	"CELL_PUBLIC_AND_OWN": FlagCellPublicAndOwn,
	"OWN_CLIENT":          FlagOwnClient,
	"ALL_CLIENTS":         FlagAllClients,
	"OTHER_CLIENTS":       FlagOtherClients,
}

// ParseFlag maps a Flags element text to a Flag.
func ParseFlag(s string) Flag {
	return flagNames[strings.ToUpper(strings.TrimSpace(s))]
}

func (f Flag) String() string {
	for name, v := range flagNames {
		if v == f {
			return name
		}
	}
	return "UNKNOWN"
}

// IsClient reports whether clients receive the property.
func (f Flag) IsClient() bool {
	switch f {
	case FlagAllClients, FlagOtherClients, FlagOwnClient, FlagCellPublicAndOwn, FlagBaseAndClient:
		return true
	}
	return false
}

// IsCell reports whether the property lives only on the cell.
func (f Flag) IsCell() bool {
	return f == FlagCellPrivate || f == FlagCellPublic
}

// IsBase reports whether the property lives on the base.
func (f Flag) IsBase() bool {
	return f == FlagBase || f == FlagBaseAndClient
}

// Property is a declared entity property.
type Property struct {
	Name string
	Type schema.ArgType
	Flag Flag
}

// Arg is one method argument.
type Arg struct {
	Name string
	Type schema.ArgType
}

// Method is a remote method of an entity.
type Method struct {
	Name string
	Args []Arg
}

// ArgsSize is the static size of all arguments. bounded is false when any
// argument is unbounded.
func (m *Method) ArgsSize() (size int, bounded bool) {
	for _, a := range m.Args {
		n, ok := schema.StaticSize(a.Type)
		if !ok {
			return 0, false
		}
		size += n
	}
	return size, true
}

// EntitySpec describes one entity type. The method slices and
// ClientPropertiesInternal are in wire index order.
type EntitySpec struct {
	Name string

	BaseMethods   []Method
	CellMethods   []Method
	ClientMethods []Method

	BaseProperties []Property
	CellProperties []Property

	// AllProperties keeps declaration order.
	AllProperties            []Property
	ClientProperties         []Property
	ClientPropertiesInternal []Property
}

// ClientMethodByIndex returns the client method with wire index i.
func (e *EntitySpec) ClientMethodByIndex(i int) (*Method, bool) {
	if i < 0 || i >= len(e.ClientMethods) {
		return nil, false
	}
	return &e.ClientMethods[i], true
}

// ClientMethod returns the wire index and declaration of a client method.
func (e *EntitySpec) ClientMethod(name string) (int, *Method, bool) {
	for i := range e.ClientMethods {
		if e.ClientMethods[i].Name == name {
			return i, &e.ClientMethods[i], true
		}
	}
	return -1, nil, false
}

// ClientPropertyByIndex returns the client property with wire index i.
func (e *EntitySpec) ClientPropertyByIndex(i int) (*Property, bool) {
	if i < 0 || i >= len(e.ClientPropertiesInternal) {
		return nil, false
	}
	return &e.ClientPropertiesInternal[i], true
}

// ClientProperty returns the wire index and declaration of a client property.
func (e *EntitySpec) ClientProperty(name string) (int, *Property, bool) {
	for i := range e.ClientPropertiesInternal {
		if e.ClientPropertiesInternal[i].Name == name {
			return i, &e.ClientPropertiesInternal[i], true
		}
	}
	return -1, nil, false
}

func sortKey(size int, bounded bool) int {
	if !bounded {
		// after every bounded size
		return int(^uint(0) >> 1)
	}
	return size
}

func sortMethods(methods []Method) {
	sort.SliceStable(methods, func(i, j int) bool {
		return sortKey(methods[i].ArgsSize()) < sortKey(methods[j].ArgsSize())
	})
}

func sortProperties(props []Property) {
	sort.SliceStable(props, func(i, j int) bool {
		return sortKey(schema.StaticSize(props[i].Type)) < sortKey(schema.StaticSize(props[j].Type))
	})
}
