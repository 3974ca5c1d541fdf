package entitydef

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
	"github.com/reallyoldfogie/wows-replay-go/schema"
)

var log = logging.WithComponent("entitydef")

// ErrMissingDefinitions is returned when a version directory or one of the
// files it must contain does not exist.
var ErrMissingDefinitions = errors.New("entitydef: missing definitions")

const (
	entitiesFile   = "entities.xml"
	entityDefsDir  = "entity_defs"
	interfacesDir  = "interfaces"
	aliasFile      = "alias.xml"
	defExtension   = ".def"
	clientEntities = "ClientServerEntities"
)

// definition collects the members declared by one .def file and the
// interfaces it implements.
type definition struct {
	properties    []Property
	baseMethods   []Method
	cellMethods   []Method
	clientMethods []Method
}

func (d *definition) merge(o *definition) {
	d.properties = append(d.properties, o.properties...)
	d.baseMethods = append(d.baseMethods, o.baseMethods...)
	d.cellMethods = append(d.cellMethods, o.cellMethods...)
	d.clientMethods = append(d.clientMethods, o.clientMethods...)
}

// ScriptsDir returns the scripts directory of version below root.
func ScriptsDir(version Version, root string) string {
	return filepath.Join(root, version.DirName(), "scripts")
}

// LoadCatalog loads the entity specifications of version from the
// definitions root. Entities are returned in the order entities.xml lists
// them. Any missing file fails the whole load.
func LoadCatalog(version Version, root string) ([]EntitySpec, error) {
	scripts := ScriptsDir(version, root)
	if _, err := os.Stat(scripts); err != nil {
		return nil, fmt.Errorf("%w: version %s: %v", ErrMissingDefinitions, version, err)
	}

	entities, err := readEntityList(filepath.Join(scripts, entitiesFile))
	if err != nil {
		return nil, err
	}

	defsDir := filepath.Join(scripts, entityDefsDir)
	aliases, err := LoadAliases(filepath.Join(defsDir, aliasFile), nil)
	if err != nil {
		return nil, missing(err)
	}

	specs := make([]EntitySpec, 0, len(entities))
	for _, name := range entities {
		def, err := loadDefinition(filepath.Join(defsDir, name+defExtension), defsDir, aliases, map[string]bool{})
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", name, err)
		}
		specs = append(specs, buildSpec(name, def))
	}

	log.WithFields(logrus.Fields{
		"version":  version.String(),
		"entities": len(specs),
		"aliases":  len(aliases),
	}).Info("loaded entity catalog")
	return specs, nil
}

func missing(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrMissingDefinitions, err)
	}
	return err
}

func readEntityList(path string) ([]string, error) {
	root, err := ParseXMLFile(path)
	if err != nil {
		return nil, missing(err)
	}
	list := root.Child(clientEntities)
	if list == nil {
		return nil, fmt.Errorf("%s: no %s element", path, clientEntities)
	}
	var names []string
	for _, e := range list.Children() {
		names = append(names, e.Name())
	}
	return names, nil
}

// loadDefinition parses a .def file and the interfaces it implements.
// Interface members precede the file's own members. An interface is
// included at most once per entity, which also stops implementation cycles.
func loadDefinition(path, defsDir string, aliases schema.Aliases, seen map[string]bool) (*definition, error) {
	if seen[path] {
		log.WithField("path", path).Debug("interface already included")
		return &definition{}, nil
	}
	seen[path] = true

	root, err := ParseXMLFile(path)
	if err != nil {
		return nil, missing(err)
	}

	if local := root.Child("Aliases"); local != nil {
		aliases = CompileAliases(local, aliases)
	}

	def := &definition{}
	if impl := root.Child("Implements"); impl != nil {
		for _, iface := range impl.Children() {
			name := strings.TrimSpace(iface.Text())
			if name == "" {
				continue
			}
			ifacePath := filepath.Join(defsDir, interfacesDir, name+defExtension)
			sub, err := loadDefinition(ifacePath, defsDir, aliases, seen)
			if err != nil {
				return nil, fmt.Errorf("interface %s: %w", name, err)
			}
			def.merge(sub)
		}
	}

	own := &definition{
		properties:    parseProperties(root.Child("Properties"), aliases),
		baseMethods:   parseMethods(root.Child("BaseMethods"), aliases),
		cellMethods:   parseMethods(root.Child("CellMethods"), aliases),
		clientMethods: parseMethods(root.Child("ClientMethods"), aliases),
	}
	def.merge(own)
	return def, nil
}

func parseProperties(node schema.Node, aliases schema.Aliases) []Property {
	if node == nil {
		return nil
	}
	var props []Property
	for _, p := range node.Children() {
		typeElem := p.Child("Type")
		if typeElem == nil {
			continue
		}
		prop := Property{
			Name: p.Name(),
			Type: schema.CompileType(typeElem, aliases),
		}
		if flags := p.Child("Flags"); flags != nil {
			prop.Flag = ParseFlag(flags.Text())
		}
		props = append(props, prop)
	}
	return props
}

func parseMethods(node schema.Node, aliases schema.Aliases) []Method {
	if node == nil {
		return nil
	}
	var methods []Method
	for _, m := range node.Children() {
		method := Method{Name: m.Name()}
		for _, c := range m.Children() {
			switch c.Name() {
			case "Arg":
				method.Args = append(method.Args, Arg{Type: schema.CompileType(c, aliases)})
			case "Args":
				for _, named := range c.Children() {
					method.Args = append(method.Args, Arg{
						Name: named.Name(),
						Type: schema.CompileType(named, aliases),
					})
				}
			}
		}
		methods = append(methods, method)
	}
	return methods
}

func buildSpec(name string, def *definition) EntitySpec {
	spec := EntitySpec{
		Name:          name,
		BaseMethods:   def.baseMethods,
		CellMethods:   def.cellMethods,
		ClientMethods: def.clientMethods,
		AllProperties: def.properties,
	}

	for _, p := range def.properties {
		if p.Flag.IsClient() {
			spec.ClientProperties = append(spec.ClientProperties, p)
			if p.Flag != FlagBaseAndClient {
				spec.ClientPropertiesInternal = append(spec.ClientPropertiesInternal, p)
			}
		}
		if p.Flag.IsCell() {
			spec.CellProperties = append(spec.CellProperties, p)
		}
		if p.Flag.IsBase() {
			spec.BaseProperties = append(spec.BaseProperties, p)
		}
	}

	sortMethods(spec.BaseMethods)
	sortMethods(spec.CellMethods)
	sortMethods(spec.ClientMethods)
	sortProperties(spec.ClientPropertiesInternal)
	return spec
}
