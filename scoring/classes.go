package scoring

import (
	_ "embed"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultWeight applies to class ids missing from the table.
const DefaultWeight = 1.0

//go:embed classes.yaml
var defaultClassesYAML []byte

// Class is one detector label and its scoring weight.
type Class struct {
	ID     int     `yaml:"id" json:"id"`
	Label  string  `yaml:"label" json:"label"`
	Weight float64 `yaml:"weight" json:"weight"`
}

type classFile struct {
	Classes []Class `yaml:"classes"`
}

// ClassTable maps class ids to labels and weights. It is built once and
// never modified, so it is safe to share between requests.
type ClassTable struct {
	classes map[int]Class
}

// DefaultClassTable returns the embedded ten-class restroom table.
func DefaultClassTable() *ClassTable {
	t, err := parseClassTable(defaultClassesYAML)
	if err != nil {
		panic(errors.Wrap(err, "embedded class table is invalid"))
	}
	return t
}

// LoadClassTable reads a class table in the embedded YAML format.
func LoadClassTable(r io.Reader) (*ClassTable, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read class table")
	}
	return parseClassTable(b)
}

// LoadClassTableFile loads the table from path, or returns the default
// table when path is empty.
func LoadClassTableFile(path string) (*ClassTable, error) {
	if path == "" {
		return DefaultClassTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open class table: %s", path)
	}
	defer f.Close()
	return LoadClassTable(f)
}

func parseClassTable(b []byte) (*ClassTable, error) {
	var cf classFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, errors.Wrap(err, "failed to parse class table")
	}
	if len(cf.Classes) == 0 {
		return nil, errors.New("class table has no classes")
	}

	classes := make(map[int]Class, len(cf.Classes))
	for _, c := range cf.Classes {
		if c.Label == "" {
			return nil, errors.Errorf("class %d has no label", c.ID)
		}
		if _, dup := classes[c.ID]; dup {
			return nil, errors.Errorf("duplicate class id %d", c.ID)
		}
		classes[c.ID] = c
	}
	return &ClassTable{classes: classes}, nil
}

// Weight returns the weight for id, or DefaultWeight if id is unknown.
func (t *ClassTable) Weight(id int) float64 {
	if c, ok := t.classes[id]; ok {
		return c.Weight
	}
	return DefaultWeight
}

// Label returns the label for id, or the decimal id if unknown.
func (t *ClassTable) Label(id int) string {
	if c, ok := t.classes[id]; ok {
		return c.Label
	}
	return strconv.Itoa(id)
}

// Has reports whether id is a known class.
func (t *ClassTable) Has(id int) bool {
	_, ok := t.classes[id]
	return ok
}

// Len reports the number of known classes.
func (t *ClassTable) Len() int {
	return len(t.classes)
}

// Classes returns a copy of the table ordered by id.
func (t *ClassTable) Classes() []Class {
	out := make([]Class, 0, len(t.classes))
	for _, c := range t.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
