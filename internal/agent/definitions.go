package agent

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed definitions.yaml
var defaultDefinitions []byte

// Definition configures one LLM agent.
type Definition struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Model       string   `yaml:"model"`
	Instruction string   `yaml:"instruction"`
	Tools       []string `yaml:"tools"`
	OutputKey   string   `yaml:"output_key"`
}

// Definitions indexes agent definitions by name.
type Definitions map[string]Definition

// LoadDefinitions reads definitions from path, or the embedded defaults when
// path is empty.
func LoadDefinitions(path string) (Definitions, error) {
	data := defaultDefinitions
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read agent definitions: %w", err)
		}
		data = b
	}
	return ParseDefinitions(data)
}

func ParseDefinitions(data []byte) (Definitions, error) {
	var doc struct {
		Agents []Definition `yaml:"agents"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse agent definitions: %w", err)
	}
	defs := make(Definitions, len(doc.Agents))
	for _, d := range doc.Agents {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, fmt.Errorf("agent definition without name")
		}
		if _, dup := defs[d.Name]; dup {
			return nil, fmt.Errorf("duplicate agent definition %q", d.Name)
		}
		defs[d.Name] = d
	}
	return defs, nil
}

func (d Definitions) Get(name string) (Definition, error) {
	def, ok := d[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown agent %q", name)
	}
	return def, nil
}

// Names returns the defined agent names, sorted.
func (d Definitions) Names() []string {
	out := make([]string, 0, len(d))
	for name := range d {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
