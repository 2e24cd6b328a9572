package launch

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var builtinTemplates embed.FS

// Template is a named starting point for a preset. The file stem is the
// template name; extra templates dropped into a user directory as
// <name>.yaml shadow builtins of the same name.
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Preset      Preset `yaml:"preset"`
}

// Names of the builtin templates, in the order init writes them.
var builtinOrder = []string{"train-diffusion", "train-dit", "visualize-dataset"}

// LoadTemplate resolves name against userDir (when non-empty) and then
// the builtins.
func LoadTemplate(name, userDir string) (Template, error) {
	if userDir != "" {
		path := filepath.Join(userDir, name+".yaml")
		data, err := os.ReadFile(path)
		if err == nil {
			return parseTemplate(path, name, data)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return Template{}, err
		}
	}
	data, err := builtinTemplates.ReadFile("templates/" + name + ".yaml")
	if err != nil {
		return Template{}, fmt.Errorf("unknown template %q", name)
	}
	return parseTemplate(name, name, data)
}

// Templates lists every available template sorted by name, with user
// directory entries shadowing builtins.
func Templates(userDir string) ([]Template, error) {
	byName := map[string]Template{}

	entries, err := fs.ReadDir(builtinTemplates, "templates")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".yaml")
		data, err := builtinTemplates.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, err
		}
		t, err := parseTemplate(e.Name(), name, data)
		if err != nil {
			return nil, err
		}
		byName[name] = t
	}

	if userDir != "" {
		entries, err := os.ReadDir(userDir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ".yaml")
			path := filepath.Join(userDir, e.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			t, err := parseTemplate(path, name, data)
			if err != nil {
				return nil, err
			}
			byName[name] = t
		}
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Template, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out, nil
}

// StarterFile builds the document written by init: one preset per
// builtin template, in a fixed order.
func StarterFile() (File, error) {
	f := File{Version: DefaultVersion, Configurations: []Preset{}}
	for _, name := range builtinOrder {
		t, err := LoadTemplate(name, "")
		if err != nil {
			return File{}, err
		}
		f.Configurations = append(f.Configurations, t.Preset)
	}
	return f, nil
}

func parseTemplate(src, name string, data []byte) (Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("parsing template %s: %w", src, err)
	}
	if t.Name == "" {
		t.Name = name
	}
	return t, nil
}
