package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// def is the package-level catalogue built from the embedded data at init.
var def *Catalog

func init() {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		panic(err)
	}
	c, err := Load(sub)
	if err != nil {
		panic(fmt.Sprintf("embedded catalogue: %v", err))
	}
	def = c
}

// Default returns the embedded catalogue.
func Default() *Catalog {
	return def
}

// DomainBlueprint is a weighted exam domain. Weight is a relative integer.
type DomainBlueprint struct {
	Number string `yaml:"number" json:"domainNumber"`
	Label  string `yaml:"label" json:"domainLabel"`
	Weight int    `yaml:"weight" json:"weight"`
}

// Major returns the leading component of the domain number ("3" for "3.0").
func (d DomainBlueprint) Major() string {
	major, _, _ := strings.Cut(d.Number, ".")
	return major
}

// Objective is one exam objective with its content bullets.
type Objective struct {
	ID      string   `yaml:"id"`
	Domain  string   `yaml:"domain"`
	Title   string   `yaml:"title"`
	Bullets []string `yaml:"bullets"`
}

// OrderTemplate is a curated step sequence, listed in its correct order.
type OrderTemplate struct {
	Title  string   `yaml:"title"`
	Prompt string   `yaml:"prompt"`
	Steps  []string `yaml:"steps"`
}

// MatchPair is one correct left/right pairing.
type MatchPair struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// MatchTemplate is a curated set of correct pairings.
type MatchTemplate struct {
	Title  string      `yaml:"title"`
	Prompt string      `yaml:"prompt"`
	Pairs  []MatchPair `yaml:"pairs"`
}

// Core is one exam core: its blueprint, objectives and PBQ templates.
type Core struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Code           string            `yaml:"code"`
	Length         int               `yaml:"length"`
	Domains        []DomainBlueprint `yaml:"domains"`
	Objectives     []Objective       `yaml:"objectives"`
	OrderTemplates []OrderTemplate   `yaml:"order_templates"`
	MatchTemplates []MatchTemplate   `yaml:"match_templates"`
}

// Domain returns the blueprint entry for a domain number.
func (c *Core) Domain(number string) (DomainBlueprint, bool) {
	for _, d := range c.Domains {
		if d.Number == number {
			return d, true
		}
	}
	return DomainBlueprint{}, false
}

// Objective returns an objective by ID.
func (c *Core) Objective(id string) (Objective, bool) {
	for _, o := range c.Objectives {
		if o.ID == id {
			return o, true
		}
	}
	return Objective{}, false
}

// ObjectiveIDs returns the objective IDs of a domain in catalogue order.
func (c *Core) ObjectiveIDs(domainNumber string) []string {
	var ids []string
	for _, o := range c.Objectives {
		if o.Domain == domainNumber {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Catalog holds every known exam core.
type Catalog struct {
	cores map[string]*Core
}

// New builds a catalogue from already-parsed cores.
func New(cores ...*Core) (*Catalog, error) {
	c := &Catalog{cores: make(map[string]*Core, len(cores))}
	for _, core := range cores {
		if core.ID == "" {
			return nil, fmt.Errorf("core without id")
		}
		if _, dup := c.cores[core.ID]; dup {
			return nil, fmt.Errorf("duplicate core %q", core.ID)
		}
		c.cores[core.ID] = core
	}
	return c, nil
}

// Load parses every *.yaml file at the root of fsys as one core.
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no catalogue files found")
	}
	sort.Strings(names)

	cores := make([]*Core, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var core Core
		if err := yaml.Unmarshal(data, &core); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if core.ID == "" {
			core.ID = strings.TrimSuffix(path.Base(name), ".yaml")
		}
		cores = append(cores, &core)
	}
	return New(cores...)
}

// Core returns a core by ID.
func (c *Catalog) Core(id string) (*Core, error) {
	core, ok := c.cores[id]
	if !ok {
		return nil, fmt.Errorf("unknown exam core %q", id)
	}
	return core, nil
}

// CoreIDs returns all core IDs, sorted.
func (c *Catalog) CoreIDs() []string {
	ids := make([]string, 0, len(c.cores))
	for id := range c.cores {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Objective looks up an objective of a core.
func (c *Catalog) Objective(core, id string) (Objective, error) {
	cr, err := c.Core(core)
	if err != nil {
		return Objective{}, err
	}
	o, ok := cr.Objective(id)
	if !ok {
		return Objective{}, fmt.Errorf("objective %q not found in %s", id, core)
	}
	return o, nil
}

// ObjectiveIDs lists the objective IDs of a core's domain.
func (c *Catalog) ObjectiveIDs(core, domainNumber string) ([]string, error) {
	cr, err := c.Core(core)
	if err != nil {
		return nil, err
	}
	return cr.ObjectiveIDs(domainNumber), nil
}
