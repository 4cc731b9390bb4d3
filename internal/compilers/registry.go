package compilers

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// InvalidID is returned for compiler names the registry does not know.
// Backends reject it with a compile error.
const InvalidID = -1

// Placeholders substituted in CompileCmd.
const (
	SourcePlaceholder = "{src}"
	ExePlaceholder    = "{exe}"
)

type Compiler struct {
	Name string
	ID   int
	// CompileCmd is used by backends that compile through a command line.
	CompileCmd []string
}

// Command returns CompileCmd with placeholders replaced.
func (c Compiler) Command(sourcePath, exePath string) []string {
	r := strings.NewReplacer(SourcePlaceholder, sourcePath, ExePlaceholder, exePath)
	res := make([]string, len(c.CompileCmd))
	for i, arg := range c.CompileCmd {
		res[i] = r.Replace(arg)
	}
	return res
}

// Registry is a read-only compiler table. It is safe for concurrent use
// because nothing mutates it after New returns.
type Registry struct {
	byName map[string]Compiler
	byID   map[int]Compiler
}

func Defaults() []Compiler {
	return []Compiler{
		{Name: "gcc", ID: 0, CompileCmd: []string{"gcc", "-O2", "-std=c11", "-o", ExePlaceholder, SourcePlaceholder, "-lm"}},
		{Name: "g++", ID: 1, CompileCmd: []string{"g++", "-O2", "-std=c++17", "-o", ExePlaceholder, SourcePlaceholder}},
		{Name: "clang", ID: 2, CompileCmd: []string{"clang", "-O2", "-std=c11", "-o", ExePlaceholder, SourcePlaceholder, "-lm"}},
		{Name: "clang++", ID: 3, CompileCmd: []string{"clang++", "-O2", "-std=c++17", "-o", ExePlaceholder, SourcePlaceholder}},
	}
}

// New builds a registry from the defaults followed by extra. Later entries
// with the same name replace earlier ones.
func New(extra ...Compiler) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Compiler),
		byID:   make(map[int]Compiler),
	}
	for _, c := range append(Defaults(), extra...) {
		if c.Name == "" {
			return nil, fmt.Errorf("compiler with id %d has no name", c.ID)
		}
		if c.ID < 0 {
			return nil, fmt.Errorf("compiler %s: id must not be negative", c.Name)
		}
		if old, ok := r.byName[c.Name]; ok {
			delete(r.byID, old.ID)
		}
		if other, ok := r.byID[c.ID]; ok && other.Name != c.Name {
			return nil, fmt.Errorf("compiler id %d used by both %s and %s", c.ID, other.Name, c.Name)
		}
		r.byName[c.Name] = c
		r.byID[c.ID] = c
	}
	return r, nil
}

// ID resolves a compiler name, returning InvalidID when it is unknown.
func (r *Registry) ID(name string) int {
	c, ok := r.byName[name]
	if !ok {
		return InvalidID
	}
	return c.ID
}

func (r *Registry) ByID(id int) (Compiler, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Names returns the registered compiler names.
func (r *Registry) Names() mapset.Set[string] {
	names := mapset.NewThreadUnsafeSet[string]()
	for name := range r.byName {
		names.Add(name)
	}
	return names
}

// List returns the compilers ordered by id.
func (r *Registry) List() []Compiler {
	res := make([]Compiler, 0, len(r.byID))
	for _, c := range r.byID {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
