// Package scope implements the lexically nested scope stack with three
// independent name categories: ordinary identifiers, typedef aliases, and
// tags (struct/union names). Generalized from the teacher's flat
// global+function symbol table (symtab.go) into a genuine enter/exit
// environment stack, grounded on original_source's Scope{envs}/Env design.
package scope

import "github.com/cfront/cfront/ctype"

// SymKind distinguishes what an ordinary-namespace symbol denotes.
type SymKind int

const (
	KindVar SymKind = iota
	KindFunc
	KindEnumConst
)

// Symbol is an entry in the ordinary namespace.
type Symbol struct {
	Name  string
	Kind  SymKind
	Type  *ctype.Type
	Const int64 // for enum constants
}

// env holds the three namespaces for one nesting level.
type env struct {
	ordinary map[string]*Symbol
	typedefs map[string]*ctype.Type
	tags     map[string]*ctype.Type
}

func newEnv() *env {
	return &env{
		ordinary: make(map[string]*Symbol),
		typedefs: make(map[string]*ctype.Type),
		tags:     make(map[string]*ctype.Type),
	}
}

// Scope is a stack of environments; index 0 is the global (translation
// unit) environment, which lives for the whole compilation.
type Scope struct {
	envs []*env
}

// New creates a scope stack with just the global environment pushed.
func New() *Scope {
	s := &Scope{}
	s.Enter()
	return s
}

// Enter pushes a fresh environment, e.g. for a function body, compound
// statement, or for-loop header.
func (s *Scope) Enter() {
	s.envs = append(s.envs, newEnv())
}

// Exit pops the innermost environment. Callers must balance every Enter
// with an Exit (function bodies, blocks, for loops, record definitions).
func (s *Scope) Exit() {
	s.envs = s.envs[:len(s.envs)-1]
}

func (s *Scope) current() *env { return s.envs[len(s.envs)-1] }

// FindOrdinary walks outward from the innermost environment.
func (s *Scope) FindOrdinary(name string) (*Symbol, bool) {
	for i := len(s.envs) - 1; i >= 0; i-- {
		if sym, ok := s.envs[i].ordinary[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// FindOrdinaryCurrent looks only in the innermost environment, which is
// what redefinition checks need.
func (s *Scope) FindOrdinaryCurrent(name string) (*Symbol, bool) {
	sym, ok := s.current().ordinary[name]
	return sym, ok
}

// AddOrdinary inserts a new ordinary symbol into the current environment.
func (s *Scope) AddOrdinary(sym *Symbol) {
	s.current().ordinary[sym.Name] = sym
}

// FindTypedef walks outward for a typedef alias.
func (s *Scope) FindTypedef(name string) (*ctype.Type, bool) {
	for i := len(s.envs) - 1; i >= 0; i-- {
		if t, ok := s.envs[i].typedefs[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// AddTypedef registers a typedef alias in the current environment.
func (s *Scope) AddTypedef(name string, t *ctype.Type) {
	s.current().typedefs[name] = t
}

// FindTag walks outward in the tag namespace (struct/union names).
func (s *Scope) FindTag(name string) (*ctype.Type, bool) {
	for i := len(s.envs) - 1; i >= 0; i-- {
		if t, ok := s.envs[i].tags[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// FindTagCurrent looks only in the innermost environment.
func (s *Scope) FindTagCurrent(name string) (*ctype.Type, bool) {
	t, ok := s.current().tags[name]
	return t, ok
}

// AddTag registers a tag (struct/union) name in the current environment.
func (s *Scope) AddTag(name string, t *ctype.Type) {
	s.current().tags[name] = t
}

// IsGlobal reports whether the current environment is the translation
// unit's outermost scope.
func (s *Scope) IsGlobal() bool { return len(s.envs) == 1 }

// Depth returns the current nesting depth (1 at global scope).
func (s *Scope) Depth() int { return len(s.envs) }
