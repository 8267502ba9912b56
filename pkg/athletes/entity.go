package athletes

import (
	"sort"
	"strings"

	"github.com/agentstation/poolmatch/pkg/errors"
)

// Entity is one canonical athlete identity: an authoritative identifier,
// the currently-accepted attribute values, and the set of observed name
// strings known to refer to it.
type Entity struct {
	ID        int64    `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	BirthDate *Date    `yaml:"birthdate,omitempty" json:"birthdate,omitempty"`
	Gender    Gender   `yaml:"gender,omitempty" json:"gender,omitempty"`
	Aliases   []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Names returns the current name followed by all known aliases.
func (e *Entity) Names() []string {
	names := make([]string, 0, len(e.Aliases)+1)
	names = append(names, e.Name)
	names = append(names, e.Aliases...)
	return names
}

// Record returns the entity viewed as an athlete record, the shape the
// scorer compares against.
func (e *Entity) Record() Athlete {
	return Athlete{
		ID:        e.ID,
		FullName:  e.Name,
		BirthDate: e.BirthDate,
		Gender:    e.Gender,
		Source:    "canonical",
	}
}

// Pool is the canonical athlete store a matching pass runs against. It
// enforces the alias-uniqueness invariant: a given alias string,
// case-insensitively, points to at most one entity at a time.
//
// A Pool is not safe for concurrent mutation. During a matching pass it is
// frozen into an immutable snapshot; alias additions and promotions are
// buffered by the engine and applied by the caller after the pass.
type Pool struct {
	entities map[int64]*Entity
	aliases  map[string]int64
	nextID   int64
	frozen   bool
}

// NewPool returns an empty canonical pool.
func NewPool() *Pool {
	return &Pool{
		entities: make(map[int64]*Entity),
		aliases:  make(map[string]int64),
		nextID:   1,
	}
}

// AliasKey folds an alias string the way the pool's uniqueness invariant
// compares them: trimmed and case-folded.
func AliasKey(alias string) string {
	return strings.ToUpper(strings.TrimSpace(alias))
}

// Freeze marks the pool read-only. A matching pass freezes its pool
// snapshot so that any mutation attempted mid-pass fails loudly instead
// of interleaving with scoring.
func (p *Pool) Freeze() {
	p.frozen = true
}

// Thaw lifts the read-only mark, allowing the caller to commit buffered
// changes after the pass.
func (p *Pool) Thaw() {
	p.frozen = false
}

// Frozen reports whether the pool is currently read-only.
func (p *Pool) Frozen() bool {
	return p.frozen
}

// Add registers a canonical entity. An entity with ID zero is assigned the
// next free identifier. The entity's name and every alias are claimed in
// the alias table; a claim already held by a different entity fails with
// an AliasConflictError and leaves the pool unchanged.
func (p *Pool) Add(e Entity) (*Entity, error) {
	if p.frozen {
		return nil, errors.NewResourceError("add", "entity", e.ID, errors.ErrReadOnly)
	}
	if e.ID == 0 {
		e.ID = p.nextID
	}
	if _, exists := p.entities[e.ID]; exists {
		return nil, errors.NewResourceError("add", "entity", e.ID, errors.ErrAlreadyExists)
	}

	// Check every claim before taking any, so a conflict cannot leave a
	// half-registered entity behind.
	for _, name := range e.Names() {
		key := AliasKey(name)
		if key == "" {
			continue
		}
		if owner, taken := p.aliases[key]; taken && owner != e.ID {
			return nil, &errors.AliasConflictError{Alias: name, OwnerID: owner, EntityID: e.ID}
		}
	}
	for _, name := range e.Names() {
		if key := AliasKey(name); key != "" {
			p.aliases[key] = e.ID
		}
	}

	stored := e
	p.entities[e.ID] = &stored
	if e.ID >= p.nextID {
		p.nextID = e.ID + 1
	}
	return &stored, nil
}

// Promote creates a new canonical entity from a record that found no
// acceptable match. The record's attribute values become the entity's
// current values and its name string becomes the first alias claim.
func (p *Pool) Promote(a *Athlete) (*Entity, error) {
	if !a.HasName() {
		return nil, errors.NewValidationError("name", a.FullName, "record has no usable name")
	}
	return p.Add(Entity{
		Name:      a.Name(),
		BirthDate: a.BirthDate,
		Gender:    a.Gender,
	})
}

// AddAlias attaches an observed name string to an entity. Attaching an
// alias the entity already holds is a no-op; an alias held by a different
// entity is a conflict.
func (p *Pool) AddAlias(id int64, alias string) error {
	if p.frozen {
		return errors.NewResourceError("alias", "entity", id, errors.ErrReadOnly)
	}
	e, ok := p.entities[id]
	if !ok {
		return errors.NewNotFoundError("entity", id)
	}
	key := AliasKey(alias)
	if key == "" {
		return errors.NewValidationError("alias", alias, "cannot be empty")
	}
	if owner, taken := p.aliases[key]; taken {
		if owner == id {
			return nil
		}
		return &errors.AliasConflictError{Alias: alias, OwnerID: owner, EntityID: id}
	}
	p.aliases[key] = id
	e.Aliases = append(e.Aliases, alias)
	return nil
}

// Get returns the entity with the given identifier.
func (p *Pool) Get(id int64) (*Entity, bool) {
	e, ok := p.entities[id]
	return e, ok
}

// ByAlias resolves an observed name string to its entity, if any alias
// matches case-insensitively.
func (p *Pool) ByAlias(name string) (*Entity, bool) {
	id, ok := p.aliases[AliasKey(name)]
	if !ok {
		return nil, false
	}
	return p.entities[id], true
}

// List returns all entities ordered by identifier.
func (p *Pool) List() []*Entity {
	out := make([]*Entity, 0, len(p.entities))
	for _, e := range p.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of canonical entities in the pool.
func (p *Pool) Len() int {
	return len(p.entities)
}
