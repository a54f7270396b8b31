package persona

import (
	"fmt"

	"github.com/samber/lo"
)

// Catalog is a fixed, ordered mapping from persona id to Persona. It has no
// mutating methods; build a new Catalog to change the roster.
type Catalog struct {
	order    []string
	personas map[string]Persona
}

// NewCatalog validates and indexes the given personas in order.
// Duplicate ids return ErrPersonaExists.
func NewCatalog(personas ...Persona) (*Catalog, error) {
	if len(personas) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		order:    make([]string, 0, len(personas)),
		personas: make(map[string]Persona, len(personas)),
	}

	for _, p := range personas {
		p = p.Normalized()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.personas[p.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrPersonaExists, p.ID)
		}
		c.personas[p.ID] = p
		c.order = append(c.order, p.ID)
	}

	return c, nil
}

// MustCatalog is NewCatalog for static rosters; it panics on error.
func MustCatalog(personas ...Persona) *Catalog {
	c, err := NewCatalog(personas...)
	if err != nil {
		panic(fmt.Sprintf("persona catalog: %v", err))
	}
	return c
}

// Get returns the persona with the given id.
func (c *Catalog) Get(id string) (Persona, error) {
	p, exists := c.personas[id]
	if !exists {
		return Persona{}, fmt.Errorf("%w: %s", ErrPersonaNotFound, id)
	}
	return p.Normalized(), nil
}

// Has reports whether id is defined.
func (c *Catalog) Has(id string) bool {
	_, exists := c.personas[id]
	return exists
}

// IDs returns persona ids in definition order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// List returns the personas in definition order.
func (c *Catalog) List() []Persona {
	return lo.Map(c.order, func(id string, _ int) Persona {
		return c.personas[id].Normalized()
	})
}

// Len returns the number of personas.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Resolve checks that every id is defined, returning ErrPersonaNotFound
// naming the unknown ids otherwise.
func (c *Catalog) Resolve(ids []string) error {
	unknown := lo.Uniq(lo.Reject(ids, func(id string, _ int) bool {
		return c.Has(id)
	}))
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %v", ErrPersonaNotFound, unknown)
	}
	return nil
}
