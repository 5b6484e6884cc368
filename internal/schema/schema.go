// Package schema describes the queryable data model: entities with
// typed fields and associations. The SQL builder resolves property
// paths against a Schema, turning association steps into joins.
//
// Schemas are declared in YAML and loaded with Load; see the testdata
// files for the format.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nurkiewicz/partq/internal/clause"
)

// Field is one queryable column of an entity.
type Field struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column,omitempty"` // defaults to Name
	Type   string `yaml:"type"`
}

// Association is a navigable reference to another entity. Column on
// the owning table joins against TargetColumn on the target table
// (TargetColumn defaults to the target's primary key).
type Association struct {
	Name         string `yaml:"name"`
	Target       string `yaml:"target"`
	Column       string `yaml:"column"`
	TargetColumn string `yaml:"target_column,omitempty"`
}

// Entity is one queryable table.
type Entity struct {
	Name         string        `yaml:"name"`
	Table        string        `yaml:"table"`
	PrimaryKey   string        `yaml:"primary_key"`
	Fields       []Field       `yaml:"fields"`
	Associations []Association `yaml:"associations,omitempty"`
}

// Schema is the full set of entities queries can target.
type Schema struct {
	Entities []Entity `yaml:"entities"`

	byName map[string]*Entity
}

// Load reads and validates a schema from a YAML file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema from YAML bytes.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.index()
	return &s, nil
}

// Entity returns the named entity, or nil.
func (s *Schema) Entity(name string) *Entity {
	return s.byName[name]
}

func (s *Schema) index() {
	s.byName = make(map[string]*Entity, len(s.Entities))
	for i := range s.Entities {
		s.byName[s.Entities[i].Name] = &s.Entities[i]
	}
}

func (s *Schema) validate() error {
	if len(s.Entities) == 0 {
		return fmt.Errorf("schema declares no entities")
	}
	names := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity with empty name")
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate entity %q", e.Name)
		}
		names[e.Name] = true
		if e.Table == "" {
			return fmt.Errorf("entity %q has no table", e.Name)
		}
		if e.PrimaryKey == "" {
			return fmt.Errorf("entity %q has no primary key", e.Name)
		}
		for _, f := range e.Fields {
			if f.Name == "" {
				return fmt.Errorf("entity %q has a field with no name", e.Name)
			}
			if _, err := clause.ParseValueType(f.Type); err != nil {
				return fmt.Errorf("entity %q field %q: %w", e.Name, f.Name, err)
			}
		}
	}
	for _, e := range s.Entities {
		for _, a := range e.Associations {
			if a.Name == "" || a.Target == "" || a.Column == "" {
				return fmt.Errorf("entity %q has an incomplete association %q", e.Name, a.Name)
			}
			if !names[a.Target] {
				return fmt.Errorf("entity %q association %q targets unknown entity %q", e.Name, a.Name, a.Target)
			}
		}
	}
	return nil
}

// FieldByName returns the entity's field with the given name, or nil.
func (e *Entity) FieldByName(name string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// AssociationByName returns the entity's association with the given
// name, or nil.
func (e *Entity) AssociationByName(name string) *Association {
	for i := range e.Associations {
		if e.Associations[i].Name == name {
			return &e.Associations[i]
		}
	}
	return nil
}

// ColumnName returns the column backing a field, defaulting to the
// field name.
func (f *Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// ValueType returns the parsed value type of the field. The type was
// validated at load time, so this never fails on a loaded schema.
func (f *Field) ValueType() clause.ValueType {
	t, err := clause.ParseValueType(f.Type)
	if err != nil {
		return clause.ValueType{}
	}
	return t
}
