// Package state holds the observed document: a set of named properties
// declared in configuration and fed from a YAML state file or the HTTP API.
package state

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/brianly1003/observe/internal/domain"
	"github.com/brianly1003/observe/internal/observable"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Document is an observable object whose properties are declared at
// construction time.
type Document struct {
	observable.Object

	// properties is fixed after NewDocument.
	properties map[string]*observable.Property[any]
}

// NewDocument creates a document declaring the given property ids, each
// starting out nil.
func NewDocument(ids []string) (*Document, error) {
	d := &Document{
		properties: make(map[string]*observable.Property[any], len(ids)),
	}
	for _, id := range ids {
		p, err := observable.NewProperty[any](&d.Object, id, nil)
		if err != nil {
			return nil, err
		}
		d.properties[id] = p
	}
	return d, nil
}

// Get returns the current value of property id.
func (d *Document) Get(id string) (any, error) {
	p, ok := d.properties[id]
	if !ok {
		return nil, domain.NewPropertyError(id, domain.ErrPropertyNotRegistered)
	}
	return p.Get(), nil
}

// Set writes property id unconditionally, announcing the change first.
func (d *Document) Set(id string, v any) error {
	p, ok := d.properties[id]
	if !ok {
		return domain.NewPropertyError(id, domain.ErrPropertyNotRegistered)
	}
	p.Set(v)
	return nil
}

// Apply writes every declared property in values whose value differs from
// the current one and returns the ids it changed, sorted. Undeclared keys
// are skipped.
func (d *Document) Apply(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var changed []string
	for _, k := range keys {
		p, ok := d.properties[k]
		if !ok {
			log.Warn().Str("property", k).Msg("ignoring undeclared property")
			continue
		}
		if p.CompareAndSet(values[k], reflect.DeepEqual) {
			changed = append(changed, k)
		}
	}

	if len(changed) > 0 {
		log.Debug().Strs("properties", changed).Msg("document updated")
	}
	return changed
}

// Snapshot returns a copy of all property values.
func (d *Document) Snapshot() map[string]any {
	out := make(map[string]any, len(d.properties))
	for id, p := range d.properties {
		out[id] = p.Get()
	}
	return out
}

// LoadFile reads a YAML mapping of property ids to values.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStateFileNotFound, path)
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidStateFile, path, err)
	}
	return values, nil
}
