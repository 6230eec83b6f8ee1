//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2024 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package schema

import (
	"fmt"
	"strings"
)

// DefaultIDProperty is the field name that holds a record's identity unless
// the class declares another one.
const DefaultIDProperty = "ID"

type Property struct {
	Name     string   `json:"name" yaml:"name"`
	DataType DataType `json:"dataType" yaml:"dataType"`
}

// Class is the schema descriptor of one record type. The order of
// Properties is the order fields are written and introspected in. The
// namespace of the record type is the class name.
type Class struct {
	Name       string     `json:"name" yaml:"name"`
	IDProperty string     `json:"idProperty" yaml:"idProperty"`
	Properties []Property `json:"properties" yaml:"properties"`
}

// Record is implemented by every type that can be written. Instead of
// inspecting the value at runtime, a record hands out its class descriptor
// and answers field lookups by name.
type Record interface {
	Class() *Class
	Value(field string) (interface{}, bool)
}

func (c *Class) idName() string {
	if c.IDProperty == "" {
		return DefaultIDProperty
	}
	return c.IDProperty
}

// IsIDProperty matches the identity field by name, ignoring case.
func (c *Class) IsIDProperty(name string) bool {
	return strings.EqualFold(name, c.idName())
}

// IDField returns the declared identity field.
func (c *Class) IDField() (Property, bool) {
	for _, prop := range c.Properties {
		if c.IsIDProperty(prop.Name) {
			return prop, true
		}
	}
	return Property{}, false
}

func (c *Class) Property(name string) (Property, bool) {
	for _, prop := range c.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// IndexableProperties returns every declared field except the identity
// field, in declaration order.
func (c *Class) IndexableProperties() []Property {
	out := make([]Property, 0, len(c.Properties))
	for _, prop := range c.Properties {
		if c.IsIDProperty(prop.Name) {
			continue
		}
		out = append(out, prop)
	}
	return out
}

func (c *Class) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("class name cannot be empty")
	}

	if _, ok := c.IDField(); !ok {
		return fmt.Errorf("class %s has no %q property", c.Name, c.idName())
	}

	seen := make(map[string]struct{}, len(c.Properties))
	for _, prop := range c.Properties {
		if _, ok := seen[prop.Name]; ok {
			return fmt.Errorf("class %s declares property %q twice", c.Name, prop.Name)
		}
		seen[prop.Name] = struct{}{}
	}

	return nil
}

// MapRecord is a Record backed by a plain map, convenient for loaders that
// do not have a dedicated Go type per record.
type MapRecord struct {
	Schema *Class
	Fields map[string]interface{}
}

func (r MapRecord) Class() *Class {
	return r.Schema
}

func (r MapRecord) Value(field string) (interface{}, bool) {
	v, ok := r.Fields[field]
	return v, ok
}
