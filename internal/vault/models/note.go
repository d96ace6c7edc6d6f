package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyType classifies well-known note fields. Custom fields carry
// PropertyTypeUndefined and are distinguished by name.
type PropertyType string

const (
	PropertyTypeUndefined PropertyType = ""
	PropertyTypeTitle     PropertyType = "Title"
	PropertyTypeUserName  PropertyType = "UserName"
	PropertyTypePassword  PropertyType = "Password"
	PropertyTypeURL       PropertyType = "URL"
	PropertyTypeNotes     PropertyType = "Notes"
)

// Property is one typed field of a note.
type Property struct {
	Type        PropertyType
	Name        string
	Value       string
	IsProtected bool
}

// Note is a single credential record belonging to exactly one group.
// Moving a note changes GroupUID only.
type Note struct {
	UID      uuid.UUID
	GroupUID uuid.UUID
	Title    string
	Created  time.Time
	Modified time.Time

	Properties []Property
}

// PropertyByName returns the first property with the given name.
func (n Note) PropertyByName(name string) (Property, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Matches reports whether the query occurs in the note title or in any
// unprotected property value, case-insensitively.
func (n Note) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(n.Title), q) {
		return true
	}
	for _, p := range n.Properties {
		if p.IsProtected {
			continue
		}
		if strings.Contains(strings.ToLower(p.Value), q) {
			return true
		}
	}
	return false
}
