// Package models defines the entities stored in a vault: groups, notes and
// templates, plus the value types shared by the repositories.
package models

import "github.com/google/uuid"

// InheritableBooleanOption is a per-group flag that is either set explicitly
// or inherited from the nearest ancestor that sets it.
//
// When IsInheritValue is true, IsEnabled holds the resolved effective value,
// not a stored one.
type InheritableBooleanOption struct {
	IsEnabled      bool
	IsInheritValue bool
}

// OptionInherited builds an option that inherits the given effective value.
func OptionInherited(parentEnabled bool) InheritableBooleanOption {
	return InheritableBooleanOption{IsEnabled: parentEnabled, IsInheritValue: true}
}

// OptionExplicit builds an explicitly set option.
func OptionExplicit(enabled bool) InheritableBooleanOption {
	return InheritableBooleanOption{IsEnabled: enabled}
}

// Group is a folder node of the vault tree with parent link and inheritable
// options resolved.
type Group struct {
	UID       uuid.UUID
	ParentUID *uuid.UUID // nil only for the root
	Title     string

	// GroupCount and NoteCount are direct-children counters.
	GroupCount int
	NoteCount  int

	// AutotypeEnabled is resolved through inheritance at read time.
	AutotypeEnabled InheritableBooleanOption
}

// GroupEntity is the write-side payload for inserting or updating a group.
// A nil UID on insert means "allocate one".
type GroupEntity struct {
	UID             *uuid.UUID
	ParentUID       *uuid.UUID
	Title           string
	AutotypeEnabled InheritableBooleanOption
}
