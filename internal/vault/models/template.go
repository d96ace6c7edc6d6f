package models

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TemplateGroupName is the reserved title of the group holding template
// notes. No separate flag marks the group; it is located by title match.
const TemplateGroupName = "Templates"

// Template notes follow the KPEntryTemplates property convention: for every
// template field F the note carries "_etm_position_F", "_etm_title_F" and
// "_etm_type_F" properties.
const (
	templatePositionPrefix = "_etm_position_"
	templateTitlePrefix    = "_etm_title_"
	templateTypePrefix     = "_etm_type_"
)

// TemplateFieldType describes how a field should be presented when a note is
// created from the template.
type TemplateFieldType string

const (
	TemplateFieldTypeInline          TemplateFieldType = "Inline"
	TemplateFieldTypeProtectedInline TemplateFieldType = "Protected Inline"
	TemplateFieldTypePopout          TemplateFieldType = "Popout"
)

// TemplateField is one declared field of a template.
type TemplateField struct {
	Title    string
	Position int
	Type     TemplateFieldType
}

// Template is a note interpreted as a reusable field structure.
type Template struct {
	UID    uuid.UUID
	Title  string
	Fields []TemplateField
}

// ParseTemplate interprets a note as a template. It returns false when the
// note carries no template properties; such notes are skipped, not failed.
func ParseTemplate(note Note) (Template, bool) {
	fields := map[string]*TemplateField{}

	field := func(name string) *TemplateField {
		f, ok := fields[name]
		if !ok {
			f = &TemplateField{Title: name, Type: TemplateFieldTypeInline}
			fields[name] = f
		}
		return f
	}

	for _, p := range note.Properties {
		switch {
		case strings.HasPrefix(p.Name, templatePositionPrefix):
			name := strings.TrimPrefix(p.Name, templatePositionPrefix)
			pos, err := strconv.Atoi(p.Value)
			if err != nil {
				continue
			}
			field(name).Position = pos
		case strings.HasPrefix(p.Name, templateTitlePrefix):
			name := strings.TrimPrefix(p.Name, templateTitlePrefix)
			if p.Value != "" {
				field(name).Title = p.Value
			}
		case strings.HasPrefix(p.Name, templateTypePrefix):
			name := strings.TrimPrefix(p.Name, templateTypePrefix)
			field(name).Type = TemplateFieldType(p.Value)
		}
	}

	if len(fields) == 0 {
		return Template{}, false
	}

	result := Template{UID: note.UID, Title: note.Title}
	for _, f := range fields {
		result.Fields = append(result.Fields, *f)
	}
	sort.Slice(result.Fields, func(i, j int) bool {
		if result.Fields[i].Position != result.Fields[j].Position {
			return result.Fields[i].Position < result.Fields[j].Position
		}
		return result.Fields[i].Title < result.Fields[j].Title
	})

	return result, true
}

// NewTemplateNote builds the note representation of a template inside the
// given group. The note UID is left to the repository to allocate.
func NewTemplateNote(template Template, groupUID uuid.UUID) Note {
	note := Note{
		GroupUID: groupUID,
		Title:    template.Title,
	}
	for _, f := range template.Fields {
		key := f.Title
		note.Properties = append(note.Properties,
			Property{Name: templatePositionPrefix + key, Value: strconv.Itoa(f.Position)},
			Property{Name: templateTitlePrefix + key, Value: f.Title},
			Property{Name: templateTypePrefix + key, Value: string(f.Type)},
		)
	}
	return note
}
