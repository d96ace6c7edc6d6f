package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/vault/models"
)

// Ls lists the child groups and notes of the current group.
func (a *App) Ls(ctx context.Context) error {
	children, err := a.groups.GetChildGroups(a.currentGroup)
	if err != nil {
		return err
	}
	for _, group := range children {
		fmt.Fprintf(a.out, "%s/  (%d groups, %d notes)\n", group.Title, group.GroupCount, group.NoteCount)
	}

	groupNotes, err := a.notes.GetNotesByGroupUID(a.currentGroup)
	if err != nil {
		return err
	}
	for _, note := range groupNotes {
		fmt.Fprintln(a.out, note.Title)
	}
	return nil
}

// Tree prints the subtree under the current group.
func (a *App) Tree(ctx context.Context) error {
	return a.printTree(a.currentGroup, "")
}

func (a *App) printTree(groupUID uuid.UUID, indent string) error {
	group, err := a.groups.GetGroupByUID(groupUID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s%s/\n", indent, group.Title)

	groupNotes, err := a.notes.GetNotesByGroupUID(groupUID)
	if err != nil {
		return err
	}
	for _, note := range groupNotes {
		fmt.Fprintf(a.out, "%s  %s\n", indent, note.Title)
	}

	children, err := a.groups.GetChildGroups(groupUID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := a.printTree(child.UID, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}

// ChangeGroup moves the REPL into another group: ".." for the parent, a
// child title otherwise.
func (a *App) ChangeGroup(ctx context.Context) error {
	target, err := GetSimpleText(a.reader, "Group title (.. for parent)", a.out)
	if err != nil {
		return err
	}

	if target == ".." {
		group, err := a.groups.GetGroupByUID(a.currentGroup)
		if err != nil {
			return err
		}
		if group.ParentUID != nil {
			a.currentGroup = *group.ParentUID
		}
		return nil
	}

	child, err := a.findChildGroup(target)
	if err != nil {
		fmt.Fprintf(a.out, "No such group: %s\n", target)
		return err
	}
	a.currentGroup = child.UID
	return nil
}

// Mkdir creates a child group in the current group.
func (a *App) Mkdir(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Group title", a.out)
	if err != nil {
		return err
	}
	if title == "" {
		return errors.New("empty group title")
	}

	parentUID := a.currentGroup
	_, err = a.groups.Insert(models.GroupEntity{
		ParentUID:       &parentUID,
		Title:           title,
		AutotypeEnabled: models.OptionInherited(true),
	})
	return err
}

// AddNote interactively creates a note in the current group.
func (a *App) AddNote(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	if title == "" {
		return errors.New("empty note title")
	}

	note := models.Note{GroupUID: a.currentGroup, Title: title}

	username, err := GetSimpleText(a.reader, "Username (optional)", a.out)
	if err != nil {
		return err
	}
	if username != "" {
		note.Properties = append(note.Properties, models.Property{
			Type: models.PropertyTypeUserName, Name: "UserName", Value: username,
		})
	}

	password, err := GetPassword("Password (optional): ", a.out)
	if err != nil {
		return err
	}
	if len(password) > 0 {
		note.Properties = append(note.Properties, models.Property{
			Type: models.PropertyTypePassword, Name: "Password", Value: string(password), IsProtected: true,
		})
	}

	url, err := GetSimpleText(a.reader, "URL (optional)", a.out)
	if err != nil {
		return err
	}
	if url != "" {
		note.Properties = append(note.Properties, models.Property{
			Type: models.PropertyTypeURL, Name: "URL", Value: url,
		})
	}

	body, err := GetMultiline(a.reader, "Notes (optional)", a.out)
	if err != nil {
		return err
	}
	if body != "" {
		note.Properties = append(note.Properties, models.Property{
			Type: models.PropertyTypeNotes, Name: "Notes", Value: body,
		})
	}

	_, err = a.notes.Insert(note)
	return err
}

// Show prints one note of the current group. Protected values are masked
// unless the user asks to reveal them.
func (a *App) Show(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Note title", a.out)
	if err != nil {
		return err
	}
	note, err := a.findNoteInCurrent(title)
	if err != nil {
		fmt.Fprintf(a.out, "No such note: %s\n", title)
		return err
	}

	reveal, err := GetSimpleText(a.reader, "Reveal protected values? (y/N)", a.out)
	if err != nil {
		return err
	}
	showProtected := strings.EqualFold(reveal, "y")

	fmt.Fprintf(a.out, "%s  (modified %s)\n", note.Title, note.Modified.Format("2006-01-02 15:04"))
	for _, p := range note.Properties {
		value := p.Value
		if p.IsProtected && !showProtected {
			value = "********"
		}
		fmt.Fprintf(a.out, "  %s: %s\n", p.Name, value)
	}
	return nil
}

// Move relocates a child group or a note of the current group into another
// group, looked up by title across the whole tree.
func (a *App) Move(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Group or note title to move", a.out)
	if err != nil {
		return err
	}
	destTitle, err := GetSimpleText(a.reader, "Destination group title", a.out)
	if err != nil {
		return err
	}
	dest, err := a.findGroupAnywhere(destTitle)
	if err != nil {
		fmt.Fprintf(a.out, "No such destination group: %s\n", destTitle)
		return err
	}

	if group, err := a.findChildGroup(title); err == nil {
		destUID := dest.UID
		err := a.groups.Update(models.GroupEntity{
			UID:             &group.UID,
			ParentUID:       &destUID,
			Title:           group.Title,
			AutotypeEnabled: group.AutotypeEnabled,
		})
		if errors.Is(err, common.ErrGroupInsideItsOwnTree) {
			fmt.Fprintln(a.out, "Cannot move a group into its own subtree.")
		}
		return err
	}

	note, err := a.findNoteInCurrent(title)
	if err != nil {
		fmt.Fprintf(a.out, "Nothing named %q here.\n", title)
		return err
	}
	note.GroupUID = dest.UID
	return a.notes.Update(note)
}

// Remove deletes a child group (with its subtree, after confirmation) or a
// note of the current group.
func (a *App) Remove(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Group or note title to remove", a.out)
	if err != nil {
		return err
	}

	if group, err := a.findChildGroup(title); err == nil {
		confirm, err := GetSimpleText(a.reader,
			fmt.Sprintf("Remove group %q and everything inside it? (y/N)", group.Title), a.out)
		if err != nil {
			return err
		}
		if !strings.EqualFold(confirm, "y") {
			return nil
		}
		return a.groups.Remove(group.UID)
	}

	note, err := a.findNoteInCurrent(title)
	if err != nil {
		fmt.Fprintf(a.out, "Nothing named %q here.\n", title)
		return err
	}
	return a.notes.Remove(note.UID)
}

// Find searches groups and notes across the whole vault.
func (a *App) Find(ctx context.Context) error {
	query, err := GetSimpleText(a.reader, "Search for", a.out)
	if err != nil {
		return err
	}
	if query == "" {
		return nil
	}

	matchedGroups, err := a.groups.Find(query)
	if err != nil {
		return err
	}
	for _, group := range matchedGroups {
		fmt.Fprintf(a.out, "%s/\n", group.Title)
	}

	matchedNotes, err := a.notes.Find(query)
	if err != nil {
		return err
	}
	for _, note := range matchedNotes {
		fmt.Fprintln(a.out, note.Title)
	}
	if len(matchedGroups) == 0 && len(matchedNotes) == 0 {
		fmt.Fprintln(a.out, "Nothing found.")
	}
	return nil
}

// Templates lists the cached templates, offering to seed the default set
// when the vault has none.
func (a *App) Templates(ctx context.Context) error {
	cached := a.templates.Templates()
	if a.templates.TemplateGroupUID() == nil {
		answer, err := GetSimpleText(a.reader, "No template group yet. Create the default templates? (y/N)", a.out)
		if err != nil {
			return err
		}
		if !strings.EqualFold(answer, "y") {
			return nil
		}
		if _, err := a.templates.AddTemplates(defaultTemplates()); err != nil {
			return err
		}
		cached = a.templates.Templates()
	}

	for _, template := range cached {
		fmt.Fprintf(a.out, "%s\n", template.Title)
		for _, field := range template.Fields {
			fmt.Fprintf(a.out, "  %d. %s (%s)\n", field.Position, field.Title, field.Type)
		}
	}
	return nil
}

func defaultTemplates() []models.Template {
	return []models.Template{
		{Title: "Wi-Fi", Fields: []models.TemplateField{
			{Title: "SSID", Position: 0, Type: models.TemplateFieldTypeInline},
			{Title: "Key", Position: 1, Type: models.TemplateFieldTypeProtectedInline},
		}},
		{Title: "Credit card", Fields: []models.TemplateField{
			{Title: "Number", Position: 0, Type: models.TemplateFieldTypeInline},
			{Title: "Expires", Position: 1, Type: models.TemplateFieldTypeInline},
			{Title: "PIN", Position: 2, Type: models.TemplateFieldTypeProtectedInline},
		}},
		{Title: "Secure note", Fields: []models.TemplateField{
			{Title: "Text", Position: 0, Type: models.TemplateFieldTypePopout},
		}},
	}
}

func (a *App) findChildGroup(title string) (models.Group, error) {
	children, err := a.groups.GetChildGroups(a.currentGroup)
	if err != nil {
		return models.Group{}, err
	}
	for _, group := range children {
		if group.Title == title {
			return group, nil
		}
	}
	return models.Group{}, common.ErrNotFound
}

func (a *App) findGroupAnywhere(title string) (models.Group, error) {
	if title == "/" {
		return a.groups.GetRootGroup()
	}
	all, err := a.groups.GetAll()
	if err != nil {
		return models.Group{}, err
	}
	for _, group := range all {
		if group.ParentUID != nil && group.Title == title {
			return group, nil
		}
	}
	return models.Group{}, common.ErrNotFound
}

func (a *App) findNoteInCurrent(title string) (models.Note, error) {
	groupNotes, err := a.notes.GetNotesByGroupUID(a.currentGroup)
	if err != nil {
		return models.Note{}, err
	}
	for _, note := range groupNotes {
		if note.Title == title {
			return note, nil
		}
	}
	return models.Note{}, common.ErrNotFound
}
