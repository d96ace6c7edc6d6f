package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/cryptox"
	"github.com/mkorolovs/passvault/internal/vault/models"
)

// Vault file layout: magic, format version, key-derivation salt, then the
// AES-GCM ciphertext of the JSON document below.
const (
	fileMagic         = "PVLT"
	fileFormatVersion = 1
)

type persistedProperty struct {
	Type      string `json:"type,omitempty"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	Protected bool   `json:"protected,omitempty"`
}

type persistedNote struct {
	UID        string              `json:"uid"`
	GroupUID   string              `json:"groupUid"`
	Title      string              `json:"title"`
	Created    time.Time           `json:"created"`
	Modified   time.Time           `json:"modified"`
	Properties []persistedProperty `json:"properties,omitempty"`
}

type persistedGroup struct {
	UID       string `json:"uid"`
	ParentUID string `json:"parentUid,omitempty"`
	Title     string `json:"title"`
	Autotype  string `json:"autotype"`
}

// vaultDocument lists groups in depth-first order and notes in group order;
// child and note ordering is reconstructed from list order on load.
type vaultDocument struct {
	Root   string           `json:"root"`
	Groups []persistedGroup `json:"groups"`
	Notes  []persistedNote  `json:"notes"`
}

func autotypeToString(a AutotypeOverride) string {
	switch a {
	case AutotypeEnabled:
		return "enabled"
	case AutotypeDisabled:
		return "disabled"
	default:
		return "inherit"
	}
}

func autotypeFromString(s string) (AutotypeOverride, error) {
	switch s {
	case "enabled":
		return AutotypeEnabled, nil
	case "disabled":
		return AutotypeDisabled, nil
	case "inherit", "":
		return AutotypeInherit, nil
	default:
		return AutotypeInherit, fmt.Errorf("unknown autotype value %q", s)
	}
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	doc := vaultDocument{Root: s.rootUID.String()}

	for _, uid := range s.GroupUIDs() {
		g := s.groups[uid]
		pg := persistedGroup{
			UID:      g.UID.String(),
			Title:    g.Title,
			Autotype: autotypeToString(g.Autotype),
		}
		if g.ParentUID != uuid.Nil {
			pg.ParentUID = g.ParentUID.String()
		}
		doc.Groups = append(doc.Groups, pg)

		for _, noteUID := range g.NoteUIDs {
			n := s.notes[noteUID]
			pn := persistedNote{
				UID:      n.UID.String(),
				GroupUID: n.GroupUID.String(),
				Title:    n.Title,
				Created:  n.Created,
				Modified: n.Modified,
			}
			for _, p := range n.Properties {
				pn.Properties = append(pn.Properties, persistedProperty{
					Type:      string(p.Type),
					Name:      p.Name,
					Value:     p.Value,
					Protected: p.IsProtected,
				})
			}
			doc.Notes = append(doc.Notes, pn)
		}
	}

	return json.Marshal(doc)
}

func unmarshalSnapshot(data []byte) (*Snapshot, error) {
	var doc vaultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse vault document: %w", err)
	}

	rootUID, err := uuid.Parse(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("parse root uid: %w", err)
	}

	snap := &Snapshot{
		rootUID: rootUID,
		groups:  make(map[uuid.UUID]*RawGroup, len(doc.Groups)),
		notes:   make(map[uuid.UUID]*models.Note, len(doc.Notes)),
	}

	for _, pg := range doc.Groups {
		uid, err := uuid.Parse(pg.UID)
		if err != nil {
			return nil, fmt.Errorf("parse group uid: %w", err)
		}
		autotype, err := autotypeFromString(pg.Autotype)
		if err != nil {
			return nil, err
		}
		g := &RawGroup{UID: uid, Title: pg.Title, Autotype: autotype}
		if pg.ParentUID != "" {
			parentUID, err := uuid.Parse(pg.ParentUID)
			if err != nil {
				return nil, fmt.Errorf("parse parent uid: %w", err)
			}
			g.ParentUID = parentUID
		}
		snap.groups[uid] = g
	}

	// Rebuild child lists in file order and validate parent links.
	for _, pg := range doc.Groups {
		uid, _ := uuid.Parse(pg.UID)
		g := snap.groups[uid]
		if g.ParentUID == uuid.Nil {
			continue
		}
		parent, ok := snap.groups[g.ParentUID]
		if !ok {
			return nil, fmt.Errorf("group %s parent %s: %w", g.UID, g.ParentUID, common.ErrNotFound)
		}
		parent.ChildUIDs = append(parent.ChildUIDs, uid)
	}

	if _, ok := snap.groups[rootUID]; !ok {
		return nil, fmt.Errorf("root group %s: %w", rootUID, common.ErrNotFound)
	}

	for _, pn := range doc.Notes {
		uid, err := uuid.Parse(pn.UID)
		if err != nil {
			return nil, fmt.Errorf("parse note uid: %w", err)
		}
		groupUID, err := uuid.Parse(pn.GroupUID)
		if err != nil {
			return nil, fmt.Errorf("parse note group uid: %w", err)
		}
		group, ok := snap.groups[groupUID]
		if !ok {
			return nil, fmt.Errorf("note %s group %s: %w", uid, groupUID, common.ErrNotFound)
		}
		n := &models.Note{
			UID:      uid,
			GroupUID: groupUID,
			Title:    pn.Title,
			Created:  pn.Created,
			Modified: pn.Modified,
		}
		for _, pp := range pn.Properties {
			n.Properties = append(n.Properties, models.Property{
				Type:        models.PropertyType(pp.Type),
				Name:        pp.Name,
				Value:       pp.Value,
				IsProtected: pp.Protected,
			})
		}
		snap.notes[uid] = n
		group.NoteUIDs = append(group.NoteUIDs, uid)
	}

	return snap, nil
}

// encodeVaultFile frames salt and ciphertext into the on-disk layout.
func encodeVaultFile(salt, ciphertext []byte) []byte {
	out := make([]byte, 0, len(fileMagic)+1+len(salt)+len(ciphertext))
	out = append(out, fileMagic...)
	out = append(out, byte(fileFormatVersion))
	out = append(out, salt...)
	out = append(out, ciphertext...)
	return out
}

// decodeVaultFile splits a vault file into salt and ciphertext.
func decodeVaultFile(data []byte) (salt, ciphertext []byte, err error) {
	header := len(fileMagic) + 1
	if len(data) < header+cryptox.SaltLen {
		return nil, nil, fmt.Errorf("vault file too short: %w", common.ErrFailedToDecodeData)
	}
	if string(data[:len(fileMagic)]) != fileMagic {
		return nil, nil, fmt.Errorf("bad vault file magic: %w", common.ErrFailedToDecodeData)
	}
	if data[len(fileMagic)] != fileFormatVersion {
		return nil, nil, fmt.Errorf("unsupported vault format version %d: %w",
			data[len(fileMagic)], common.ErrFailedToDecodeData)
	}
	return data[header : header+cryptox.SaltLen], data[header+cryptox.SaltLen:], nil
}
