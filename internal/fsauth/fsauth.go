// Package fsauth models the file-system authority attached to a used file:
// which file system the file lives on and, for remote file systems, the
// encrypted credentials needed to reach it.
package fsauth

import (
	"encoding/json"
	"fmt"

	"github.com/mkorolovs/passvault/internal/common"
	"github.com/mkorolovs/passvault/internal/cryptox"
)

// FSType identifies a file-system provider.
type FSType string

const (
	FSTypeRegularFS FSType = "REGULAR_FS"
	FSTypeWebdav    FSType = "WEBDAV"
	FSTypeSAF       FSType = "SAF"
	FSTypeUndefined FSType = "UNDEFINED"
)

// CredentialsTypeBasic tags url/username/password credentials.
const CredentialsTypeBasic = "BasicCredentials"

// Authority is the persisted fs_authority document. Credentials holds the
// cipher-encoded credentials JSON and is empty for local file systems.
type Authority struct {
	FSType      FSType `json:"fsType"`
	Credentials string `json:"credentials,omitempty"`
}

// ParseAuthority decodes a persisted fs_authority value.
func ParseAuthority(data string) (Authority, error) {
	var authority Authority
	if err := json.Unmarshal([]byte(data), &authority); err != nil {
		return Authority{}, fmt.Errorf("parse fs authority: %v: %w", err, common.ErrFailedToDecodeData)
	}
	return authority, nil
}

// Marshal encodes the authority back into its persisted form.
func (a Authority) Marshal() (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal fs authority: %w", err)
	}
	return string(data), nil
}

// BasicCredentials is the tagged credentials document for remote file
// systems.
type BasicCredentials struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// legacyCredentials is the untagged shape written before the tagged union
// was introduced.
type legacyCredentials struct {
	ServerURL string `json:"serverUrl"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// ParseCredentials decodes a plaintext credentials document, accepting both
// the tagged shape and the legacy untagged one. The tagged return reports
// whether the document already carried the type tag, so callers rewriting
// legacy documents can leave tagged ones alone.
func ParseCredentials(data string) (creds BasicCredentials, tagged bool, err error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return BasicCredentials{}, false, fmt.Errorf("parse credentials: %v: %w", err, common.ErrFailedToDecodeData)
	}

	switch probe.Type {
	case CredentialsTypeBasic:
		if err := json.Unmarshal([]byte(data), &creds); err != nil {
			return BasicCredentials{}, false, fmt.Errorf("parse credentials: %v: %w", err, common.ErrFailedToDecodeData)
		}
		return creds, true, nil

	case "":
		var legacy legacyCredentials
		if err := json.Unmarshal([]byte(data), &legacy); err != nil {
			return BasicCredentials{}, false, fmt.Errorf("parse legacy credentials: %v: %w", err, common.ErrFailedToDecodeData)
		}
		if legacy.ServerURL == "" {
			return BasicCredentials{}, false, fmt.Errorf("credentials without type or serverUrl: %w", common.ErrFailedToDecodeData)
		}
		return BasicCredentials{
			Type:     CredentialsTypeBasic,
			URL:      legacy.ServerURL,
			Username: legacy.Username,
			Password: legacy.Password,
		}, false, nil

	default:
		return BasicCredentials{}, false, fmt.Errorf("unknown credentials type %q: %w", probe.Type, common.ErrFailedToDecodeData)
	}
}

// DecryptCredentials decodes the cipher-protected credentials of an
// authority. The tagged return mirrors ParseCredentials.
func DecryptCredentials(cipher cryptox.DataCipher, a Authority) (BasicCredentials, bool, error) {
	plain, err := cipher.Decode(a.Credentials)
	if err != nil {
		return BasicCredentials{}, false, err
	}
	return ParseCredentials(plain)
}

// EncryptCredentials encodes the credentials into an authority of the given
// type, always writing the tagged shape.
func EncryptCredentials(cipher cryptox.DataCipher, fsType FSType, creds BasicCredentials) (Authority, error) {
	creds.Type = CredentialsTypeBasic
	plain, err := json.Marshal(creds)
	if err != nil {
		return Authority{}, fmt.Errorf("marshal credentials: %w", err)
	}
	encoded, err := cipher.Encode(string(plain))
	if err != nil {
		return Authority{}, err
	}
	return Authority{FSType: fsType, Credentials: encoded}, nil
}
