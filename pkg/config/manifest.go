// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultZipFileName is used when the zip section has no file_name.
	DefaultZipFileName = "output.zip"

	sectionVariables = "variables"
	sectionZip       = "zip"
	rulePrefix       = "file"
)

// 🔐 Encryption methods accepted by zip.encryption
const (
	EncryptionZipCrypto = "zipcrypto"
	EncryptionAES128    = "aes128"
	EncryptionAES192    = "aes192"
	EncryptionAES256    = "aes256"
)

// 🧮 Variables is the substitution context for every path template
type Variables map[string]any

// 📦 ZipSpec describes the archive to produce
type ZipSpec struct {
	FileName      string   // Template for the archive name, relative to the base dir
	Password      string   // Empty means no encryption
	OutputEnabled bool     // When false the staging directory is the deliverable
	Encryption    string   // Encryption method for password protected archives
	Exclude       []string // Doublestar patterns of entry names left out of the archive
}

// 🔒 Encrypted reports whether the archive is password protected
func (z ZipSpec) Encrypted() bool {
	return z.Password != ""
}

// 📋 CopyRule is one file section of the manifest
type CopyRule struct {
	Section string // Section key, always prefixed with "file"
	From    string // Source template
	To      string // Destination template, relative to the staging dir

	invalid string
}

// ✅ Validate returns an ErrRuleSkipped error when the rule cannot be executed
func (r CopyRule) Validate() error {
	if r.invalid != "" {
		return errors.Errorf("%w: %s %s", ErrRuleSkipped, r.Section, r.invalid)
	}
	return nil
}

// 📚 Manifest is the interpreted manifest. It is read-only after Decode.
type Manifest struct {
	Variables Variables
	Zip       ZipSpec
	Rules     []CopyRule

	location string
}

// 📍 Location returns the path the manifest was loaded from, if any
func (m *Manifest) Location() string {
	return m.location
}

// Reason describes why the rule is invalid, or "" for a valid rule
func (r CopyRule) Reason() string {
	return r.invalid
}

// 🔍 ValidRules returns the rules that will be executed, in order
func (m *Manifest) ValidRules() []CopyRule {
	rules := make([]CopyRule, 0, len(m.Rules))
	for _, r := range m.Rules {
		if r.Validate() == nil {
			rules = append(rules, r)
		}
	}
	return rules
}

// 🔄 Decode interprets a parsed Document
func Decode(doc *Document) (*Manifest, error) {
	m := &Manifest{
		Variables: Variables{},
	}

	if raw, ok := doc.Lookup(sectionVariables); ok && raw != nil {
		vars, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("variables must be a table, got %T", raw)
		}
		for k, v := range vars {
			m.Variables[k] = v
		}
	}

	raw, ok := doc.Lookup(sectionZip)
	if !ok {
		return nil, errors.WithStack(ErrZipSectionRequired)
	}
	table, ok := raw.(map[string]any)
	if !ok || len(table) == 0 {
		return nil, errors.WithStack(ErrZipSectionRequired)
	}
	zip, err := decodeZip(table)
	if err != nil {
		return nil, errors.Errorf("zip: %w", err)
	}
	m.Zip = zip

	for _, s := range doc.Sections {
		if !strings.HasPrefix(s.Name, rulePrefix) {
			continue
		}
		fields, ok := s.Value.(map[string]any)
		if !ok {
			continue
		}
		m.Rules = append(m.Rules, decodeRule(s.Name, fields))
	}

	return m, nil
}

func decodeZip(table map[string]any) (ZipSpec, error) {
	z := ZipSpec{
		FileName:      DefaultZipFileName,
		OutputEnabled: true,
		Encryption:    EncryptionZipCrypto,
	}

	if v, ok := table["file_name"]; ok {
		s, ok := v.(string)
		if !ok {
			return z, errors.Errorf("file_name must be a string, got %T", v)
		}
		z.FileName = s
	}

	if v, ok := table["password"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return z, errors.Errorf("password must be a string, got %T", v)
		}
		z.Password = s
	}

	if v, ok := table["output_enabled"]; ok {
		b, ok := v.(bool)
		if !ok {
			return z, errors.Errorf("output_enabled must be a boolean, got %T", v)
		}
		z.OutputEnabled = b
	}

	if v, ok := table["encryption"]; ok {
		s, ok := v.(string)
		if !ok {
			return z, errors.Errorf("encryption must be a string, got %T", v)
		}
		switch s = strings.ToLower(s); s {
		case EncryptionZipCrypto, EncryptionAES128, EncryptionAES192, EncryptionAES256:
			z.Encryption = s
		default:
			return z, errors.Errorf("unknown encryption %q", s)
		}
	}

	if v, ok := table["exclude"]; ok {
		patterns, err := stringList(v)
		if err != nil {
			return z, errors.Errorf("exclude: %w", err)
		}
		z.Exclude = patterns
	}

	return z, nil
}

func decodeRule(section string, fields map[string]any) CopyRule {
	r := CopyRule{Section: section}

	from, fromOK := fields["from"].(string)
	to, toOK := fields["to"].(string)
	r.From, r.To = from, to

	if !fromOK || !toOK || from == "" || to == "" {
		r.invalid = "is missing 'from' or 'to' field"
	}
	return r
}

func stringList(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("item %d must be a string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.Errorf("must be a list of strings, got %T", v)
	}
}

// 📝 StagingName returns the staging directory name for a rendered archive name
func StagingName(renderedZipName string) string {
	base := filepath.Base(renderedZipName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		// dotfiles like ".zip" have no extension
		return base
	}
	return stem
}

// 📝 String returns a short description of the manifest
func (m *Manifest) String() string {
	return fmt.Sprintf("%s (%d rules, encrypted=%t, output=%t)",
		m.Zip.FileName, len(m.Rules), m.Zip.Encrypted(), m.Zip.OutputEnabled)
}
