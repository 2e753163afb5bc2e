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
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrManifestNotFound is returned by Load when the manifest path does not exist.
	ErrManifestNotFound = errors.Base("manifest not found")

	// ErrZipSectionRequired is returned when the manifest has no usable zip section.
	ErrZipSectionRequired = errors.Base("zip section required")

	// ErrRuleSkipped marks a file section that cannot be executed. It is a
	// warning, never fatal.
	ErrRuleSkipped = errors.Base("rule skipped")
)

// 🔌 Parser turns manifest text of one syntax into a generic ordered Document
type Parser interface {
	// 📝 Parse parses the manifest from bytes
	Parse(ctx context.Context, filename string, data []byte) (*Document, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser

	// 🧾 fallback handles files no registered parser claims
	fallback Parser = &TOMLParser{}
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file. Unknown
// extensions are read as TOML.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return fallback
}

// 📦 Section is one top-level key of a manifest with its decoded value.
// Tables decode to map[string]any, everything else to a scalar or slice.
type Section struct {
	Name  string
	Value any
}

// 📚 Document is a parsed manifest before interpretation: top-level keys in
// declaration order.
type Document struct {
	Sections []Section
}

// 🔍 Lookup returns the value of the first section called name
func (d *Document) Lookup(name string) (any, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s.Value, true
		}
	}
	return nil, false
}

// 🎯 Load reads, parses and interprets the manifest at path
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	m, err := Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}
	m.location = path

	logger.Debug().
		Str("path", path).
		Int("rules", len(m.Rules)).
		Int("variables", len(m.Variables)).
		Msg("manifest loaded")

	return m, nil
}

// 📝 Parse interprets raw manifest text. The syntax is chosen from filename.
func Parse(ctx context.Context, filename string, data []byte) (*Manifest, error) {
	p := GetParser(filename)

	doc, err := p.Parse(ctx, filepath.Base(filename), data)
	if err != nil {
		return nil, errors.Errorf("parsing manifest: %w", err)
	}

	m, err := Decode(doc)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// 🔧 hasExt reports whether filename ends with one of exts, ignoring case
func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
