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
	"slices"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&TOMLParser{})
}

// 🔧 TOMLParser implements the Parser interface for TOML manifests
type TOMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *TOMLParser) CanParse(filename string) bool {
	return hasExt(filename, ".toml")
}

// 📝 Parse parses the manifest from TOML. Values come from a regular
// unmarshal; the unstable parser only supplies top-level key order, which a
// map cannot keep.
func (p *TOMLParser) Parse(ctx context.Context, filename string, data []byte) (*Document, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}

	order, err := tomlKeyOrder(data)
	if err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}

	return documentFromMap(tree, order), nil
}

// 🔍 tomlKeyOrder lists top-level keys in the order they first appear
func tomlKeyOrder(data []byte) ([]string, error) {
	p := unstable.Parser{}
	p.Reset(data)

	var order []string
	inTable := false
	for p.NextExpression() {
		expr := p.Expression()

		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			inTable = true
		case unstable.KeyValue:
			// key/values below a [header] belong to that table
			if inTable {
				continue
			}
		default:
			continue
		}

		it := expr.Key()
		if !it.Next() {
			continue
		}
		name := string(it.Node().Data)
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return order, nil
}

// 🔄 documentFromMap builds a Document from an unordered tree and a key order.
// Keys missing from order are appended in sorted order.
func documentFromMap(tree map[string]any, order []string) *Document {
	doc := &Document{}
	seen := make(map[string]bool, len(tree))
	for _, name := range order {
		v, ok := tree[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		doc.Sections = append(doc.Sections, Section{Name: name, Value: v})
	}

	var rest []string
	for name := range tree {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		doc.Sections = append(doc.Sections, Section{Name: name, Value: tree[name]})
	}
	return doc
}
