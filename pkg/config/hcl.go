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
	"math/big"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL manifests.
//
//	variables { name = "u" }
//	zip { file_name = "{{name}}.zip" }
//	file "readme" {
//	  from = "README.md"
//	  to   = "README.md"
//	}
//
// Labelled blocks are named "<type>.<label>", so `file "readme"` is the
// section "file.readme".
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

// 📝 Parse parses the manifest from HCL
func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte) (*Document, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.Errorf("parsing HCL: unexpected body type %T", file.Body)
	}

	type positioned struct {
		offset  int
		section Section
	}
	var items []positioned

	for name, attr := range body.Attributes {
		v, err := hclAttrValue(attr)
		if err != nil {
			return nil, err
		}
		items = append(items, positioned{attr.SrcRange.Start.Byte, Section{Name: name, Value: v}})
	}

	for _, block := range body.Blocks {
		v, err := hclBodyValue(block.Body)
		if err != nil {
			return nil, errors.Errorf("block %s: %w", block.Type, err)
		}
		name := block.Type
		if len(block.Labels) > 0 {
			name += "." + strings.Join(block.Labels, ".")
		}
		items = append(items, positioned{block.TypeRange.Start.Byte, Section{Name: name, Value: v}})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].offset < items[j].offset })

	doc := &Document{}
	for _, it := range items {
		doc.Sections = append(doc.Sections, it.section)
	}
	return doc, nil
}

// 🔄 hclBodyValue converts a block body into a map; nested blocks become
// nested maps
func hclBodyValue(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		v, err := hclAttrValue(attr)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	for _, block := range body.Blocks {
		v, err := hclBodyValue(block.Body)
		if err != nil {
			return nil, errors.Errorf("block %s: %w", block.Type, err)
		}
		out[block.Type] = v
	}
	return out, nil
}

func hclAttrValue(attr *hclsyntax.Attribute) (any, error) {
	val, diags := attr.Expr.Value(&hcl.EvalContext{Variables: map[string]cty.Value{}})
	if diags.HasErrors() {
		return nil, errors.Errorf("attribute %s: %s", attr.Name, diags.Error())
	}
	v, err := ctyToNative(val)
	if err != nil {
		return nil, errors.Errorf("attribute %s: %w", attr.Name, err)
	}
	return v, nil
}

// 🔄 ctyToNative converts a cty value to the same Go shapes the TOML and
// YAML decoders produce
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, errors.New("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			nv, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, nv)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := map[string]any{}
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			nv, err := ctyToNative(elem)
			if err != nil {
				return nil, errors.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = nv
		}
		return out, nil

	default:
		return nil, errors.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
