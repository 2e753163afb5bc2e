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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRules(t *testing.T) {
	doc := &Document{Sections: []Section{
		{Name: "zip", Value: map[string]any{"file_name": "out.zip"}},
		{Name: "file_ok", Value: map[string]any{"from": "a", "to": "b"}},
		{Name: "file_no_from", Value: map[string]any{"to": "b"}},
		{Name: "file_empty_to", Value: map[string]any{"from": "a", "to": ""}},
		{Name: "file_number", Value: map[string]any{"from": int64(1), "to": "b"}},
		{Name: "files_list", Value: []any{"x"}},
		{Name: "other", Value: map[string]any{"from": "a", "to": "b"}},
	}}

	m, err := Decode(doc)
	require.NoError(t, err)

	require.Len(t, m.Rules, 4, "only file* tables become rules")
	assert.NoError(t, m.Rules[0].Validate())
	assert.Empty(t, m.Rules[0].Reason())
	for _, r := range m.Rules[1:] {
		err := r.Validate()
		assert.ErrorIs(t, err, ErrRuleSkipped, "%s should be skipped", r.Section)
		assert.Contains(t, err.Error(), r.Section)
		assert.Contains(t, err.Error(), "is missing 'from' or 'to' field")
		assert.Equal(t, "is missing 'from' or 'to' field", r.Reason())
	}
	assert.Len(t, m.ValidRules(), 1)
}

func TestDecodeVariablesMustBeTable(t *testing.T) {
	doc := &Document{Sections: []Section{
		{Name: "variables", Value: "nope"},
		{Name: "zip", Value: map[string]any{"file_name": "out.zip"}},
	}}

	_, err := Decode(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variables must be a table")
}

func TestDecodeZipNotTable(t *testing.T) {
	doc := &Document{Sections: []Section{
		{Name: "zip", Value: "out.zip"},
	}}

	_, err := Decode(doc)
	assert.ErrorIs(t, err, ErrZipSectionRequired)
}

func TestDecodeOutputDisabled(t *testing.T) {
	doc := &Document{Sections: []Section{
		{Name: "zip", Value: map[string]any{"output_enabled": false, "exclude": "*.log"}},
	}}

	m, err := Decode(doc)
	require.NoError(t, err)
	assert.False(t, m.Zip.OutputEnabled)
	assert.Equal(t, DefaultZipFileName, m.Zip.FileName)
	assert.Equal(t, []string{"*.log"}, m.Zip.Exclude)
}

func TestStagingName(t *testing.T) {
	tests := map[string]string{
		"out.zip":          "out",
		"dist/release.zip": "release",
		"archive.tar.zip":  "archive.tar",
		"noext":            "noext",
		".zip":             ".zip",
	}
	for in, want := range tests {
		assert.Equal(t, want, StagingName(in), "StagingName(%q)", in)
	}
}
