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

package archive

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrArchive marks any failure while enumerating or writing an archive.
var ErrArchive = errors.Base("archive error")

// 📄 Entry is one file going into an archive
type Entry struct {
	Path string // Absolute (or staging-joined) path on disk
	Name string // Slash-separated name inside the archive
}

// 🪝 AddFunc is called after each entry has been written to the archive
type AddFunc func(ctx context.Context, e Entry) error

func wrap(action, path string, err error) error {
	return errors.Errorf("%w: %s %s: %s", ErrArchive, action, path, err.Error())
}

// 🔍 Collect lists the regular files under root, drops entries whose name
// matches one of the exclude patterns, and sorts the rest by name. A root
// that does not exist yields no entries.
func Collect(ctx context.Context, root string, exclude []string) ([]Entry, error) {
	logger := zerolog.Ctx(ctx)

	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("%w: invalid exclude pattern %q", ErrArchive, pattern)
		}
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("root", root).Msg("nothing staged, no archive entries")
		return nil, nil
	}

	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		for _, pattern := range exclude {
			if doublestar.MatchUnvalidated(pattern, name) {
				logger.Debug().Str("entry", name).Str("pattern", pattern).Msg("entry excluded by pattern")
				return nil
			}
		}

		entries = append(entries, Entry{Path: path, Name: name})
		return nil
	})
	if err != nil {
		return nil, wrap("walking", root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	logger.Debug().Str("root", root).Int("entries", len(entries)).Msg("collected archive entries")

	return entries, nil
}
