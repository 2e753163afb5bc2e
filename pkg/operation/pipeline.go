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

package operation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/packrc/pkg/archive"
	"github.com/walteh/packrc/pkg/config"
	"github.com/walteh/packrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options configures a run
type Options struct {
	// ManifestPath is the manifest to load
	ManifestPath string
	// BaseDir resolves relative sources and the archive; defaults to the
	// manifest's directory
	BaseDir string
	// LogPath is the journal name before the run timestamp is inserted;
	// empty disables the journal
	LogPath string
	// Clean removes the staging directory before copying
	Clean bool
	// Writers overrides the archive writers; zero value means DefaultWriters
	Writers Writers
	// Now stamps the journal name; defaults to time.Now
	Now func() time.Time
}

// 📋 Result describes a finished run
type Result struct {
	Manifest    *config.Manifest
	StagingDir  string
	ArchivePath string
	LogPath     string // "" when the journal is disabled
	Archived    bool   // false when output is disabled or nothing was encrypted
	Copied      []CopiedFile
	Skipped     []string
	Entries     []archive.Entry
}

// 🚀 Run loads the manifest and executes the whole pipeline: optional clean,
// stage, then archive. The first error stops the run; nothing is rolled back.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	m, err := config.Load(ctx, opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(m.Location())
	}

	plan, err := NewPlan(m, baseDir, nil)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Manifest:    m,
		StagingDir:  plan.StagingDir,
		ArchivePath: plan.ArchivePath,
	}

	if opts.LogPath != "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		journal, err := status.Open(ctx, status.LogPath(opts.LogPath, now()))
		if err != nil {
			return nil, errors.Errorf("opening operation log: %w", err)
		}
		plan.Journal = journal
		res.LogPath = journal.Path()
	}

	writers := opts.Writers
	if writers.Plain == nil || writers.Encrypted == nil {
		writers = DefaultWriters
	}

	stage := NewStageOperation(plan)
	pack := NewArchiveOperation(plan, writers)

	ops := []Operation{stage, pack}
	if opts.Clean {
		ops = append([]Operation{NewCleanOperation(plan)}, ops...)
	}

	logger.Debug().
		Str("manifest", m.Location()).
		Str("zip", m.String()).
		Int("rules", len(m.ValidRules())).
		Str("staging", plan.StagingDir).
		Str("archive", plan.ArchivePath).
		Str("log", res.LogPath).
		Msg("starting run")

	err = NewRunner(logger).RunAll(ctx, ops...)

	if sr := stage.Result(); sr != nil {
		res.Copied = sr.Copied
		res.Skipped = sr.Skipped
	}
	res.Entries = pack.Entries()
	res.Archived = pack.Archived()

	return res, err
}
