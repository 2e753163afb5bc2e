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

	"github.com/walteh/packrc/pkg/archive"
	"github.com/walteh/packrc/pkg/log"
	"github.com/walteh/packrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ✍️ Writers are the two packaging strategies; exactly one runs per archive
type Writers struct {
	Plain     func(ctx context.Context, target string, entries []archive.Entry, onAdd archive.AddFunc) error
	Encrypted func(ctx context.Context, target string, entries []archive.Entry, password, method string, onAdd archive.AddFunc) error
}

// DefaultWriters writes archives with pkg/archive.
var DefaultWriters = Writers{
	Plain:     archive.WritePlain,
	Encrypted: archive.WriteEncrypted,
}

// 📦 ArchiveOperation packages the staging directory
type ArchiveOperation struct {
	BaseOperation
	writers  Writers
	entries  []archive.Entry
	archived bool
}

// 🏭 NewArchiveOperation creates a new archive operation
func NewArchiveOperation(plan *Plan, writers Writers) *ArchiveOperation {
	return &ArchiveOperation{
		BaseOperation: NewBaseOperation(plan),
		writers:       writers,
	}
}

// Name implements Operation
func (op *ArchiveOperation) Name() string { return "archive" }

// Entries returns the entries written by the last Execute, in add order
func (op *ArchiveOperation) Entries() []archive.Entry {
	return op.entries
}

// Archived reports whether the last Execute produced an archive file
func (op *ArchiveOperation) Archived() bool {
	return op.archived
}

// 🏃 Execute builds the archive, or does nothing when output is disabled
func (op *ArchiveOperation) Execute(ctx context.Context) error {
	logger := op.logger(ctx, op.Name())
	console := log.FromContext(ctx)
	zs := op.Manifest.Zip

	op.entries, op.archived = nil, false

	if !zs.OutputEnabled {
		logger.Debug().Msg("zip output disabled")
		console.LogNewline()
		console.Infof("Zip output disabled. Files are in directory: %s/", op.StagingName)
		return nil
	}

	entries, err := archive.Collect(ctx, op.StagingDir, zs.Exclude)
	if err != nil {
		return errors.Errorf("collecting archive entries: %w", err)
	}
	entries = op.withoutArchive(ctx, entries)

	if zs.Encrypted() && len(entries) == 0 {
		logger.Debug().Msg("no entries for encrypted archive")
		console.Warningf("no files in %s/, %s was not created", op.StagingName, op.ZipName)
		return nil
	}

	phase := log.Phase{Name: "archiving", Target: op.ZipName}
	console.StartPhase(ctx, phase)
	defer console.EndPhase(ctx, phase)

	onAdd := func(ctx context.Context, e archive.Entry) error {
		if err := op.Journal.Record(ctx, status.OpZip, e.Path, e.Name); err != nil {
			return errors.Errorf("journaling %s: %w", e.Name, err)
		}
		op.entries = append(op.entries, e)
		console.LogFileOperation(ctx, log.FileOperation{
			Kind:        log.KindZip,
			Source:      e.Path,
			Destination: e.Name,
		})
		return nil
	}

	if zs.Encrypted() {
		err = op.writers.Encrypted(ctx, op.ArchivePath, entries, zs.Password, zs.Encryption, onAdd)
	} else {
		err = op.writers.Plain(ctx, op.ArchivePath, entries, onAdd)
	}
	if err != nil {
		return errors.Errorf("building %s: %w", op.ZipName, err)
	}
	op.archived = true

	logger.Info().
		Str("archive", op.ArchivePath).
		Int("entries", len(op.entries)).
		Bool("encrypted", zs.Encrypted()).
		Msg("archive created")

	console.LogNewline()
	console.Successf("Created: %s", op.ZipName)
	if zs.Encrypted() {
		console.Info("Password protected: enabled")
	}
	console.Infof("Directory preserved: %s/", op.StagingName)

	return nil
}

// withoutArchive drops the archive itself when zip.file_name points inside
// the staging directory, so a rerun does not pack the previous archive
func (op *ArchiveOperation) withoutArchive(ctx context.Context, entries []archive.Entry) []archive.Entry {
	target := filepath.Clean(op.ArchivePath)
	kept := entries[:0]
	for _, e := range entries {
		if filepath.Clean(e.Path) == target {
			op.logger(ctx, op.Name()).Debug().Str("path", e.Path).Msg("skipping archive inside staging directory")
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
