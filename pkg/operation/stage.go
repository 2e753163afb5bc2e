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
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/djherbis/times"
	"github.com/walteh/packrc/pkg/config"
	"github.com/walteh/packrc/pkg/log"
	"github.com/walteh/packrc/pkg/status"
	"github.com/walteh/packrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrSourceNotFound aborts a run when a rule points at a missing file.
var ErrSourceNotFound = errors.Base("source file not found")

// 📄 CopiedFile is one executed copy rule
type CopiedFile struct {
	Section     string
	Source      string // Resolved source path
	Destination string // Path inside the staging directory
}

// 📋 StageResult is what the copy phase did
type StageResult struct {
	StagingDir string
	Copied     []CopiedFile
	Skipped    []string // Sections of invalid rules
}

// 📦 StageOperation copies every valid rule into the staging directory
type StageOperation struct {
	BaseOperation
	result *StageResult
}

// 🏭 NewStageOperation creates a new stage operation
func NewStageOperation(plan *Plan) *StageOperation {
	return &StageOperation{
		BaseOperation: NewBaseOperation(plan),
	}
}

// Name implements Operation
func (op *StageOperation) Name() string { return "stage" }

// Result returns what the last Execute did
func (op *StageOperation) Result() *StageResult {
	return op.result
}

// 🏃 Execute runs the copy phase. Rules run in declaration order; invalid
// rules are skipped with a warning and the first missing source stops the
// phase.
func (op *StageOperation) Execute(ctx context.Context) error {
	logger := op.logger(ctx, op.Name())
	console := log.FromContext(ctx)

	res := &StageResult{StagingDir: op.StagingDir}
	op.result = res

	phase := log.Phase{Name: "staging", Target: op.StagingName + "/"}
	console.StartPhase(ctx, phase)
	defer console.EndPhase(ctx, phase)

	for _, rule := range op.Manifest.Rules {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("staging interrupted: %w", err)
		}

		if err := rule.Validate(); err != nil {
			logger.Debug().Err(err).Msg("skipping rule")
			console.Warningf("%s %s", rule.Section, rule.Reason())
			res.Skipped = append(res.Skipped, rule.Section)
			continue
		}

		copied, err := op.stageRule(ctx, rule)
		if err != nil {
			return errors.Errorf("%s: %w", rule.Section, err)
		}
		res.Copied = append(res.Copied, *copied)
	}

	logger.Debug().
		Int("copied", len(res.Copied)).
		Int("skipped", len(res.Skipped)).
		Msg("staging complete")

	return nil
}

// 📄 stageRule renders, resolves and copies one rule
func (op *StageOperation) stageRule(ctx context.Context, rule config.CopyRule) (*CopiedFile, error) {
	console := log.FromContext(ctx)

	from, err := text.Render(rule.From, op.Manifest.Variables)
	if err != nil {
		return nil, errors.Errorf("rendering from: %w", err)
	}
	to, err := text.Render(rule.To, op.Manifest.Variables)
	if err != nil {
		return nil, errors.Errorf("rendering to: %w", err)
	}

	src := from
	if !filepath.IsAbs(src) {
		src = filepath.Join(op.BaseDir, from)
	}
	dst := filepath.Join(op.StagingDir, to)

	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		console.Errorf("Source file not found: %s", src)
		return nil, errors.Errorf("%w: %s", ErrSourceNotFound, src)
	}

	if err := copyFile(src, dst); err != nil {
		return nil, err
	}

	if err := op.Journal.Record(ctx, status.OpCopy, src, dst); err != nil {
		return nil, errors.Errorf("journaling copy: %w", err)
	}

	console.LogFileOperation(ctx, log.FileOperation{
		Kind:        log.KindCopy,
		Source:      from,
		Destination: path.Join(op.StagingName, filepath.ToSlash(to)),
	})

	return &CopiedFile{Section: rule.Section, Source: src, Destination: dst}, nil
}

// 📄 copyFile copies content, permission bits, and access and modification
// times from src to dst, creating dst's parent directories
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("reading source info: %w", err)
	}
	if info.IsDir() {
		return errors.Errorf("source is a directory: %s", src)
	}

	// read before the copy touches the access time
	ts, err := times.Stat(src)
	if err != nil {
		return errors.Errorf("reading source times: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing destination: %w", err)
	}

	// O_CREATE applies umask and leaves existing files alone
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Errorf("copying permissions: %w", err)
	}

	if err := os.Chtimes(dst, ts.AccessTime(), ts.ModTime()); err != nil {
		return errors.Errorf("copying times: %w", err)
	}

	return nil
}
