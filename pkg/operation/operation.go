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

	"github.com/rs/zerolog"
	"github.com/walteh/packrc/pkg/config"
	"github.com/walteh/packrc/pkg/status"
	"github.com/walteh/packrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is one step of a run
type Operation interface {
	// Name identifies the operation in logs
	Name() string
	// Execute runs the operation
	Execute(ctx context.Context) error
}

// 🗺️ Plan is the resolved layout of a run, shared by every operation
type Plan struct {
	Manifest    *config.Manifest
	BaseDir     string          // Relative sources and the archive resolve against this
	ZipName     string          // Rendered zip.file_name
	StagingName string          // Stem of ZipName
	StagingDir  string          // BaseDir/StagingName
	ArchivePath string          // BaseDir/ZipName
	Journal     *status.Journal // May be nil
}

// 🏭 NewPlan renders the archive name and derives the staging layout
func NewPlan(m *config.Manifest, baseDir string, journal *status.Journal) (*Plan, error) {
	if m == nil {
		return nil, errors.Errorf("manifest is required")
	}

	zipName, err := text.Render(m.Zip.FileName, m.Variables)
	if err != nil {
		return nil, errors.Errorf("rendering zip file name: %w", err)
	}

	stem := config.StagingName(zipName)

	return &Plan{
		Manifest:    m,
		BaseDir:     baseDir,
		ZipName:     zipName,
		StagingName: stem,
		StagingDir:  filepath.Join(baseDir, stem),
		ArchivePath: filepath.Join(baseDir, zipName),
		Journal:     journal,
	}, nil
}

// 🧱 BaseOperation carries what every operation needs
type BaseOperation struct {
	*Plan
}

// 🏭 NewBaseOperation creates a base operation over a plan
func NewBaseOperation(plan *Plan) BaseOperation {
	return BaseOperation{Plan: plan}
}

// 📝 logger returns the context logger tagged with the operation name
func (op BaseOperation) logger(ctx context.Context, name string) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("operation", name).Logger()
	return &l
}
