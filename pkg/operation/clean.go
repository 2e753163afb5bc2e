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
	"os"

	"github.com/walteh/packrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🧹 CleanOperation removes the staging directory left by earlier runs
type CleanOperation struct {
	BaseOperation
}

// 🧹 NewCleanOperation creates a new clean operation
func NewCleanOperation(plan *Plan) *CleanOperation {
	return &CleanOperation{
		BaseOperation: NewBaseOperation(plan),
	}
}

// Name implements Operation
func (op *CleanOperation) Name() string { return "clean" }

// 🏃 Execute runs the clean operation
func (op *CleanOperation) Execute(ctx context.Context) error {
	logger := op.logger(ctx, op.Name())

	if _, err := os.Stat(op.StagingDir); errors.Is(err, os.ErrNotExist) {
		logger.Debug().Str("dir", op.StagingDir).Msg("nothing to clean")
		return nil
	}

	if err := os.RemoveAll(op.StagingDir); err != nil {
		return errors.Errorf("removing staging directory: %w", err)
	}

	logger.Debug().Str("dir", op.StagingDir).Msg("staging directory removed")
	log.FromContext(ctx).Infof("Cleaned: %s/", op.StagingName)

	return nil
}
