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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOperation struct {
	name string
	err  error
	log  *[]string
}

func (op *recordingOperation) Name() string { return op.name }

func (op *recordingOperation) Execute(ctx context.Context) error {
	*op.log = append(*op.log, op.name)
	return op.err
}

func TestRunner(t *testing.T) {
	tests := []struct {
		name    string
		failAt  string
		want    []string
		wantErr bool
	}{
		{
			name: "runs_in_order",
			want: []string{"clean", "stage", "archive"},
		},
		{
			name:    "stops_at_first_error",
			failAt:  "stage",
			want:    []string{"clean", "stage"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zerolog.New(zerolog.NewTestWriter(t))
			var ran []string

			var ops []Operation
			for _, name := range []string{"clean", "stage", "archive"} {
				op := &recordingOperation{name: name, log: &ran}
				if name == tt.failAt {
					op.err = assert.AnError
				}
				ops = append(ops, op)
			}

			err := NewRunner(&logger).RunAll(context.Background(), ops...)
			if tt.wantErr {
				require.ErrorIs(t, err, assert.AnError)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, ran)
		})
	}
}

func TestRunnerCancelled(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran []string
	err := NewRunner(&logger).Run(ctx, &recordingOperation{name: "stage", log: &ran})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ran, "cancelled context should not execute the operation")
}
