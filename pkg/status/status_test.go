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

package status

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.TraceLevel).WithContext(context.Background())
}

func TestJournal(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "logs", "operation.log")

	j, err := Open(ctx, path)
	require.NoError(t, err, "opening journal should succeed")
	assert.Equal(t, path, j.Path())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,operation,source,destination\n", string(content), "only the header after open")

	fixed := time.Date(2025, 1, 2, 15, 4, 5, 123456000, time.Local)
	j.now = func() time.Time { return fixed }

	require.NoError(t, j.Record(ctx, OpCopy, "/src/a.txt", "/stage/a.txt"))
	require.NoError(t, j.Record(ctx, OpZip, "/stage/a.txt", "a.txt"))

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"timestamp,operation,source,destination\n"+
			"2025-01-02T15:04:05.123456,copy,/src/a.txt,/stage/a.txt\n"+
			"2025-01-02T15:04:05.123456,zip,/stage/a.txt,a.txt\n",
		string(content))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OpCopy, entries[0].Operation)
	assert.Equal(t, "/stage/a.txt", entries[0].Destination)
	assert.True(t, fixed.Equal(entries[1].Timestamp), "timestamp should round trip")
}

func TestJournalTruncatesExisting(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "operation.log")
	require.NoError(t, os.WriteFile(path, []byte("old,stuff\n"), 0644))

	_, err := Open(ctx, path)
	require.NoError(t, err)

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournalQuotesFields(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "operation.log")

	j, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, j.Record(ctx, OpCopy, "dir, with comma/a.txt", `quote"d.txt`))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dir, with comma/a.txt", entries[0].Source)
	assert.Equal(t, `quote"d.txt`, entries[0].Destination)
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	assert.Equal(t, "", j.Path())
	assert.NoError(t, j.Record(context.Background(), OpCopy, "a", "b"))
	assert.NoError(t, j.Append(context.Background(), Entry{}))
}

func TestJournalAppendAfterRemoval(t *testing.T) {
	ctx := testContext(t)
	path := filepath.Join(t.TempDir(), "operation.log")

	j, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	err = j.Record(ctx, OpCopy, "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening journal")
}

func TestLogPath(t *testing.T) {
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.Local)

	tests := []struct {
		base string
		want string
	}{
		{"operation.log", "operation_20250102_150405.log"},
		{"logs/operation.log", filepath.Join("logs", "operation_20250102_150405.log")},
		{"/var/log/run.csv", filepath.Join("/var/log", "run_20250102_150405.csv")},
		{"noext", "noext_20250102_150405"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, LogPath(tt.base, now))
		})
	}
}
