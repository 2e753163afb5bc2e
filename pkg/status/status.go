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
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Operation is the kind of action recorded in the journal
type Operation string

const (
	OpCopy Operation = "copy" // File copied into the staging directory
	OpZip  Operation = "zip"  // File added to the archive
)

// TimestampLayout is the local ISO-8601 form written in the timestamp column.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// 🧾 header is the first row of every journal
var header = []string{"timestamp", "operation", "source", "destination"}

// 📄 Entry is one journal row
type Entry struct {
	Timestamp   time.Time
	Operation   Operation
	Source      string
	Destination string
}

func (e Entry) record() []string {
	return []string{
		e.Timestamp.Format(TimestampLayout),
		string(e.Operation),
		e.Source,
		e.Destination,
	}
}

// 📒 Journal is the append-only CSV log of a run. Every append opens the
// file, writes one row and closes it again, so a crash loses at most the
// entry being written.
//
// A nil *Journal is valid and discards everything.
type Journal struct {
	path string
	now  func() time.Time
}

// 🏭 Open creates the journal at path, truncating any existing file, and
// writes the header row
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Errorf("creating journal directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Errorf("creating journal: %w", err)
	}
	if err := writeRecord(f, header); err != nil {
		f.Close()
		return nil, errors.Errorf("writing journal header: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, errors.Errorf("closing journal: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("journal opened")

	return &Journal{path: path, now: time.Now}, nil
}

// 📍 Path returns the journal file path, or "" for a nil journal
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// 📝 Record appends an entry stamped with the current time
func (j *Journal) Record(ctx context.Context, op Operation, source, destination string) error {
	if j == nil {
		return nil
	}
	return j.Append(ctx, Entry{
		Timestamp:   j.now(),
		Operation:   op,
		Source:      source,
		Destination: destination,
	})
}

// 📝 Append writes one entry and closes the file before returning
func (j *Journal) Append(ctx context.Context, e Entry) error {
	if j == nil {
		return nil
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Errorf("opening journal: %w", err)
	}
	if err := writeRecord(f, e.record()); err != nil {
		f.Close()
		return errors.Errorf("appending to journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing journal: %w", err)
	}

	zerolog.Ctx(ctx).Trace().
		Str("operation", string(e.Operation)).
		Str("source", e.Source).
		Str("destination", e.Destination).
		Msg("journal entry")

	return nil
}

func writeRecord(w io.Writer, record []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// 📖 Read parses a journal file back into entries, skipping the header
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Errorf("reading journal: %w", err)
	}
	if len(records) == 0 || strings.Join(records[0], ",") != strings.Join(header, ",") {
		return nil, errors.Errorf("reading journal: missing header")
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		ts, err := time.ParseInLocation(TimestampLayout, rec[0], time.Local)
		if err != nil {
			return nil, errors.Errorf("reading journal: row %d: %w", i+1, err)
		}
		entries = append(entries, Entry{
			Timestamp:   ts,
			Operation:   Operation(rec[1]),
			Source:      rec[2],
			Destination: rec[3],
		})
	}
	return entries, nil
}

// 📝 LogPath inserts the run timestamp into the journal file name:
// "logs/operation.log" becomes "logs/operation_20250102_150405.log"
func LogPath(base string, now time.Time) string {
	dir := filepath.Dir(base)
	name := filepath.Base(base)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	return filepath.Join(dir, stem+"_"+now.Format("20060102_150405")+ext)
}
