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
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
)

// 📦 WritePlain writes entries into a deflate-compressed zip at target.
// Entries keep the modification time of their file. An empty entry list
// still produces a valid empty archive.
func WritePlain(ctx context.Context, target string, entries []Entry, onAdd AddFunc) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return wrap("creating directory for", target, err)
	}

	out, err := os.Create(target)
	if err != nil {
		return wrap("creating", target, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = wrap("closing", target, closeErr)
		}
	}()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = wrap("finalizing", target, closeErr)
		}
	}()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return wrap("writing", target, err)
		}
		if err := addPlain(zw, e); err != nil {
			return err
		}
		if onAdd != nil {
			if err := onAdd(ctx, e); err != nil {
				return err
			}
		}
	}

	zerolog.Ctx(ctx).Debug().Str("target", target).Int("entries", len(entries)).Msg("wrote plain archive")

	return nil
}

func addPlain(zw *zip.Writer, e Entry) error {
	f, err := os.Open(e.Path)
	if err != nil {
		return wrap("opening", e.Path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return wrap("reading info for", e.Path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return wrap("creating header for", e.Path, err)
	}
	header.Name = e.Name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return wrap("adding", e.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return wrap("compressing", e.Path, err)
	}
	return nil
}
