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
	"strings"

	"github.com/rs/zerolog"
	"github.com/yeka/zip"
	"gitlab.com/tozd/go/errors"
)

// 🔐 Encryption method names accepted by WriteEncrypted
const (
	ZipCrypto = "zipcrypto"
	AES128    = "aes128"
	AES192    = "aes192"
	AES256    = "aes256"
)

var methods = map[string]zip.EncryptionMethod{
	ZipCrypto: zip.StandardEncryption,
	AES128:    zip.AES128Encryption,
	AES192:    zip.AES192Encryption,
	AES256:    zip.AES256Encryption,
}

// 🔐 Method resolves an encryption method name; "" means zipcrypto
func Method(name string) (zip.EncryptionMethod, error) {
	if name == "" {
		return zip.StandardEncryption, nil
	}
	m, ok := methods[strings.ToLower(name)]
	if !ok {
		return 0, errors.Errorf("%w: unknown encryption method %q", ErrArchive, name)
	}
	return m, nil
}

// 🔐 WriteEncrypted writes every entry, password protected, into a single
// zip at target. An empty entry list is a no-op: no file is created.
func WriteEncrypted(ctx context.Context, target string, entries []Entry, password, method string, onAdd AddFunc) (err error) {
	if len(entries) == 0 {
		zerolog.Ctx(ctx).Debug().Str("target", target).Msg("no entries, skipping encrypted archive")
		return nil
	}

	enc, err := Method(method)
	if err != nil {
		return err
	}

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
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = wrap("finalizing", target, closeErr)
		}
	}()

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return wrap("writing", target, err)
		}
		if err := addEncrypted(zw, e, password, enc); err != nil {
			return err
		}
		if onAdd != nil {
			if err := onAdd(ctx, e); err != nil {
				return err
			}
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("target", target).
		Int("entries", len(entries)).
		Str("method", method).
		Msg("wrote encrypted archive")

	return nil
}

func addEncrypted(zw *zip.Writer, e Entry, password string, enc zip.EncryptionMethod) error {
	f, err := os.Open(e.Path)
	if err != nil {
		return wrap("opening", e.Path, err)
	}
	defer f.Close()

	w, err := zw.Encrypt(e.Name, password, enc)
	if err != nil {
		return wrap("adding", e.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return wrap("encrypting", e.Path, err)
	}
	return nil
}
