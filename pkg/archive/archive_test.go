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
	"testing"
	"time"

	kzip "github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeka/zip"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).WithContext(context.Background())
}

// stage creates files under a fresh directory and returns it
func stage(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestCollect(t *testing.T) {
	files := map[string]string{
		"b.txt":          "b",
		"a.txt":          "a",
		"sub/c.txt":      "c",
		"sub/deep/d.log": "d",
		"sub/skip.tmp":   "tmp",
	}

	tests := []struct {
		name    string
		exclude []string
		want    []string
		wantErr bool
	}{
		{
			name: "all_files_sorted",
			want: []string{"a.txt", "b.txt", "sub/c.txt", "sub/deep/d.log", "sub/skip.tmp"},
		},
		{
			name:    "exclude_by_extension",
			exclude: []string{"**/*.tmp", "**/*.log"},
			want:    []string{"a.txt", "b.txt", "sub/c.txt"},
		},
		{
			name:    "exclude_directory",
			exclude: []string{"sub/**"},
			want:    []string{"a.txt", "b.txt"},
		},
		{
			name:    "invalid_pattern",
			exclude: []string{"[unclosed"},
			wantErr: true,
		},
	}

	root := stage(t, files)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Collect(testContext(t), root, tt.exclude)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrArchive), "error should be ErrArchive")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(entries))
			for _, e := range entries {
				assert.Equal(t, filepath.Join(root, filepath.FromSlash(e.Name)), e.Path)
			}
		})
	}
}

func TestCollectMissingRoot(t *testing.T) {
	entries, err := Collect(testContext(t), filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWritePlain(t *testing.T) {
	ctx := testContext(t)
	root := stage(t, map[string]string{"a.txt": "alpha", "sub/b.txt": "bravo"})

	mtime := time.Date(2024, 3, 4, 5, 6, 8, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.txt"), mtime, mtime))

	entries, err := Collect(ctx, root, nil)
	require.NoError(t, err)

	var added []string
	target := filepath.Join(t.TempDir(), "dist", "out.zip")
	err = WritePlain(ctx, target, entries, func(_ context.Context, e Entry) error {
		added = append(added, e.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, added, "callback should see every entry in order")

	r, err := kzip.OpenReader(target)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 2, "archive should contain exactly the staged files")
	contents := map[string]string{}
	for _, f := range r.File {
		assert.Equal(t, kzip.Deflate, f.Method, "entries should be deflated")
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = string(data)
	}
	assert.Equal(t, map[string]string{"a.txt": "alpha", "sub/b.txt": "bravo"}, contents)
	assert.Equal(t, mtime.Unix(), r.File[0].Modified.Unix(), "entry should keep the file modification time")
}

func TestWritePlainEmpty(t *testing.T) {
	target := filepath.Join(t.TempDir(), "empty.zip")
	require.NoError(t, WritePlain(testContext(t), target, nil, nil))

	r, err := kzip.OpenReader(target)
	require.NoError(t, err)
	defer r.Close()
	assert.Empty(t, r.File)
}

func TestWritePlainCallbackError(t *testing.T) {
	ctx := testContext(t)
	root := stage(t, map[string]string{"a.txt": "a", "b.txt": "b"})
	entries, err := Collect(ctx, root, nil)
	require.NoError(t, err)

	calls := 0
	err = WritePlain(ctx, filepath.Join(t.TempDir(), "out.zip"), entries, func(context.Context, Entry) error {
		calls++
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls, "writing should stop at the first callback error")
}

func TestWriteEncrypted(t *testing.T) {
	tests := []struct {
		name   string
		method string
	}{
		{name: "zipcrypto_default", method: ""},
		{name: "zipcrypto", method: ZipCrypto},
		{name: "aes256", method: AES256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			root := stage(t, map[string]string{"a.txt": "alpha", "sub/b.txt": "bravo"})
			entries, err := Collect(ctx, root, nil)
			require.NoError(t, err)

			var added []string
			target := filepath.Join(t.TempDir(), "secret.zip")
			err = WriteEncrypted(ctx, target, entries, "hunter2", tt.method, func(_ context.Context, e Entry) error {
				added = append(added, e.Name)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"a.txt", "sub/b.txt"}, added)

			r, err := zip.OpenReader(target)
			require.NoError(t, err)
			defer r.Close()

			require.Len(t, r.File, 2)
			for _, f := range r.File {
				assert.True(t, f.IsEncrypted(), "entry %s should be encrypted", f.Name)
				assert.Equal(t, zip.Deflate, f.Method, "entry %s should be deflated", f.Name)
				f.SetPassword("hunter2")
				rc, err := f.Open()
				require.NoError(t, err)
				data, err := io.ReadAll(rc)
				rc.Close()
				require.NoError(t, err)
				assert.Equal(t, map[string]string{"a.txt": "alpha", "sub/b.txt": "bravo"}[f.Name], string(data))
			}
		})
	}
}

func TestWriteEncryptedWrongPassword(t *testing.T) {
	ctx := testContext(t)
	root := stage(t, map[string]string{"a.txt": "alpha alpha alpha"})
	entries, err := Collect(ctx, root, nil)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "secret.zip")
	require.NoError(t, WriteEncrypted(ctx, target, entries, "hunter2", AES256, nil))

	r, err := zip.OpenReader(target)
	require.NoError(t, err)
	defer r.Close()
	require.Len(t, r.File, 1)

	f := r.File[0]
	f.SetPassword("wrong")
	rc, err := f.Open()
	if err == nil {
		_, err = io.ReadAll(rc)
		rc.Close()
	}
	assert.Error(t, err, "reading with the wrong password should fail")
}

func TestWriteEncryptedEmpty(t *testing.T) {
	target := filepath.Join(t.TempDir(), "secret.zip")
	called := false
	err := WriteEncrypted(testContext(t), target, nil, "hunter2", "", func(context.Context, Entry) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.NoFileExists(t, target, "empty entry list should not create an archive")
}

func TestMethod(t *testing.T) {
	tests := []struct {
		name    string
		want    zip.EncryptionMethod
		wantErr bool
	}{
		{"", zip.StandardEncryption, false},
		{"zipcrypto", zip.StandardEncryption, false},
		{"AES128", zip.AES128Encryption, false},
		{"aes192", zip.AES192Encryption, false},
		{"aes256", zip.AES256Encryption, false},
		{"rot13", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Method(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrArchive))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
