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

package opts

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/walteh/packrc/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix prefixes every environment variable read by packrc.
const EnvPrefix = "PACKRC"

// DefaultLogPath is the journal name used when --log is not given.
const DefaultLogPath = "operation.log"

// Setting keys, shared by flags and environment variables
const (
	KeyDebug = "debug"
	KeyQuiet = "quiet"
	KeyLog   = "log"
	KeyClean = "clean"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Debug    bool
	Quiet    bool
	LogPath  string
	Clean    bool
	Manifest string // Manifest given to the running command

	v *viper.Viper
}

// 🏭 New creates options backed by flags and PACKRC_* environment variables
func New() *RootOpts {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyLog, DefaultLogPath)
	v.SetDefault(KeyClean, false)

	return &RootOpts{v: v}
}

// 🔗 Bind binds the command's flags and resolves every setting. A flag set
// on the command line wins over the environment, which wins over defaults.
func (o *RootOpts) Bind(cmd *cobra.Command) error {
	if err := o.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Errorf("binding flags: %w", err)
	}

	o.Debug = o.v.GetBool(KeyDebug)
	o.Quiet = o.v.GetBool(KeyQuiet)
	o.LogPath = o.v.GetString(KeyLog)
	o.Clean = o.v.GetBool(KeyClean)

	return nil
}

// 💬 FailureMessage turns a fatal error into the one line shown to the user
func (o *RootOpts) FailureMessage(err error) string {
	if errors.Is(err, config.ErrManifestNotFound) && o.Manifest != "" {
		return "TOML file not found: " + o.Manifest
	}
	return err.Error()
}
