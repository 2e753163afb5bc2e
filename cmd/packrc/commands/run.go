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

package commands

import (
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/packrc/cmd/packrc/opts"
	"github.com/walteh/packrc/pkg/log"
	"github.com/walteh/packrc/pkg/operation"
)

// NewRunCmd creates a new run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Stage the files of a manifest and package them",
		Long: `Run copies every file rule of the manifest into the staging directory
and packages it into a zip archive.
It will:
1. Load the manifest and render its templates
2. Copy each rule's source into <base dir>/<archive stem>/<to>
3. Build the archive, password protected when zip.password is set
4. Write every copy and archived entry to the operation log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.Manifest = args[0]

			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())

			console := log.New(ctx, cmd.OutOrStdout(), o.Quiet)
			ctx = log.NewContext(ctx, console)

			console.Header("staging " + o.Manifest)

			res, err := operation.Run(ctx, operation.Options{
				ManifestPath: o.Manifest,
				LogPath:      o.LogPath,
				Clean:        o.Clean,
			})
			if err != nil {
				return err
			}

			if res.LogPath != "" {
				pterm.Info.WithWriter(cmd.OutOrStdout()).Printfln("Log saved: %s", res.LogPath)
			}

			return nil
		},
	}

	cmd.Flags().BoolP(opts.KeyQuiet, "q", false, "suppress progress output")
	cmd.Flags().String(opts.KeyLog, opts.DefaultLogPath, "operation log base name; the run timestamp is added, empty disables the log")
	cmd.Flags().Bool(opts.KeyClean, false, "remove the staging directory before copying")

	return cmd
}
