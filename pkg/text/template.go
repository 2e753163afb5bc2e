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

// Package text expands {{name}} placeholders in manifest path templates.
package text

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// ErrUndefinedVariable is returned when a template references a variable
// that is not present in the supplied mapping.
var ErrUndefinedVariable = errors.Base("undefined variable")

// ErrInvalidPlaceholder is returned when a placeholder holds anything other
// than a bare variable name, such as {{ user.name }}, {{name|upper}} or {{}}.
var ErrInvalidPlaceholder = errors.Base("invalid placeholder")

// 🔍 placeholderPattern matches every {{...}} span; the contents are checked
// against identPattern after trimming
var (
	placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)
	identPattern       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// 🎯 Render substitutes every placeholder in tmpl with its value from vars.
// Text outside placeholders is copied unchanged. A placeholder that is not a
// bare variable name fails with ErrInvalidPlaceholder instead of being left in
// the output.
func Render(tmpl string, vars map[string]any) (string, error) {
	var renderErr error
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		if renderErr != nil {
			return match
		}
		name := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])
		if !identPattern.MatchString(name) {
			renderErr = errors.Errorf("%w: %q in template %q", ErrInvalidPlaceholder, match, tmpl)
			return match
		}
		value, ok := vars[name]
		if !ok {
			renderErr = errors.Errorf("%w: %q in template %q", ErrUndefinedVariable, name, tmpl)
			return match
		}
		return FormatValue(value)
	})
	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}

// 📝 FormatValue renders a scalar variable the way it appears in a path.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
