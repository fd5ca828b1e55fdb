/*
 * Copyright 2025 C65 Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package opts

import (
    `github.com/xyproto/env/v2`
)

// New derives the default options for a level. Debug-oriented knobs can be
// flipped from the environment without touching the build, which is how
// the driver is usually poked at during compiler bring-up.
func New(level Level) Options {
    return Options {
        Level                  : level,
        Target                 : env.Str("C65_TARGET", "mos6502"),
        Verbose                : env.Bool("C65_OPT_VERBOSE"),
        DumpAfterEachPass      : env.Bool("C65_OPT_DUMP_PASSES"),
        ValidateAfterTransform : env.Bool("C65_OPT_VALIDATE"),
        DumpDir                : env.Str("C65_OPT_DUMP_DIR", ""),
    }
}

// Merge layers explicitly set user fields over the environment defaults
// for the user's level.
func Merge(user Options) Options {
    ret := New(user.Level)

    /* tri-state overrides carry over verbatim */
    ret.EnableDCE = user.EnableDCE
    ret.EnableConstFold = user.EnableConstFold
    ret.EnableConstProp = user.EnableConstProp
    ret.EnableCopyProp = user.EnableCopyProp

    /* explicit user settings win over the environment */
    if user.Target != "" {
        ret.Target = user.Target
    }
    if user.DumpDir != "" {
        ret.DumpDir = user.DumpDir
    }
    ret.Verbose = ret.Verbose || user.Verbose
    ret.DumpAfterEachPass = ret.DumpAfterEachPass || user.DumpAfterEachPass
    ret.ValidateAfterTransform = ret.ValidateAfterTransform || user.ValidateAfterTransform
    return ret
}
