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

package c65

import (
    `fmt`

    `github.com/c65lang/c65/internal/opts`
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// Optimization levels accepted by WithLevel.
const (
    O0 = opts.O0
    O1 = opts.O1
    O2 = opts.O2
    O3 = opts.O3
    Os = opts.Os
    Oz = opts.Oz
)

// WithLevel selects the optimization level preset.
//
// The default level is "O2".
func WithLevel(level opts.Level) Option {
    switch level {
        case O0, O1, O2, O3, Os, Oz: {
            return func(o *opts.Options) { o.Level = level }
        }
        default: {
            panic(fmt.Sprintf("c65: invalid optimization level: %d", int(level)))
        }
    }
}

// WithPass enables or disables one transform pass by name, overriding the
// level preset either way. Valid names are "dce", "const-fold",
// "const-prop" and "copy-prop".
func WithPass(name string, enabled bool) Option {
    switch name {
        case opts.PassDCE       : return func(o *opts.Options) { o.EnableDCE = opts.Bool(enabled) }
        case opts.PassConstFold : return func(o *opts.Options) { o.EnableConstFold = opts.Bool(enabled) }
        case opts.PassConstProp : return func(o *opts.Options) { o.EnableConstProp = opts.Bool(enabled) }
        case opts.PassCopyProp  : return func(o *opts.Options) { o.EnableCopyProp = opts.Bool(enabled) }
        default                 : panic(fmt.Sprintf("c65: unknown pass: %q", name))
    }
}

// WithTarget selects the target CPU variant.
//
// This value can also be configured with the `C65_TARGET` environment
// variable. The default target is "mos6502".
func WithTarget(target string) Option {
    if target == "" {
        panic("c65: empty target name")
    }
    return func(o *opts.Options) { o.Target = target }
}

// WithVerbose makes the optimizer print per-pass statistics to stderr after
// every run.
//
// This can also be enabled with the `C65_OPT_VERBOSE` environment variable.
func WithVerbose() Option {
    return func(o *opts.Options) { o.Verbose = true }
}

// WithPassDump makes the optimizer print the IL of a function after every
// transform that changed it.
//
// This can also be enabled with the `C65_OPT_DUMP_PASSES` environment
// variable.
func WithPassDump() Option {
    return func(o *opts.Options) { o.DumpAfterEachPass = true }
}

// WithValidation re-verifies the IL after every transform that reported a
// change. Meant for compiler development; a verification failure aborts the
// run with an error naming the offending pass.
//
// This can also be enabled with the `C65_OPT_VALIDATE` environment variable.
func WithValidation() Option {
    return func(o *opts.Options) { o.ValidateAfterTransform = true }
}

// WithDumpDir makes the optimizer render each function's CFG with liveness
// annotations as SVG files under dir.
//
// This can also be configured with the `C65_OPT_DUMP_DIR` environment
// variable.
func WithDumpDir(dir string) Option {
    return func(o *opts.Options) { o.DumpDir = dir }
}
