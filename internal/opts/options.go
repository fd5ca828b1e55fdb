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
    `fmt`
)

// Level is the optimization level preset. Os and Oz optimize for size; at
// the middle-end they enable the same scalar passes as O2, the difference
// lives in the code generator.
type Level int

const (
    O0 Level = 0
    O1 Level = 1
    O2 Level = 2
    O3 Level = 3
    Os Level = 10
    Oz Level = 11
)

func (self Level) String() string {
    switch self {
        case O0 : return "O0"
        case O1 : return "O1"
        case O2 : return "O2"
        case O3 : return "O3"
        case Os : return "Os"
        case Oz : return "Oz"
        default : return fmt.Sprintf("O?(%d)", int(self))
    }
}

// Canonical transform pass names, shared between the configuration layer
// and the pass registry.
const (
    PassDCE       = "dce"
    PassConstFold = "const-fold"
    PassConstProp = "const-prop"
    PassCopyProp  = "copy-prop"
)

/* scalar passes enabled from O1 up; O2/O3 additionally schedule the
 * target peephole and loop pipelines, which live past the middle-end */
var _ScalarPasses = []string {
    PassConstProp,
    PassConstFold,
    PassCopyProp,
    PassDCE,
}

// Passes returns the ordered transform preset for the level.
func (self Level) Passes() []string {
    switch self {
        case O0 : return nil
        default : return _ScalarPasses
    }
}

// Options is the external configuration of the optimizer. The Enable*
// fields are tri-state: nil defers to the level preset, a non-nil value
// overrides it either way.
type Options struct {
    Level                  Level
    EnableDCE              *bool
    EnableConstFold        *bool
    EnableConstProp        *bool
    EnableCopyProp         *bool
    Target                 string
    Verbose                bool
    DumpAfterEachPass      bool
    ValidateAfterTransform bool
    DumpDir                string
}

// Bool is a convenience for filling the tri-state override fields.
func Bool(v bool) *bool {
    return &v
}

func (self *Options) override(name string) *bool {
    switch name {
        case PassDCE       : return self.EnableDCE
        case PassConstFold : return self.EnableConstFold
        case PassConstProp : return self.EnableConstProp
        case PassCopyProp  : return self.EnableCopyProp
        default            : return nil
    }
}

// IsPassEnabled resolves whether the named transform runs: an explicit
// override wins, otherwise membership in the level preset decides.
func (self *Options) IsPassEnabled(name string) bool {
    if v := self.override(name); v != nil {
        return *v
    }
    for _, p := range self.Level.Passes() {
        if p == name {
            return true
        }
    }
    return false
}
