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
    `github.com/c65lang/c65/internal/il`
    `github.com/c65lang/c65/internal/opt`
    `github.com/c65lang/c65/internal/opts`
)

// Result reports what the optimizer did to a module.
type Result = opt.Result

// Optimize runs the middle-end pass pipeline over m, mutating it in place.
// The module comes from IL generation and goes to code generation; both
// stages live in the driver, this is the stage in between.
func Optimize(m *il.Module, options ...Option) (Result, error) {
    o := opts.New(opts.O2)
    for _, fn := range options {
        fn(&o)
    }
    return opt.Optimize(m, o)
}
