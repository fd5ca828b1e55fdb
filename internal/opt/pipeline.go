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

package opt

import (
    `github.com/c65lang/c65/internal/il`
    `github.com/c65lang/c65/internal/opts`
)

/* default registration order; the scheduler refines it along the declared
 * dependencies, and the level presets select from it */
func registerDefaultPasses(pm *PassManager) error {
    passes := []Pass {
        UseDef{},
        Liveness{},
        ConstProp{},
        ConstFold{},
        CopyProp{},
        DeadCode{},
    }
    if dir := pm.Options().DumpDir; dir != "" {
        passes = append(passes, DrawCFG { Dir: dir })
    }
    for _, p := range passes {
        if err := pm.Register(p); err != nil {
            return err
        }
    }
    return nil
}

// Optimize runs the configured pipeline over the module, mutating it in
// place, and reports whether anything changed alongside the per-pass
// statistics. The result is a pure function of (module, options): same
// inputs, same outputs, no retries.
func Optimize(m *il.Module, o opts.Options) (Result, error) {
    pm := NewPassManager(opts.Merge(o))
    if err := registerDefaultPasses(pm); err != nil {
        return Result { Stats: pm.Stats() }, err
    }
    return pm.Run(m)
}
