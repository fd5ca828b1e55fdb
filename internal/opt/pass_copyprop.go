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

// CopyProp replaces uses of copy results with the ultimate copy source.
// Copy-like instructions are explicit copies and single-input phis, which
// are semantically pure copies. The now-dead copies themselves are left
// for DeadCode to collect.
type CopyProp struct{}

func (CopyProp) Kind() Kind {
    return KindTransform
}

func (CopyProp) Meta() Meta {
    return Meta {
        Name        : opts.PassCopyProp,
        Invalidates : []Invalidation {
            InvalidateAnalysis(AnalysisUseDef),
            InvalidateAnalysis(AnalysisLiveness),
        },
    }
}

func (self CopyProp) Transform(pm *PassManager, fn *il.Function) bool {
    copies := make(map[il.Value]il.Value)
    stats := pm.Stats().Of(opts.PassCopyProp)

    /* Phase 1: Identify the copy-like instructions */
    for _, bb := range fn.Blocks {
        for _, p := range bb.Ins {
            switch p.Op {
                case il.OpCopy: {
                    if p.Args[0].IsRef() {
                        copies[p.R] = p.Args[0].V
                    }
                }

                /* a phi with a single incoming edge, or whose inputs all
                 * name the same value, is a copy */
                case il.OpPhi: {
                    src := il.None
                    same := true
                    for _, a := range p.Args {
                        if !a.IsRef() || (src != il.None && a.V != src) {
                            same = false
                            break
                        }
                        src = a.V
                    }
                    if same && src != il.None && src != p.R {
                        copies[p.R] = src
                    }
                }
            }
        }
    }

    /* Phase 2: Resolve transitive chains; the map strictly shrinks the
     * distance of each entry to its root, bounding the loop */
    for i := 0; i <= len(copies); i++ {
        done := true
        for d, s := range copies {
            if s2, ok := copies[s]; ok && s2 != d {
                done = false
                copies[d] = s2
            }
        }
        if done {
            break
        }
    }

    /* Phase 3: Replace every operand found in the resolved map. A copy
     * counts as eliminated only when at least one use of it was actually
     * redirected; identified copies that nothing referenced do not. */
    changed := false
    elim := make(map[il.Value]struct{}, len(copies))
    for _, bb := range fn.Blocks {
        for _, p := range blockins(bb) {
            for _, u := range p.Uses() {
                if !u.IsRef() {
                    continue
                }
                if src, ok := copies[u.V]; ok && src != u.V {
                    *u = il.Ref(src)
                    changed = true
                    elim[u.V] = struct{}{}
                    stats.UsesReplaced++
                }
            }
        }
    }
    stats.CopiesEliminated += len(elim)
    return changed
}
