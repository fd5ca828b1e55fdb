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
    `github.com/oleiade/lane`
)

// DeadCode removes instructions whose results are never used and blocks
// the entry can never reach. The instruction worklist cascades: deleting a
// consumer may leave its sole producer dead in turn. Side-effecting
// instructions are never candidates, whatever their use counts.
type DeadCode struct{}

func (DeadCode) Kind() Kind {
    return KindTransform
}

func (DeadCode) Meta() Meta {
    return Meta {
        Name        : opts.PassDCE,
        Requires    : []string { AnalysisUseDef },
        Invalidates : []Invalidation {
            InvalidateAll(),
        },
    }
}

/* an instruction is removable when nothing reads its result and it has no
 * effect beyond producing it */
func removable(p *il.Instruction) bool {
    return p.R != il.None && !p.Op.HasEffects()
}

func (self DeadCode) Transform(pm *PassManager, fn *il.Function) bool {
    ud := pm.UseDef(fn)
    stats := pm.Stats().Of(opts.PassDCE)

    /* Phase 1: Seed the worklist with every unused pure definition */
    q := lane.NewQueue()
    counts := make(map[il.Value]int, fn.NumValues())
    for _, bb := range fn.Blocks {
        for _, p := range blockins(bb) {
            for _, a := range p.Args {
                if a.IsRef() {
                    counts[a.V]++
                }
            }
        }
    }
    for _, bb := range fn.Blocks {
        for _, p := range bb.Ins {
            if removable(p) && counts[p.R] == 0 {
                q.Enqueue(p)
            }
        }
    }

    /* Phase 2: Drain the worklist, decrementing the local use counts and
     * cascading into producers that just became dead */
    dead := make(map[*il.Instruction]struct{})
    for !q.Empty() {
        p := q.Dequeue().(*il.Instruction)
        if _, ok := dead[p]; ok {
            continue
        }
        dead[p] = struct{}{}
        for _, a := range p.Args {
            if !a.IsRef() {
                continue
            }
            counts[a.V]--
            if counts[a.V] != 0 {
                continue
            }
            if d, ok := ud.Definition(a.V); ok && d.Ins != nil && removable(d.Ins) {
                q.Enqueue(d.Ins)
            }
        }
    }

    /* Phase 3: Rebuild the instruction lists without the dead entries */
    changed := false
    for _, bb := range fn.Blocks {
        ins := bb.Ins[:0]
        for _, p := range bb.Ins {
            if _, ok := dead[p]; !ok {
                ins = append(ins, p)
            } else {
                changed = true
                stats.InstructionsRemoved++
            }
        }
        bb.Ins = ins
    }

    /* Phase 4: Drop the blocks the entry cannot reach; this never needs to
     * interleave with instruction cleanup */
    if self.removeUnreachable(fn, stats) {
        changed = true
    }
    return changed
}

func (self DeadCode) removeUnreachable(fn *il.Function, stats *PassStats) bool {
    s := lane.NewStack()
    live := make(map[int]struct{}, len(fn.Blocks))

    /* forward reachability from the entry block */
    s.Push(fn.Entry())
    live[fn.Entry().Id] = struct{}{}
    for !s.Empty() {
        bb := s.Pop().(*il.BasicBlock)
        for _, p := range bb.Successors() {
            if _, ok := live[p.Id]; !ok {
                live[p.Id] = struct{}{}
                s.Push(p)
            }
        }
    }
    if len(live) == len(fn.Blocks) {
        return false
    }

    /* drop the dead blocks and their incoming phi edges */
    blocks := fn.Blocks[:0]
    for _, bb := range fn.Blocks {
        if _, ok := live[bb.Id]; ok {
            blocks = append(blocks, bb)
        } else {
            stats.BlocksRemoved++
            stats.InstructionsRemoved += len(bb.Ins)
            for _, p := range bb.Successors() {
                if _, ok := live[p.Id]; ok {
                    p.RemovePred(bb)
                }
            }
        }
    }
    fn.Blocks = blocks
    return true
}
