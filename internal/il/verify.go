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

package il

import (
    `fmt`
)

// Verify checks the structural invariants of a function: every reachable
// block is terminated, no value has more than one definition, every operand
// refers to a defined value, and phi arities match their incoming edges.
// It does not check dominance; a verified function may still be rejected by
// the analyses on deeper grounds.
func Verify(fn *Function) error {
    if len(fn.Blocks) == 0 {
        return fmt.Errorf("il: function %s has no blocks", fn.Name)
    }

    /* parameters are implicit definitions */
    defs := make(map[Value]struct{}, fn.NumValues())
    for _, p := range fn.Params {
        defs[p] = struct{}{}
    }

    /* collect the definitions first, uses may precede their definition in
     * block order due to loops */
    for _, bb := range fn.Blocks {
        if bb.Term == nil {
            return fmt.Errorf("il: block bb_%d of %s is not terminated", bb.Id, fn.Name)
        }
        if !bb.Term.Op.IsTerminator() {
            return fmt.Errorf("il: block bb_%d of %s ends with non-terminator %s", bb.Id, fn.Name, bb.Term.Op)
        }
        for _, p := range bb.Ins {
            if p.Op.IsTerminator() {
                return fmt.Errorf("il: terminator %s in the middle of bb_%d of %s", p, bb.Id, fn.Name)
            }
            if p.R != None {
                if _, ok := defs[p.R]; ok {
                    return fmt.Errorf("il: multiple definitions of %s in %s", p.R, fn.Name)
                }
                defs[p.R] = struct{}{}
            }
        }
    }

    /* check the uses and the phi edges */
    for _, bb := range fn.Blocks {
        ins := append([]*Instruction(nil), bb.Ins...)
        ins = append(ins, bb.Term)
        for _, p := range ins {
            for _, u := range p.Args {
                if u.IsRef() {
                    if _, ok := defs[u.V]; !ok {
                        return fmt.Errorf("il: use of undefined value %s in %q of bb_%d of %s", u.V, p, bb.Id, fn.Name)
                    }
                }
            }
            if p.Op == OpPhi {
                if len(p.Args) != len(p.In) {
                    return fmt.Errorf("il: phi arity mismatch in bb_%d of %s: %d args, %d edges", bb.Id, fn.Name, len(p.Args), len(p.In))
                }
                for _, src := range p.In {
                    if !blockin(bb.Pred, src) {
                        return fmt.Errorf("il: phi edge from non-predecessor bb_%d in bb_%d of %s", src.Id, bb.Id, fn.Name)
                    }
                }
            }
        }
    }
    return nil
}

func blockin(bs []*BasicBlock, bb *BasicBlock) bool {
    for _, p := range bs {
        if p == bb {
            return true
        }
    }
    return false
}
