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
    `fmt`
    `sort`
    `strings`

    `github.com/c65lang/c65/internal/il`
)

// PassStats accumulates the per-pass counters reported to the external
// statistics layer.
type PassStats struct {
    InstructionsRemoved int
    BlocksRemoved       int
    UsesReplaced        int
    CopiesEliminated    int
    FoldsByOpcode       map[il.Opcode]int
}

func (self *PassStats) Fold(op il.Opcode) {
    if self.FoldsByOpcode == nil {
        self.FoldsByOpcode = make(map[il.Opcode]int)
    }
    self.FoldsByOpcode[op]++
}

func (self *PassStats) Folds() int {
    n := 0
    for _, v := range self.FoldsByOpcode {
        n += v
    }
    return n
}

// Statistics aggregates PassStats by pass name across a whole module run.
type Statistics struct {
    Passes map[string]*PassStats
}

func newStatistics() *Statistics {
    return &Statistics {
        Passes: make(map[string]*PassStats),
    }
}

// Of returns the counters for the named pass, creating them on first use.
func (self *Statistics) Of(name string) *PassStats {
    if p, ok := self.Passes[name]; ok {
        return p
    }
    p := new(PassStats)
    self.Passes[name] = p
    return p
}

func (self *Statistics) String() string {
    names := make([]string, 0, len(self.Passes))
    for name := range self.Passes {
        names = append(names, name)
    }
    sort.Strings(names)

    /* one line per pass */
    buf := make([]string, 0, len(names))
    for _, name := range names {
        p := self.Passes[name]
        buf = append(buf, fmt.Sprintf(
            "%-12s ins_removed=%d blocks_removed=%d folds=%d uses_replaced=%d copies=%d",
            name,
            p.InstructionsRemoved,
            p.BlocksRemoved,
            p.Folds(),
            p.UsesReplaced,
            p.CopiesEliminated,
        ))
    }
    return strings.Join(buf, "\n")
}
