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
    `github.com/oleiade/lane`
)

type _IterFrame struct {
    i  int
    bb *BasicBlock
}

// BasicBlockIter walks the blocks reachable from the entry block in
// post-order, depth first.
type BasicBlockIter struct {
    b *BasicBlock
    s *lane.Stack
    v map[int]struct{}
}

func PostOrder(fn *Function) *BasicBlockIter {
    s := lane.NewStack()
    s.Push(&_IterFrame { bb: fn.Entry() })
    return &BasicBlockIter {
        s: s,
        v: map[int]struct{} { fn.Entry().Id: {} },
    }
}

func (self *BasicBlockIter) Next() bool {
    for !self.s.Empty() {
        tail := true
        this := self.s.Head().(*_IterFrame)

        /* push the first unvisited successor */
        for succ := this.bb.Successors(); this.i < len(succ); {
            p := succ[this.i]
            this.i++
            if _, ok := self.v[p.Id]; !ok {
                tail = false
                self.v[p.Id] = struct{}{}
                self.s.Push(&_IterFrame { bb: p })
                break
            }
        }

        /* all the successors are visited, pop the current node */
        if tail {
            self.b = self.s.Pop().(*_IterFrame).bb
            return true
        }
    }

    /* clear the basic block pointer to indicate no more blocks */
    self.b = nil
    return false
}

func (self *BasicBlockIter) Block() *BasicBlock {
    return self.b
}

func (self *BasicBlockIter) ForEach(action func(bb *BasicBlock)) {
    for self.Next() {
        action(self.b)
    }
}

// Reversed drains the iterator and returns the blocks in reverse
// post-order, the natural visiting order for forward sweeps.
func (self *BasicBlockIter) Reversed() []*BasicBlock {
    ret := make([]*BasicBlock, 0, 16)
    for self.Next() {
        ret = append(ret, self.b)
    }
    for i, j := 0, len(ret) - 1; i < j; i, j = i + 1, j - 1 {
        ret[i], ret[j] = ret[j], ret[i]
    }
    return ret
}

// ReversePostOrder is a convenience wrapper over PostOrder().Reversed().
func ReversePostOrder(fn *Function) []*BasicBlock {
    return PostOrder(fn).Reversed()
}
