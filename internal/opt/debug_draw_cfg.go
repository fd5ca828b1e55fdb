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
    `os`
    `path/filepath`
    `sort`
    `strings`

    `github.com/ajstarks/svgo`
    `github.com/c65lang/c65/internal/il`
)

// DrawCFG renders each function's CFG with block-level liveness to an SVG
// under Dir, one file per function. It is a diagnostics utility; the
// pipeline registers it only when a dump directory is configured. As a
// utility it declares no dependencies and fetches liveness on demand.
type DrawCFG struct {
    Dir string
}

func (DrawCFG) Kind() Kind {
    return KindUtility
}

func (DrawCFG) Meta() Meta {
    return Meta { Name: "draw-cfg" }
}

const (
    _RowH   = 20
    _ColW   = 9
    _BoxPad = 10
    _BoxGap = 40
)

func setrepr(s ValueSet) string {
    vs := make([]string, 0, len(s))
    for v := range s {
        vs = append(vs, v.String())
    }
    sort.Strings(vs)
    return "{" + strings.Join(vs, ", ") + "}"
}

func (self DrawCFG) Execute(pm *PassManager, fn *il.Function) {
    lv := pm.Liveness(fn)
    fp, err := os.OpenFile(filepath.Join(self.Dir, fn.Name + ".svg"), os.O_RDWR | os.O_CREATE | os.O_TRUNC, 0644)
    if err != nil {
        panic(err)
    }
    defer fp.Close()

    /* lay the blocks out in one column, entry first */
    type _Box struct {
        y  int
        h  int
        bb *il.BasicBlock
    }
    maxw := 0
    boxes := make(map[int]*_Box, len(fn.Blocks))
    y := _BoxGap
    for _, bb := range fn.Blocks {
        lines := self.lines(bb, lv)
        for _, s := range lines {
            if len(s) > maxw {
                maxw = len(s)
            }
        }
        h := len(lines) * _RowH + 2 * _BoxPad
        boxes[bb.Id] = &_Box { y: y, h: h, bb: bb }
        y += h + _BoxGap
    }
    w := maxw * _ColW + 2 * _BoxPad

    p := svg.New(fp)
    p.Start(w + 2 * _BoxGap, y)
    p.Rect(0, 0, w + 2 * _BoxGap, y, "fill:white")

    /* draw every block */
    for _, bb := range fn.Blocks {
        box := boxes[bb.Id]
        p.Rect(_BoxGap, box.y, w, box.h, "fill:none;stroke:black")
        for i, s := range self.lines(bb, lv) {
            style := "fill:black;font-size:14px;font-family:monospace"
            if i == 0 {
                style = "fill:gray;font-size:14px;font-family:monospace"
            }
            p.Text(_BoxGap + _BoxPad, box.y + _BoxPad + (i + 1) * _RowH - 5, s, style)
        }
    }

    /* draw the edges along the left margin */
    for _, bb := range fn.Blocks {
        src := boxes[bb.Id]
        for _, t := range bb.Successors() {
            dst := boxes[t.Id]
            p.Line(_BoxGap, src.y + src.h, _BoxGap / 2, (src.y + src.h + dst.y) / 2, "stroke:gray")
            p.Line(_BoxGap / 2, (src.y + src.h + dst.y) / 2, _BoxGap, dst.y, "stroke:gray")
        }
    }
    p.End()
}

func (self DrawCFG) lines(bb *il.BasicBlock, lv *LivenessInfo) []string {
    blv := lv.BlockLiveness(bb)
    ret := make([]string, 0, len(bb.Ins) + 4)
    ret = append(ret, fmt.Sprintf("bb_%d", bb.Id))
    if blv != nil {
        ret = append(ret, "# live_in  = " + setrepr(blv.LiveIn))
        ret = append(ret, "# live_out = " + setrepr(blv.LiveOut))
    }
    for _, v := range bb.Ins {
        ret = append(ret, v.String())
    }
    if bb.Term != nil {
        ret = append(ret, bb.Term.String())
    }
    return ret
}
