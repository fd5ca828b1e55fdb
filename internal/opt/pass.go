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
)

// Kind discriminates the closed pass variant: analyses compute facts and
// must treat the function as read-only, transforms are the only kind
// allowed to mutate IR, utilities exist for diagnostics.
type Kind uint8

const (
    KindAnalysis Kind = iota
    KindTransform
    KindUtility
)

func (self Kind) String() string {
    switch self {
        case KindAnalysis  : return "analysis"
        case KindTransform : return "transform"
        case KindUtility   : return "utility"
        default            : return "invalid"
    }
}

// Analysis pass names.
const (
    AnalysisUseDef   = "use-def"
    AnalysisLiveness = "liveness"
)

// InvScope selects how much cached analysis state a transform tears down
// when it reports a change.
type InvScope uint8

const (
    InvAnalysis InvScope = iota // the single named analysis
    InvAllForFunc               // every analysis for the function
    InvCFGForFunc               // the CFG-dependent analyses for the function
)

type Invalidation struct {
    Scope InvScope
    Name  string
}

func InvalidateAnalysis(name string) Invalidation {
    return Invalidation { Scope: InvAnalysis, Name: name }
}

func InvalidateAll() Invalidation {
    return Invalidation { Scope: InvAllForFunc }
}

func InvalidateCFG() Invalidation {
    return Invalidation { Scope: InvCFGForFunc }
}

/* analyses torn down by the CFG-dependent scope; liveness today,
 * dominators and loops when they land */
var _CFGAnalyses = []string {
    AnalysisLiveness,
}

// Meta is the static pass metadata the manager schedules by. Invalidates
// is always empty for analyses.
type Meta struct {
    Name        string
    Requires    []string
    Invalidates []Invalidation
}

// Pass is the common surface of the three pass kinds. Concrete passes
// implement exactly one of Analysis, Transform or Utility on top of it.
type Pass interface {
    Meta() Meta
    Kind() Kind
}

// Analysis computes a per-function result served through the manager's
// cache. It must not mutate the function.
type Analysis interface {
    Pass
    Analyze(fn *il.Function) interface{}
}

// Transform mutates a function and reports whether it changed anything.
// A true return triggers the invalidations declared in Meta.
type Transform interface {
    Pass
    Transform(pm *PassManager, fn *il.Function) bool
}

// Utility performs diagnostics only; it participates in scheduling by name
// but never in invalidation.
type Utility interface {
    Pass
    Execute(pm *PassManager, fn *il.Function)
}
