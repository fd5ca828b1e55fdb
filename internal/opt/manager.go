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
    `strings`

    `github.com/c65lang/c65/internal/il`
    `github.com/c65lang/c65/internal/opts`
    `github.com/davecgh/go-spew/spew`
)

type _CacheKey struct {
    name string
    fn   int
}

// Result is what the code generation stage consumes alongside the mutated
// module.
type Result struct {
    Modified bool
    Stats    *Statistics
}

// PassManager owns the pass registry and the per-function analysis cache.
// One instance serves one compilation; nothing is shared across instances,
// so no locking is involved.
type PassManager struct {
    opts   opts.Options
    stats  *Statistics
    order  []string
    passes map[string]Pass
    cache  map[_CacheKey]interface{}
}

func NewPassManager(o opts.Options) *PassManager {
    return &PassManager {
        opts   : o,
        stats  : newStatistics(),
        passes : make(map[string]Pass),
        cache  : make(map[_CacheKey]interface{}),
    }
}

func (self *PassManager) Options() *opts.Options {
    return &self.opts
}

func (self *PassManager) Stats() *Statistics {
    return self.stats
}

// Register adds a pass to the registry. Registering two passes under one
// name is a configuration error.
func (self *PassManager) Register(p Pass) error {
    name := p.Meta().Name
    if name == "" {
        return fmt.Errorf("opt: cannot register a pass with an empty name")
    }
    if _, ok := self.passes[name]; ok {
        return fmt.Errorf("opt: pass %q is already registered", name)
    }
    self.order = append(self.order, name)
    self.passes[name] = p
    return nil
}

// GetAnalysis returns the result of the named analysis for fn, computing
// and caching it on a miss. Requesting an unregistered pass or a pass that
// is not an analysis is a bug in the calling transform and panics.
func (self *PassManager) GetAnalysis(name string, fn *il.Function) interface{} {
    key := _CacheKey { name: name, fn: fn.Id }
    if r, ok := self.cache[key]; ok {
        return r
    }

    /* a miss must resolve to a registered analysis */
    p, ok := self.passes[name]
    if !ok {
        panic(fmt.Sprintf("opt: analysis %q is not registered", name))
    }
    a, ok := p.(Analysis)
    if !ok {
        panic(fmt.Sprintf("opt: pass %q is a %s, not an analysis", name, p.Kind()))
    }

    r := a.Analyze(fn)
    self.cache[key] = r
    return r
}

// UseDef is the typed accessor for the use-def analysis.
func (self *PassManager) UseDef(fn *il.Function) *UseDefInfo {
    return self.GetAnalysis(AnalysisUseDef, fn).(*UseDefInfo)
}

// Liveness is the typed accessor for the liveness analysis.
func (self *PassManager) Liveness(fn *il.Function) *LivenessInfo {
    return self.GetAnalysis(AnalysisLiveness, fn).(*LivenessInfo)
}

// Invalidate applies one invalidation record for fn.
func (self *PassManager) Invalidate(iv Invalidation, fn *il.Function) {
    switch iv.Scope {
        default: {
            panic(fmt.Sprintf("opt: invalid invalidation scope: %d", iv.Scope))
        }

        /* a single named analysis */
        case InvAnalysis: {
            delete(self.cache, _CacheKey { name: iv.Name, fn: fn.Id })
        }

        /* everything cached for this function */
        case InvAllForFunc: {
            for key := range self.cache {
                if key.fn == fn.Id {
                    delete(self.cache, key)
                }
            }
        }

        /* the fixed CFG-dependent subset */
        case InvCFGForFunc: {
            for _, name := range _CFGAnalyses {
                delete(self.cache, _CacheKey { name: name, fn: fn.Id })
            }
        }
    }
}

func (self *PassManager) invalidateAnalyses(t Transform, fn *il.Function) {
    for _, iv := range t.Meta().Invalidates {
        self.Invalidate(iv, fn)
    }
}

/* DFS colors for the scheduling walk */
const (
    _White uint8 = iota
    _Grey
    _Black
)

// schedule topologically orders the enabled passes along their Requires
// edges, keeping the enable order among independent passes. A cycle is a
// fatal configuration error and the offending chain is named.
func (self *PassManager) schedule(enabled []string) ([]string, error) {
    ret := make([]string, 0, len(enabled))
    color := make(map[string]uint8, len(self.passes))
    trail := make([]string, 0, len(self.passes))

    var visit func(name string) error
    visit = func(name string) error {
        p, ok := self.passes[name]
        if !ok {
            return fmt.Errorf("opt: pass %q requires unregistered pass %q", trail[len(trail) - 1], name)
        }

        /* grey means the DFS reentered a pass it is still expanding */
        switch color[name] {
            case _Black : return nil
            case _Grey  : return fmt.Errorf("opt: circular pass dependency: %s -> %s", strings.Join(trail, " -> "), name)
        }

        color[name] = _Grey
        trail = append(trail, name)
        for _, req := range p.Meta().Requires {
            if err := visit(req); err != nil {
                return err
            }
        }
        trail = trail[:len(trail) - 1]
        color[name] = _Black
        ret = append(ret, name)
        return nil
    }

    for _, name := range enabled {
        trail = trail[:0]
        if err := visit(name); err != nil {
            return nil, err
        }
    }
    return ret, nil
}

// enabledPasses resolves the transform and utility passes that will run,
// in registration order refined by the level preset and the overrides.
func (self *PassManager) enabledPasses() []string {
    ret := make([]string, 0, len(self.order))
    for _, name := range self.order {
        switch self.passes[name].(type) {
            case Transform: {
                if self.opts.IsPassEnabled(name) {
                    ret = append(ret, name)
                }
            }
            case Utility: {
                ret = append(ret, name)
            }
        }
    }
    return ret
}

// Run applies every enabled transform to every function of the module in
// dependency order, iterating until the transforms reach a joint fixpoint,
// and invalidating cached analyses as transforms report changes.
func (self *PassManager) Run(m *il.Module) (Result, error) {
    res := Result { Stats: self.stats }

    /* resolve the schedule once per run */
    order, err := self.schedule(self.enabledPasses())
    if err != nil {
        return res, err
    }

    for _, fn := range m.Funcs {
        /* one linear sweep is not a fixpoint: folding can materialize a
         * constant after propagation already ran over it, so the sweep
         * repeats until every transform reports no change. Transforms
         * never grow the function and a sweep that reports change has
         * strictly shrunk it, which bounds the repetition. */
        for again := true; again; {
            again = false
            for _, name := range order {
                p, ok := self.passes[name].(Transform)
                if !ok {
                    continue
                }
                if !p.Transform(self, fn) {
                    continue
                }
                again = true
                res.Modified = true
                self.invalidateAnalyses(p, fn)
                if self.opts.DumpAfterEachPass {
                    fmt.Fprintf(os.Stderr, "--- after %s (%s) ---\n%s\n", name, fn.Name, fn.Disassemble())
                }
                if self.opts.ValidateAfterTransform {
                    if err := il.Verify(fn); err != nil {
                        return res, fmt.Errorf("opt: pass %q corrupted %s: %w", name, fn.Name, err)
                    }
                }
            }
        }

        /* utilities observe the settled IR; analyses run on demand
         * through GetAnalysis */
        for _, name := range order {
            if p, ok := self.passes[name].(Utility); ok {
                p.Execute(self, fn)
            }
        }
    }

    /* optional statistics dump */
    if self.opts.Verbose {
        fmt.Fprintf(os.Stderr, "opt: %s: %s\n", m.Name, spew.Sdump(self.stats))
    }
    return res, nil
}
