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

package opts

import (
    `os`
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/xyproto/env/v2`
)

func TestLevel_Passes(t *testing.T) {
    assert.Nil(t, O0.Passes())
    assert.Equal(t, _ScalarPasses, O1.Passes())
    assert.Equal(t, _ScalarPasses, O2.Passes())
    assert.Equal(t, _ScalarPasses, O3.Passes())

    /* size levels keep the same middle-end preset */
    assert.Equal(t, _ScalarPasses, Os.Passes())
    assert.Equal(t, _ScalarPasses, Oz.Passes())
}

func TestLevel_String(t *testing.T) {
    assert.Equal(t, "O0", O0.String())
    assert.Equal(t, "Os", Os.String())
    assert.Equal(t, "O?(7)", Level(7).String())
}

func TestOptions_IsPassEnabled(t *testing.T) {
    o := Options { Level: O2 }
    assert.True(t, o.IsPassEnabled(PassDCE))
    assert.True(t, o.IsPassEnabled(PassConstFold))
    assert.False(t, o.IsPassEnabled("peephole"))

    o = Options { Level: O0 }
    assert.False(t, o.IsPassEnabled(PassDCE))
}

func TestOptions_Overrides(t *testing.T) {
    /* an explicit override beats the preset both ways */
    o := Options { Level: O0, EnableDCE: Bool(true) }
    assert.True(t, o.IsPassEnabled(PassDCE))
    assert.False(t, o.IsPassEnabled(PassConstFold))

    o = Options { Level: O2, EnableCopyProp: Bool(false) }
    assert.False(t, o.IsPassEnabled(PassCopyProp))
    assert.True(t, o.IsPassEnabled(PassConstProp))
}

func TestNew_Defaults(t *testing.T) {
    os.Unsetenv("C65_TARGET")
    os.Unsetenv("C65_OPT_VERBOSE")
    env.Load()
    o := New(O2)
    assert.Equal(t, O2, o.Level)
    assert.Equal(t, "mos6502", o.Target)
    assert.False(t, o.Verbose)
    assert.Nil(t, o.EnableDCE)
}

func TestNew_Environment(t *testing.T) {
    t.Setenv("C65_TARGET", "w65c02")
    t.Setenv("C65_OPT_VERBOSE", "1")
    env.Load()
    o := New(O1)
    assert.Equal(t, "w65c02", o.Target)
    assert.True(t, o.Verbose)
}

func TestMerge(t *testing.T) {
    t.Setenv("C65_TARGET", "w65c02")
    env.Load()
    o := Merge(Options {
        Level     : O2,
        Target    : "mos6502",
        EnableDCE : Bool(false),
        Verbose   : true,
    })

    /* explicit user fields win over the environment */
    assert.Equal(t, "mos6502", o.Target)
    assert.True(t, o.Verbose)
    assert.Equal(t, O2, o.Level)
    if assert.NotNil(t, o.EnableDCE) {
        assert.False(t, *o.EnableDCE)
    }
}

func TestMerge_KeepsEnvironment(t *testing.T) {
    t.Setenv("C65_TARGET", "w65c02")
    t.Setenv("C65_OPT_DUMP_PASSES", "1")
    env.Load()
    o := Merge(Options { Level: O1 })
    assert.Equal(t, "w65c02", o.Target)
    assert.True(t, o.DumpAfterEachPass)
}
