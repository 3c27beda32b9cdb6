/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package script

import "fmt"

// Script is a parsed gesture script: one step per non-blank, non-comment line.
//
// Syntax, one command per line:
//
//	down <pid> <x> <y>      pointer pressed at a canvas point
//	move <pid> <x> <y>      pointer moved
//	up <pid> <x> <y>        pointer released
//	tap <id>                tap an element directly
//	tap-bg                  tap the canvas background
//	pinch <id> <factor>     pinch zoom an element
//	type <text>             replace the edit buffer with plain text; Go quoting allowed
//	html <markup>           replace the edit buffer with raw markup
//	save | cancel | reset   edit session actions
//	style <key>=<value>...  style panel change, e.g. fontSize=24px color=#333
//	preset <name>           apply a text style preset
//	panel open|close
//	wait <ms>               advance the clock
//	expect <phase> [id]     assert the interaction state
//
// Lines starting with '#' or ';' are comments.
type Script struct {
	Steps []Step
}

// Op names a command.
type Op string

const (
	OpDown    Op = "down"
	OpMove    Op = "move"
	OpUp      Op = "up"
	OpTap     Op = "tap"
	OpTapBG   Op = "tap-bg"
	OpPinch   Op = "pinch"
	OpType    Op = "type"
	OpHTML    Op = "html"
	OpSave    Op = "save"
	OpCancel  Op = "cancel"
	OpReset   Op = "reset"
	OpStyle   Op = "style"
	OpPreset  Op = "preset"
	OpPanel   Op = "panel"
	OpWait    Op = "wait"
	OpExpect  Op = "expect"
	opUnknown Op = ""
)

// Step is one parsed command. Numeric arguments are decoded at parse time.
type Step struct {
	Op     Op
	LineNo int // 1-based line number in the source

	Pointer int
	X, Y    float64
	ID      string
	Factor  float64
	Text    string
	Style   map[string]string
	Open    bool
	Millis  int
	Phase   string
}

// Error is a parse or replay failure with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
