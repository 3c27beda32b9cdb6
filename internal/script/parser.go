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

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCommand = regexp.MustCompile(`^([a-z][a-z\-]*)(?:\s+(.*))?$`)
	reKV      = regexp.MustCompile(`^([A-Za-z]+)=(.*)$`)
)

// Parse parses a gesture script. All malformed lines are reported; steps
// from well-formed lines are still returned.
func Parse(input string) (Script, []Error) {
	s := Script{}
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		trim := strings.TrimSpace(scanner.Text())
		if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
			continue
		}
		m := reCommand.FindStringSubmatch(trim)
		if m == nil {
			errs = append(errs, Error{Line: lineNo, Column: 1, Message: fmt.Sprintf("cannot parse %q", trim)})
			continue
		}
		st, err := parseStep(Op(m[1]), strings.TrimSpace(m[2]))
		if err != nil {
			col := strings.Index(scanner.Text(), m[1]) + 1
			errs = append(errs, Error{Line: lineNo, Column: col, Message: err.Error()})
			continue
		}
		st.LineNo = lineNo
		s.Steps = append(s.Steps, st)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return s, errs
}

func parseStep(op Op, rest string) (Step, error) {
	st := Step{Op: op}
	args := strings.Fields(rest)
	switch op {
	case OpDown, OpMove, OpUp:
		if len(args) != 3 {
			return st, fmt.Errorf("%s wants <pid> <x> <y>", op)
		}
		pid, err := strconv.Atoi(args[0])
		if err != nil {
			return st, fmt.Errorf("bad pointer id %q", args[0])
		}
		x, err := parseFloat(args[1])
		if err != nil {
			return st, err
		}
		y, err := parseFloat(args[2])
		if err != nil {
			return st, err
		}
		st.Pointer, st.X, st.Y = pid, x, y
	case OpTap, OpPreset:
		if len(args) != 1 {
			return st, fmt.Errorf("%s wants one argument", op)
		}
		st.ID = args[0]
	case OpPinch:
		if len(args) != 2 {
			return st, fmt.Errorf("pinch wants <id> <factor>")
		}
		f, err := parseFloat(args[1])
		if err != nil {
			return st, err
		}
		if f <= 0 {
			return st, fmt.Errorf("pinch factor must be positive")
		}
		st.ID, st.Factor = args[0], f
	case OpType:
		text := rest
		if strings.HasPrefix(text, `"`) {
			u, err := strconv.Unquote(text)
			if err != nil {
				return st, fmt.Errorf("bad quoted text: %v", err)
			}
			text = u
		}
		st.Text = text
	case OpHTML:
		st.Text = rest
	case OpTapBG, OpSave, OpCancel, OpReset:
		if len(args) != 0 {
			return st, fmt.Errorf("%s takes no arguments", op)
		}
	case OpStyle:
		if len(args) == 0 {
			return st, fmt.Errorf("style wants key=value pairs")
		}
		st.Style = make(map[string]string, len(args))
		for _, a := range args {
			kv := reKV.FindStringSubmatch(a)
			if kv == nil {
				return st, fmt.Errorf("bad style pair %q", a)
			}
			st.Style[kv[1]] = kv[2]
		}
	case OpPanel:
		if len(args) != 1 || (args[0] != "open" && args[0] != "close") {
			return st, fmt.Errorf("panel wants open or close")
		}
		st.Open = args[0] == "open"
	case OpWait:
		if len(args) != 1 {
			return st, fmt.Errorf("wait wants <ms>")
		}
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms < 0 {
			return st, fmt.Errorf("bad duration %q", args[0])
		}
		st.Millis = ms
	case OpExpect:
		if len(args) < 1 || len(args) > 2 {
			return st, fmt.Errorf("expect wants <phase> [id]")
		}
		switch args[0] {
		case "idle", "selected", "editing":
		default:
			return st, fmt.Errorf("unknown phase %q", args[0])
		}
		st.Phase = args[0]
		if len(args) == 2 {
			st.ID = args[1]
		}
	default:
		return Step{Op: opUnknown}, fmt.Errorf("unknown command %q", op)
	}
	return st, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return f, nil
}
