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

import "testing"

func TestParseCommands(t *testing.T) {
	input := `# drag the title then edit it
down 0 150 110
move 0 170.5 130
up 0 170.5 130

; comments and blank lines are skipped
tap title
type "Hello\nWorld"
html <div>a</div><div>b</div>
style fontSize=24px color=#333
panel open
pinch body 1.5
wait 50
expect editing title
save`

	s, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(s.Steps) != 13 {
		t.Fatalf("expected 13 steps, got %d", len(s.Steps))
	}
	mv := s.Steps[1]
	if mv.Op != OpMove || mv.X != 170.5 || mv.Y != 130 || mv.LineNo != 3 {
		t.Fatalf("unexpected move step: %+v", mv)
	}
	if s.Steps[4].Text != "Hello\nWorld" {
		t.Fatalf("quoted text not unescaped: %q", s.Steps[4].Text)
	}
	if s.Steps[5].Text != "<div>a</div><div>b</div>" {
		t.Fatalf("html kept verbatim, got %q", s.Steps[5].Text)
	}
	if st := s.Steps[6].Style; st["fontSize"] != "24px" || st["color"] != "#333" {
		t.Fatalf("style pairs: %+v", st)
	}
	if !s.Steps[7].Open || s.Steps[8].Factor != 1.5 || s.Steps[9].Millis != 50 {
		t.Fatalf("unexpected steps: %+v", s.Steps[7:10])
	}
	if ex := s.Steps[10]; ex.Phase != "editing" || ex.ID != "title" {
		t.Fatalf("unexpected expect step: %+v", ex)
	}
}

func TestParseReportsLineNumbers(t *testing.T) {
	input := `down 0 1
tap title
pinch a -2
fly away
wait soon
expect dancing
panel maybe
Bad Line`

	s, errs := Parse(input)
	if len(s.Steps) != 1 || s.Steps[0].Op != OpTap {
		t.Fatalf("good lines should still parse, got %+v", s.Steps)
	}
	want := []int{1, 3, 4, 5, 6, 7, 8}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %+v", len(want), errs)
	}
	for i, e := range errs {
		if e.Line != want[i] {
			t.Fatalf("error %d on line %d, want %d (%s)", i, e.Line, want[i], e.Message)
		}
		if e.Error() == "" {
			t.Fatalf("empty error text")
		}
	}
}
