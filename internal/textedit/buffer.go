/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textedit

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// ToBuffer renders plain text as editable markup: each line escaped, lines
// joined with <br>.
func ToBuffer(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	return strings.Join(lines, "<br>")
}

// FromBuffer converts editable markup back to plain text. <br> and the start
// of every <div> or <p> become a line break, except a <br> directly opening a
// block, which only holds an empty line open. Other markup is dropped and
// entities are decoded. A break produced by a block at the very start is
// dropped once.
func FromBuffer(markup string) string {
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(markup))
	justOpened := false
	leadingBlock := false
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			// io.EOF or malformed input; keep what was read
			return finish(b.String(), leadingBlock)
		case xhtml.TextToken:
			txt := string(z.Text())
			if txt != "" {
				b.WriteString(strings.ReplaceAll(txt, "\u00a0", " "))
				justOpened = false
			}
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "div", "p":
				if tt == xhtml.SelfClosingTagToken {
					continue
				}
				if b.Len() == 0 {
					leadingBlock = true
				}
				b.WriteByte('\n')
				justOpened = true
			case "br":
				if justOpened {
					justOpened = false
					continue
				}
				b.WriteByte('\n')
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if n := string(name); n == "div" || n == "p" {
				justOpened = false
			}
		}
	}
}

func finish(s string, leadingBlock bool) string {
	if leadingBlock {
		s = strings.TrimPrefix(s, "\n")
	}
	return s
}
