/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textlayout

import "cardcanvas/internal/domain"

// Presets are named style bundles offered next to the individual style
// controls. Applying one merges its fields into the selected element; fields
// a preset leaves nil are kept.
var builtinPresets = map[string]domain.StylePatch{
	"Headline": {
		FontFamily: ptr("Playfair Display"),
		FontWeight: ptr("700"),
		FontSize:   ptr(40),
		LineHeight: ptr(domain.Ratio(1.1)),
		TextAlign:  ptr(domain.AlignCenter),
	},
	"Body": {
		FontFamily:    ptr("Lato"),
		FontWeight:    ptr("400"),
		FontSize:      ptr(18),
		LineHeight:    ptr(domain.Ratio(1.6)),
		LetterSpacing: ptr(0.0),
	},
	"Signature": {
		FontFamily: ptr("Dancing Script"),
		FontSize:   ptr(28),
		TextAlign:  ptr(domain.AlignRight),
	},
	"Caption": {
		FontFamily:    ptr("Lato"),
		FontSize:      ptr(12),
		LetterSpacing: ptr(0.5),
		Color:         ptr("#666666"),
	},
}

// Preset returns a builtin preset by name. The second return value is false if
// the preset is not found.
func Preset(name string) (domain.StylePatch, bool) {
	p, ok := builtinPresets[name]
	return p, ok
}

// PresetNames lists the builtin presets in stable order.
func PresetNames() []string {
	return []string{"Headline", "Body", "Signature", "Caption"}
}

func ptr[T any](v T) *T { return &v }
