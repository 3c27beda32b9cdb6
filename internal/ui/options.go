/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"cardcanvas/internal/config"
	"cardcanvas/internal/telemetry"
)

// Options configures the desktop host.
type Options struct {
	// Template is the card template to open. It is watched for changes.
	Template string
	Config   config.AppConfig
	// Telemetry receives editor usage events; nil disables them.
	Telemetry *telemetry.Client
}
