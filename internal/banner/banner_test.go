/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
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

package banner

import (
	"bytes"
	"strings"
	"testing"

	"sqlshape/internal/config"
)

func TestPrintToPlainWriter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SchemaFile = "schema.sql"
	cfg.Strict = true

	var buf bytes.Buffer
	PrintTo(&buf, cfg, 3)
	out := buf.String()

	if strings.Contains(out, "\033[") {
		t.Error("Expected no ANSI codes when writing to a buffer")
	}
	for _, want := range []string{"sqlshape", Version, "Schema: schema.sql", "Tables: 3", "Strict", "Cache(1000)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected banner to contain %q, got:\n%s", want, out)
		}
	}
}
