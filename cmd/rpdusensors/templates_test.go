/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
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

package main

import (
	"bytes"
	"html/template"
	"testing"

	"github.com/comcast/rpdusensors/buildinfo"
	"github.com/comcast/rpdusensors/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Templates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, template.Must(template.New("index").Parse(indexTmpl)).Execute(&buf, buildinfo.Info))
	assert.Contains(t, buf.String(), `action="discover"`)

	ignored := common.NewIgnoredList()
	ignored.Add("pdu7", "device does not match detection rule")

	buf.Reset()
	require.NoError(t, template.Must(template.New("ignored").Parse(ignoredTmpl)).Execute(&buf, ignored.List()))
	assert.Contains(t, buf.String(), "pdu7 (device does not match detection rule, since ")
}
