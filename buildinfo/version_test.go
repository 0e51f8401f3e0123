package buildinfo

import (
	"bytes"
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FillFromVCS(t *testing.T) {
	i := info{GitRevision: Unknown, Date: Unknown}
	fillFromVCS(&i, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "4f2a9c1"},
		{Key: "vcs.time", Value: "2025-06-01T10:00:00Z"},
		{Key: "-race", Value: "true"},
	})
	assert.Equal(t, "4f2a9c1", i.GitRevision)
	assert.Equal(t, "2025-06-01T10:00:00Z", i.Date)
	assert.True(t, i.RaceDetector)

	// ldflags win over vcs stamps
	i = info{GitRevision: "abc", Date: "today"}
	fillFromVCS(&i, []debug.BuildSetting{{Key: "vcs.revision", Value: "4f2a9c1"}})
	assert.Equal(t, "abc", i.GitRevision)
	assert.Equal(t, "today", i.Date)
}

func Test_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, runtime.GOOS, got["os"])
	assert.Equal(t, runtime.Version(), got["go_version"])
}

func Test_Print(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf))
	assert.Contains(t, buf.String(), "Go Version:")
	assert.Contains(t, Version(), Info.GitVersion)
}
