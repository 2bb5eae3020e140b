package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData_Defaults(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Equal(t, "Build version: N/A\nBuild date: N/A\nBuild commit: N/A\n", buf.String())
}

func TestPrintBuildData_Injected(t *testing.T) {
	oldV, oldD, oldC := buildVersion, buildDate, buildCommit
	t.Cleanup(func() { buildVersion, buildDate, buildCommit = oldV, oldD, oldC })
	buildVersion, buildDate, buildCommit = "v1.2.0", "2026-10-18", "abc1234"

	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Contains(t, buf.String(), "Build version: v1.2.0")
	assert.Contains(t, buf.String(), "Build commit: abc1234")
}
