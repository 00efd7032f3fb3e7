package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	CoreVersion = "1.2.3"
	GolangVersion = "go1.21"
	BuildTime = "2024-01-01T00:00:00Z"

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "Core Version: v1.2.3\nGo Version: go1.21\nBuild Time: 2024-01-01T00:00:00Z\n", out.String())
}
