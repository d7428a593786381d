package cmd_test

import (
	"bytes"
	"testing"

	"github.com/aalbahar80/rems-ai-sub000/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand_Subcommands 测试子命令注册
func TestRootCommand_Subcommands(t *testing.T) {
	root := cmd.GetRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"server", "migrate", "statuses"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

// TestStatusesCommand 测试输出状态注册表
func TestStatusesCommand(t *testing.T) {
	root := cmd.GetRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"statuses"})
	defer root.SetArgs(nil)

	require.NoError(t, root.Execute())

	output := out.String()
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "submitted")
	assert.Contains(t, output, "acknowledged, cancelled, rejected")
	assert.Contains(t, output, "(terminal)")
}
