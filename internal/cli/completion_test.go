package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out bytes.Buffer
			root := New(io.Discard, LogInfo).RootCommand()
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			require.NoError(t, root.ExecuteContext(context.Background()))
			assert.Contains(t, out.String(), "alluvial")
		})
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}
