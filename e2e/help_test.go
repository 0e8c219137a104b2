//go:build e2e && unix

package main

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelpFlag(t *testing.T) {
	t.Parallel()

	if _, err := os.Stat(binPath); os.IsNotExist(err) {
		t.Skip("Test binary not found - TestMain may not have run yet")
	}

	// flag prints usage and exits 0 for -help; not worth a PTY
	cmd := exec.Command(binPath, "-help")
	out, _ := cmd.CombinedOutput()
	output := string(out)

	require.Contains(t, output, "Usage")
	require.Contains(t, output, "-url")
	require.Contains(t, output, "-config")
}

func TestHelpPopup(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	require.NoError(t, tf.StartApp())
	require.True(t, tf.Ready(), "Should show the staygrip title")

	require.NoError(t, tf.SendKeys(KeyHelp))
	require.True(t, tf.SeePlain("staygrip Help"), "Help popup should open")

	require.NoError(t, tf.Escape())
	require.NoError(t, tf.Quit())
}
