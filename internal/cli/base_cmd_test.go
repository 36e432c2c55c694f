package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func executeArgs(t *testing.T, args string) (string, error) {
	app := New()
	out := &bytes.Buffer{}
	app.baseCmd.SetOut(out)
	app.baseCmd.SetErr(&bytes.Buffer{})
	app.baseCmd.SetArgs(strings.Split(args, " "))
	err := app.Execute(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := executeArgs(t, "version")
	require.NoError(t, err)
	require.Equal(t, Version+"\n", out)
}

func TestRunWritesDumpAndBitmap(t *testing.T) {
	workloadFile := writeTestWorkload(t, testWorkload)
	dir := t.TempDir()
	dumpFile := filepath.Join(dir, "map.txt")
	bitmapFile := filepath.Join(dir, "bitmap.bin")

	out, err := executeArgs(t, "run --word-size 4 --words 100 --workload "+workloadFile+" --dump "+dumpFile+" --bitmap "+bitmapFile)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "alloc a 40 -> word 0\n"))
	require.True(t, strings.HasSuffix(out, "alloc e 4 -> word 18\n"))

	dump, err := os.ReadFile(dumpFile)
	require.NoError(t, err)
	require.Equal(t, "[2, 8] - [19, 81]", string(dump))

	bitmap, err := os.ReadFile(bitmapFile)
	require.NoError(t, err)
	// 100 words -> 13 payload bytes
	require.Len(t, bitmap, 15)
	require.Equal(t, []byte{13, 0}, bitmap[:2])
	// words 0-1 allocated, 2-7 free
	require.Equal(t, byte(0x03), bitmap[2])
	// words 10-18 allocated
	require.Equal(t, byte(0xFC), bitmap[3])
	require.Equal(t, byte(0x07), bitmap[4])
	require.Equal(t, byte(0x00), bitmap[5])
}

func TestRunStats(t *testing.T) {
	workloadFile := writeTestWorkload(t, "ops:\n  - op: alloc\n    name: a\n    bytes: 3\n")

	out, err := executeArgs(t, "run --word-size 1 --words 16 --strategy worst-fit --stats --workload "+workloadFile)
	require.NoError(t, err)
	lines := strings.SplitN(out, "\n", 2)
	require.Equal(t, "alloc a 3 -> word 0", lines[0])
	require.Contains(t, lines[1], `"Strategy":"worst-fit"`)
	require.Contains(t, lines[1], `"WordSize":1`)
	require.NotContains(t, lines[1], `"Regions"`)
}

func TestRunDetailedStats(t *testing.T) {
	workloadFile := writeTestWorkload(t, "ops:\n  - op: alloc\n    name: a\n    bytes: 3\n")

	out, err := executeArgs(t, "run --word-size 1 --words 16 --stats --detailed --workload "+workloadFile)
	require.NoError(t, err)
	require.Contains(t, out, `"Regions"`)
}

func TestRunFailures(t *testing.T) {
	workloadFile := writeTestWorkload(t, testWorkload)

	tests := []struct {
		name   string
		args   string
		errMsg string
	}{
		{name: "no workload", args: "run --words 16", errMsg: "a workload file is required"},
		{name: "unknown strategy", args: "run --strategy first-fit --workload " + workloadFile, errMsg: "unknown placement strategy"},
		{name: "word size", args: "run --word-size 0 --workload " + workloadFile, errMsg: "word size must be positive"},
		{name: "arena too large", args: "run --words 65537 --workload " + workloadFile, errMsg: "arena size exceeds the maximum word count"},
		{name: "log level", args: "run --log-level LOUD --workload " + workloadFile, errMsg: "invalid log-level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeArgs(t, tt.args)
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestRunFlagsFromEnvironment(t *testing.T) {
	workloadFile := writeTestWorkload(t, "ops:\n  - op: alloc\n    name: a\n    bytes: 8\n  - op: alloc\n    name: b\n    bytes: 8\n")
	t.Setenv("ARENASIM_WORD_SIZE", "2")

	out, err := executeArgs(t, "run --words 16 --workload "+workloadFile)
	require.NoError(t, err)
	require.Equal(t, "alloc a 8 -> word 0\nalloc b 8 -> word 4\n", out)
}

func TestRunFlagsFromConfigFile(t *testing.T) {
	workloadFile := writeTestWorkload(t, "ops:\n  - op: alloc\n    name: a\n    bytes: 8\n  - op: alloc\n    name: b\n    bytes: 8\n")
	configFile := filepath.Join(t.TempDir(), "arenasim.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("word-size: 4\nwords: 3\n"), 0600))

	out, err := executeArgs(t, "run --config "+configFile+" --workload "+workloadFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "alloc a 8 -> word 0", lines[0])
	require.Contains(t, lines[1], "no hole is large enough")
}

func TestRunFlagOverridesEnvironment(t *testing.T) {
	workloadFile := writeTestWorkload(t, "ops:\n  - op: alloc\n    name: a\n    bytes: 8\n  - op: alloc\n    name: b\n    bytes: 8\n")
	t.Setenv("ARENASIM_WORD_SIZE", "2")

	out, err := executeArgs(t, "run --word-size 8 --words 16 --workload "+workloadFile)
	require.NoError(t, err)
	require.Equal(t, "alloc a 8 -> word 0\nalloc b 8 -> word 1\n", out)
}
