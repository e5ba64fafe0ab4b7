package sinks

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingFileSizePolicyRotatesAndRetains(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	tr, err := NewRollingFileTransport(RollingFileOptions{
		Path:     path,
		MaxBytes: 64,
		MaxFiles: 3,
	})
	require.NoError(t, err)
	defer tr.Close()

	line := "0123456789012345678901234567890" // ~30 bytes + newline
	for i := 0; i < 100; i++ {
		require.NoError(t, tr.WriteLine(fmt.Sprintf("%s-%d", line, i)))
	}
	require.NoError(t, tr.Flush())

	assert.LessOrEqual(t, len(tr.rolledFileQueue), 3)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var rolled []string
	for _, e := range entries {
		if e.Name() != "app.log" {
			rolled = append(rolled, e.Name())
		}
	}
	assert.LessOrEqual(t, len(rolled), 3)
	for _, name := range rolled {
		assert.Regexp(t, `^app\.\d{3}\.log$`, name)
	}
}

func TestRollingFileMaxTotalSizeRetention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	tr, err := NewRollingFileTransport(RollingFileOptions{
		Path:         path,
		MaxBytes:     32,
		MaxTotalSize: 96,
	})
	require.NoError(t, err)
	defer tr.Close()

	for i := 0; i < 40; i++ {
		require.NoError(t, tr.WriteLine("0123456789012345678901234567890"))
	}
	require.NoError(t, tr.Flush())

	var total int64
	for _, p := range tr.rolledFileQueue {
		info, err := os.Stat(p)
		require.NoError(t, err)
		total += info.Size()
	}
	assert.LessOrEqual(t, total, int64(96))
}

func TestRollingFileRecoversExistingRolledFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.001.log"), []byte("old-1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.002.log"), []byte("old-2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte("active\n"), 0o644))

	tr, err := NewRollingFileTransport(RollingFileOptions{Path: path, MaxBytes: 1024})
	require.NoError(t, err)
	defer tr.Close()

	assert.Len(t, tr.rolledFileQueue, 2)
	assert.Equal(t, 2, tr.sizeRollIndex)

	require.NoError(t, tr.WriteLine("append after recovery"))
	require.NoError(t, tr.Flush())
}

func TestRollingFileHybridNamingIncludesPeriodAndIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	tr, err := NewRollingFileTransport(RollingFileOptions{
		Path:     path,
		MaxBytes: 16,
		Period:   PeriodDaily,
	})
	require.NoError(t, err)
	defer tr.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, tr.WriteLine("0123456789012345678901234567890"))
	}
	require.NoError(t, tr.Flush())

	for _, p := range tr.rolledFileQueue {
		name := filepath.Base(p)
		assert.Regexp(t, `^app\.\d{4}-\d{2}-\d{2}\.\d{3}\.log$`, name)
	}
}
