package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLocalStorage_PathTraversal_Prevention 测试路径遍历防护
func TestLocalStorage_PathTraversal_Prevention(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	traversalAttempts := []string{
		"../../../etc/passwd",
		"..\\..\\..\\windows\\system32\\config\\sam",
		"../../.env",
		"..",
		".",
		"",
		"folder/../../../etc/passwd",
		"/etc/passwd",
	}

	for _, attempt := range traversalAttempts {
		t.Run("save_"+attempt, func(t *testing.T) {
			err := storage.SaveWithContext(ctx, attempt, strings.NewReader("test content"))
			require.Error(t, err, "Path traversal attempt should be rejected: %s", attempt)
			assert.Contains(t, err.Error(), "invalid")
		})
	}

	_, err = storage.GetWithContext(ctx, "../../../etc/passwd")
	assert.ErrorContains(t, err, "invalid")
	err = storage.DeleteWithContext(ctx, "../../../etc/passwd")
	assert.ErrorContains(t, err, "invalid")
}

// TestLocalStorage_RoundTrip 保存、读取、列出、删除
func TestLocalStorage_RoundTrip(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, storage.SaveWithContext(ctx, "blog-20260101-000000.tar.gz", strings.NewReader("one")))
	require.NoError(t, storage.SaveWithContext(ctx, "blog-20260102-000000.tar.gz", strings.NewReader("two")))
	require.NoError(t, storage.SaveWithContext(ctx, "catalog-20260101-000000.tar.gz", strings.NewReader("three")))

	r, err := storage.GetWithContext(ctx, "blog-20260102-000000.tar.gz")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}

	names, err := storage.List(ctx, "blog-")
	require.NoError(t, err)
	assert.Equal(t, []string{"blog-20260101-000000.tar.gz", "blog-20260102-000000.tar.gz"}, names)

	exists, err := storage.Exists(ctx, "blog-20260101-000000.tar.gz")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, storage.DeleteWithContext(ctx, "blog-20260101-000000.tar.gz"))
	exists, err = storage.Exists(ctx, "blog-20260101-000000.tar.gz")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = storage.GetWithContext(ctx, "missing.tar.gz")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, storage.Health(ctx))
	assert.Equal(t, "local", storage.Name())
}

// TestLocalStorage_Overwrite 同名文件覆盖
func TestLocalStorage_Overwrite(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, storage.SaveWithContext(ctx, "a.txt", strings.NewReader("first")))
	require.NoError(t, storage.SaveWithContext(ctx, "a.txt", strings.NewReader("second")))

	r, err := storage.GetWithContext(ctx, "a.txt")
	require.NoError(t, err)
	data, _ := io.ReadAll(r)
	assert.Equal(t, "second", string(data))
}

// TestIsValidStoragePath 测试路径验证函数
func TestIsValidStoragePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantValid bool
	}{
		{"simple", "file.txt", true},
		{"nested", "2026/01/blog.tar.gz", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dotdot", "..", false},
		{"dir", "folder/", false},
		{"absolute_unix", "/etc/passwd", false},
		{"absolute_windows", "C:\\file.txt", false},
		{"traversal", "../file.txt", false},
		{"null_byte", "file\x00.txt", false},
		{"newline", "file\n.txt", false},
		{"shell", "file;rm -rf .txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, IsValidStoragePath(tt.path), "path: %q", tt.path)
		})
	}
}

// BenchmarkIsValidStoragePath 基准测试
func BenchmarkIsValidStoragePath(b *testing.B) {
	paths := []string{
		"normal_file.txt",
		"path/to/file.tar.gz",
		"../../../etc/passwd",
		"",
	}

	for i := 0; i < b.N; i++ {
		for _, p := range paths {
			IsValidStoragePath(p)
		}
	}
}
