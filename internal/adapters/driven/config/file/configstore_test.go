package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())
	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "openai/gpt-4o-mini"))
	require.NoError(t, store.Set("chunking.size", 3500))
	require.NoError(t, store.Set("agent.temperature", 0.2))
	require.NoError(t, store.Set("log.verbose", true))

	assert.Equal(t, "openai/gpt-4o-mini", store.GetString("llm.model"))
	assert.Equal(t, 3500, store.GetInt("chunking.size"))
	assert.InDelta(t, 0.2, store.GetFloat("agent.temperature"), 1e-9)
	assert.InDelta(t, 3500, store.GetFloat("chunking.size"), 1e-9)
	assert.True(t, store.GetBool("log.verbose"))

	// Wrong types and missing keys read as zero values.
	assert.Empty(t, store.GetString("chunking.size"))
	assert.Zero(t, store.GetInt("llm.model"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("llm.model"))

	assert.Equal(t, []string{"agent.temperature", "chunking.size", "llm.model", "log.verbose"}, store.Keys())
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "claude"))
	require.NoError(t, store.Set("server.addr", ":9000"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[llm]")
	assert.Contains(t, string(data), "[server]")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("owner.id", "5f0c7a8e-3c2b-4e0f-9a51-0f1b8f7f2d11"))
	require.NoError(t, store.Set("embedding.dimensions", int64(768)))
	require.NoError(t, store.Set("agent.temperature", 0.5))
	require.NoError(t, store.Set("log.verbose", false))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "5f0c7a8e-3c2b-4e0f-9a51-0f1b8f7f2d11", reloaded.GetString("owner.id"))
	assert.Equal(t, 768, reloaded.GetInt("embedding.dimensions"))
	assert.InDelta(t, 0.5, reloaded.GetFloat("agent.temperature"), 1e-9)
	_, ok := reloaded.Get("log.verbose")
	assert.True(t, ok)
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[agent]\nmax_retries = 3\ntemperature = 1\n\n[retrieval]\nbackend = \"qdrant\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, 3, store.GetInt("agent.max_retries"))
	assert.InDelta(t, 1.0, store.GetFloat("agent.temperature"), 1e-9)
	assert.Equal(t, "qdrant", store.GetString("retrieval.backend"))
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n"), 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is [not toml"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_SetRollsBackOnConflict(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "a"))

	err = store.Set("llm", "flat")

	assert.Error(t, err)
	_, ok := store.Get("llm")
	assert.False(t, ok)
	assert.Equal(t, "a", store.GetString("llm.model"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	err = store.Set("channel", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("agent.max_retries", 2)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("agent.max_retries")
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, store.GetInt("agent.max_retries"))
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{"a.b.c": 1, "a.d": "x", "e": true})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 1}, "d": "x"},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
