package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldocs/quill/internal/prompt"
)

func TestLanguageByExtension(t *testing.T) {
	tests := []struct {
		ext      string
		language string
	}{
		{".py", "python"},
		{".go", "go"},
		{".hs", "haskell"},
		{".js", "javascript"},
		{".ts", "typescript"},
		{".rs", "rust"},
		{".java", "java"},
		{".kt", "kotlin"},
		{".rb", "ruby"},
		{".c", "c"},
		{".cpp", "cpp"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.language, languageByExtension[tt.ext])
		})
	}

	t.Run("unsupported extensions are absent", func(t *testing.T) {
		_, ok := languageByExtension[".txt"]
		assert.False(t, ok)
	})
}

func TestSelectMode(t *testing.T) {
	reset := func() {
		inlineFlag = false
		commentWithSourceFlag = false
	}

	t.Run("doc-only is the default", func(t *testing.T) {
		reset()
		assert.Equal(t, prompt.ModeDocOnly, selectMode())
	})

	t.Run("inline flag", func(t *testing.T) {
		reset()
		inlineFlag = true
		assert.Equal(t, prompt.ModeInline, selectMode())
	})

	t.Run("comment-with-source flag", func(t *testing.T) {
		reset()
		commentWithSourceFlag = true
		assert.Equal(t, prompt.ModeSourceEmbedded, selectMode())
	})

	t.Run("inline wins when both are set", func(t *testing.T) {
		reset()
		inlineFlag = true
		commentWithSourceFlag = true
		assert.Equal(t, prompt.ModeInline, selectMode())
	})

	reset()
}

func TestCollectFiles(t *testing.T) {
	writeFile := func(t *testing.T, path string) {
		t.Helper()
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("code\n"), 0644))
	}

	t.Run("single supported file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "main.py")
		writeFile(t, path)

		files, err := collectFiles(path)

		require.NoError(t, err)
		assert.Equal(t, []string{path}, files)
	})

	t.Run("single unsupported file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		writeFile(t, path)

		_, err := collectFiles(path)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file type")
	})

	t.Run("directory walk filters by extension", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.py"))
		writeFile(t, filepath.Join(dir, "b.go"))
		writeFile(t, filepath.Join(dir, "notes.txt"))
		writeFile(t, filepath.Join(dir, "sub", "c.rs"))

		files, err := collectFiles(dir)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.py"),
			filepath.Join(dir, "b.go"),
			filepath.Join(dir, "sub", "c.rs"),
		}, files)
	})

	t.Run("hidden directories are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.py"))
		writeFile(t, filepath.Join(dir, ".git", "hook.py"))
		writeFile(t, filepath.Join(dir, ".venv", "lib.py"))

		files, err := collectFiles(dir)

		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.py")}, files)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := collectFiles(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"empty", "", 0},
		{"single line", "x = 1", 1},
		{"blank lines don't count", "x = 1\n\n\ny = 2\n", 2},
		{"whitespace-only lines don't count", "x = 1\n   \n\ty = 2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countLines(tt.code))
		})
	}
}

func TestHasHeaderComment(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		language string
		expected bool
	}{
		{
			name:     "python hash comment",
			code:     "# Adds two numbers\ndef add(a, b):\n    return a + b\n",
			language: "python",
			expected: true,
		},
		{
			name:     "python docstring",
			code:     "\"\"\"Module docs.\"\"\"\ndef add(a, b):\n    return a + b\n",
			language: "python",
			expected: true,
		},
		{
			name:     "python undocumented",
			code:     "def add(a, b):\n    return a + b\n",
			language: "python",
			expected: false,
		},
		{
			name:     "leading blank lines are skipped",
			code:     "\n\n// Package docs\npackage main\n",
			language: "go",
			expected: true,
		},
		{
			name:     "go undocumented",
			code:     "package main\n",
			language: "go",
			expected: false,
		},
		{
			name:     "haskell comment",
			code:     "-- | Adds two numbers\nadd a b = a + b\n",
			language: "haskell",
			expected: true,
		},
		{
			name:     "comment later in the file doesn't count",
			code:     "def add(a, b):\n    # inline note\n    return a + b\n",
			language: "python",
			expected: false,
		},
		{
			name:     "unknown language",
			code:     "# comment\n",
			language: "brainfuck",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, hasHeaderComment(tt.code, tt.language))
		})
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	reset := func() {
		hostedModelFlag = ""
		localModelFlag = ""
		azureDeploymentFlag = ""
		ollamaBaseURLFlag = ""
		ollamaModelFlag = ""
		lineThresholdFlag = 0
		verboseFlag = false
		configFile = ""
	}
	reset()
	t.Cleanup(reset)

	// Isolate from any real config in the working tree or home directory
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
	t.Setenv("HOME", dir)

	t.Run("flags layer over defaults", func(t *testing.T) {
		hostedModelFlag = "gpt-4"
		lineThresholdFlag = 7
		verboseFlag = true
		t.Cleanup(reset)

		cfg, err := loadConfig()

		require.NoError(t, err)
		assert.Equal(t, "gpt-4", cfg.Model)
		assert.Equal(t, 7, cfg.LineThreshold)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("ollama flags build the selector", func(t *testing.T) {
		ollamaModelFlag = "codellama"
		ollamaBaseURLFlag = "http://host:11434"
		t.Cleanup(reset)

		cfg, err := loadConfig()

		require.NoError(t, err)
		require.NotNil(t, cfg.Ollama)
		assert.Equal(t, "codellama", cfg.Ollama.Model)
		assert.Equal(t, "http://host:11434", cfg.Ollama.BaseURL)
	})

	t.Run("local model flag", func(t *testing.T) {
		localModelFlag = "/models/codellama.gguf"
		t.Cleanup(reset)

		cfg, err := loadConfig()

		require.NoError(t, err)
		assert.Equal(t, "/models/codellama.gguf", cfg.LocalModel)
	})
}
