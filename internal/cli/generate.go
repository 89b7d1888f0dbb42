package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quilldocs/quill/internal/errors"
	"github.com/quilldocs/quill/internal/generator"
	"github.com/quilldocs/quill/internal/logger"
	"github.com/quilldocs/quill/internal/model"
	"github.com/quilldocs/quill/internal/prompt"
)

// languageByExtension maps source file extensions to the language name used
// in the prompt instructions.
var languageByExtension = map[string]string{
	".c":    "c",
	".cpp":  "cpp",
	".go":   "go",
	".hs":   "haskell",
	".java": "java",
	".js":   "javascript",
	".kt":   "kotlin",
	".py":   "python",
	".rb":   "ruby",
	".rs":   "rust",
	".ts":   "typescript",
}

// commentPrefixes lists header comment markers per language, used by the
// already-documented heuristic.
var commentPrefixes = map[string][]string{
	"c":          {"/*", "//"},
	"cpp":        {"/*", "//"},
	"go":         {"//"},
	"haskell":    {"--"},
	"java":       {"/*", "//"},
	"javascript": {"/*", "//"},
	"kotlin":     {"/*", "//"},
	"python":     {"\"\"\"", "#"},
	"ruby":       {"#"},
	"rust":       {"///", "//"},
	"typescript": {"/*", "//"},
}

// runGenerate is the file-processing driver: it selects the backend once,
// then documents candidate files under path one at a time.
func runGenerate(cmd *cobra.Command, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	initLogging(cfg)
	initBackendProviders()

	if _, err := os.Stat(path); err != nil {
		return errors.New(errors.ErrorTypeInput, "runGenerate",
			fmt.Sprintf("path does not exist: %s", path))
	}

	modelCfg, err := cfg.ToModelConfig()
	if err != nil {
		return err
	}

	backend, err := model.NewFactory().CreateModel(modelCfg)
	if err != nil {
		return err
	}

	gen := generator.New(backend)
	mode := selectMode()

	files, err := collectFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New(errors.ErrorTypeInput, "runGenerate",
			fmt.Sprintf("no supported source files under %s", path))
	}

	logger.Info("generating documentation", "files", len(files), "mode", mode, "backend", backend.Name())

	ctx := cmd.Context()
	for _, file := range files {
		if err := documentFile(ctx, gen, cfg.LineThreshold, mode, file); err != nil {
			return err
		}
	}

	return nil
}

// selectMode maps the mode flags to a documentation mode; inline wins over
// source-embedded, doc-only is the default.
func selectMode() prompt.Mode {
	switch {
	case inlineFlag:
		return prompt.ModeInline
	case commentWithSourceFlag:
		return prompt.ModeSourceEmbedded
	default:
		return prompt.ModeDocOnly
	}
}

// collectFiles walks path and returns supported source files in walk order.
// A single-file path is returned as-is when its extension is supported.
func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if _, ok := languageByExtension[filepath.Ext(path)]; !ok {
			return nil, errors.New(errors.ErrorTypeInput, "collectFiles",
				fmt.Sprintf("unsupported file type: %s", path))
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories are never candidates
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := languageByExtension[filepath.Ext(p)]; ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// documentFile runs one blocking generation call for a file and writes the
// result to stdout. The skip decisions (length threshold, existing docs)
// belong to this driver, not the core.
func documentFile(ctx context.Context, gen *generator.Generator, lineThreshold int, mode prompt.Mode, file string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInput, "documentFile",
			fmt.Sprintf("failed to read %s", file))
	}

	code := string(content)
	language := languageByExtension[filepath.Ext(file)]

	if countLines(code) <= lineThreshold {
		logger.Debug("skipping short file", "file", file, "threshold", lineThreshold)
		return nil
	}

	if !regenerateFlag && hasHeaderComment(code, language) {
		logger.Debug("skipping already documented file", "file", file)
		return nil
	}

	documented, err := gen.Generate(ctx, language, code, mode, "")
	if err != nil {
		return err
	}

	fmt.Printf("=== %s\n%s\n", file, documented)
	return nil
}

// countLines counts non-empty lines.
func countLines(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// hasHeaderComment reports whether the file already opens with a comment in
// the language's convention. A heuristic, not a parse.
func hasHeaderComment(code, language string) bool {
	prefixes, ok := commentPrefixes[language]
	if !ok {
		return false
	}

	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(trimmed, prefix) {
				return true
			}
		}
		return false
	}
	return false
}
