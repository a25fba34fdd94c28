package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SectionFilePath returns where the extracted section for a version is
// saved locally.
func SectionFilePath(dataDir, version string) string {
	return filepath.Join(dataDir, fmt.Sprintf("changelog_v%s.txt", version))
}

// SummaryFilePath returns where the aggregated enrichment log for a
// version is saved locally.
func SummaryFilePath(dataDir, version string) string {
	return filepath.Join(dataDir, fmt.Sprintf("summaries_v%s.txt", version))
}

// SaveLines writes the given lines to path, one per line, creating parent
// directories as needed. An empty slice writes nothing and returns false.
func SaveLines(lines []string, path string) (bool, error) {
	if len(lines) == 0 {
		return false, nil
	}
	return true, writeFile(path, strings.Join(lines, "\n")+"\n")
}

// AppendText appends a single text block to path, creating the file and
// parent directories as needed. Empty content writes nothing and returns
// false.
func AppendText(text, path string) (bool, error) {
	if text == "" {
		return false, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
