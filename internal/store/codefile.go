package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Compile-time interface check.
var _ CodeStore = (*CodeFile)(nil)

// codeFile is the on-disk schema. Only codes are persisted; each entry is an
// object so more fields can be added later.
type codeFile struct {
	Stocks []codeEntry `json:"stocks"`
}

type codeEntry struct {
	Code string `json:"code"`
}

// CodeFile stores tracked codes as JSON in a single file.
type CodeFile struct {
	path string
}

// NewCodeFile returns a CodeFile at path. The file is created on first Save.
func NewCodeFile(path string) *CodeFile {
	return &CodeFile{path: path}
}

// Path returns the file location.
func (f *CodeFile) Path() string {
	return f.path
}

// Load reads the codes. Entries without a code are skipped.
func (f *CodeFile) Load() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var cf codeFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	codes := make([]string, 0, len(cf.Stocks))
	for _, s := range cf.Stocks {
		if s.Code != "" {
			codes = append(codes, s.Code)
		}
	}
	return codes, nil
}

// Save writes codes through a temp file and rename.
func (f *CodeFile) Save(codes []string) error {
	cf := codeFile{Stocks: make([]codeEntry, len(codes))}
	for i, c := range codes {
		cf.Stocks[i] = codeEntry{Code: c}
	}
	data, err := json.Marshal(cf)
	if err != nil {
		return fmt.Errorf("marshalling codes: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
