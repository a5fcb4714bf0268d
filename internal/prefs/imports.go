package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const importsFile = "import.json"

// Import formats understood by the import view.
const (
	FormatGeneric = "generic"
	FormatANZ     = "anz"
)

// Import remembers the last CSV import so the next one starts from it.
type Import struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Account string `json:"account"`
}

// Defaults fills empty fields.
func (i Import) Defaults() Import {
	if strings.TrimSpace(i.Path) == "" {
		i.Path = "expenses.csv"
	}
	if i.Format != FormatANZ {
		i.Format = FormatGeneric
	}
	if strings.TrimSpace(i.Account) == "" {
		i.Account = "ANZ"
	}
	return i
}

// Store keeps preference files in Dir.
type Store struct {
	Dir string
}

// Default returns the store under the user config directory.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: filepath.Join(dir, "pocketledger")}, nil
}

func (s *Store) SaveImport(p Import) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.Dir, importsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadImport returns the saved preferences, or the defaults when none exist.
func (s *Store) LoadImport() (Import, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, importsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Import{}.Defaults(), nil
		}
		return Import{}.Defaults(), err
	}
	var p Import
	if err := json.Unmarshal(data, &p); err != nil {
		return Import{}.Defaults(), err
	}
	return p.Defaults(), nil
}
