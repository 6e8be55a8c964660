package inkfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/ink/document"
)

// SaveFile writes the document to path atomically: the bytes land in a
// temporary file in the same directory, which is renamed over the target
// only after a successful write. A crash mid-save never corrupts an
// existing document.
func SaveFile(path string, doc *document.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ink-save-*")
	if err != nil {
		return fmt.Errorf("inkfile: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("inkfile: writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("inkfile: syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("inkfile: closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("inkfile: replacing %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and decodes a document from path.
func LoadFile(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inkfile: reading %s: %w", path, err)
	}
	return Decode(data)
}
