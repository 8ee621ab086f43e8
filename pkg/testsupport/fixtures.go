package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadJSONFixture reads the file at path and decodes it into v.
func LoadJSONFixture(path string, v any) error {
	data, err := LoadFixture(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return nil
}
