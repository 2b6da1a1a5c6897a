package source

import (
	"fmt"
	"os"
	"path/filepath"

	"surveyhub/internal/model"
)

// Fixture file names read by LoadDir
const (
	FirstFile  = "source1.json"
	SecondFile = "source2.json"
	ThirdFile  = "source3.xml"
)

// LoadDir decodes the three feeds from files saved in dir
func LoadDir(dir string) (*model.Payloads, error) {
	p := &model.Payloads{}

	files := []struct {
		name   string
		decode decodeFunc
		out    *[]map[string]any
	}{
		{FirstFile, DecodeFirst, &p.First},
		{SecondFile, DecodeSecond, &p.Second},
		{ThirdFile, DecodeThird, &p.Third},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		entries, err := f.decode(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		*f.out = entries
	}
	return p, nil
}
