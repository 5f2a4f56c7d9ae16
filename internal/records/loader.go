package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Loader finds record database files on the configured search paths,
// validates them against the embedded schema and caches the parsed result
// per database name.
type Loader struct {
	cache       sync.Map
	validator   *Validator
	searchPaths []string
}

func NewLoader(searchPaths []string) (*Loader, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &Loader{
		validator:   validator,
		searchPaths: searchPaths,
	}, nil
}

func (l *Loader) Load(databaseName string) (*RecordDatabase, error) {
	if cached, ok := l.cache.Load(databaseName); ok {
		return cached.(*RecordDatabase), nil
	}

	var data []byte
	var err error
	var foundPath string

	for _, searchPath := range l.searchPaths {
		fullPath := filepath.Join(searchPath, databaseName+".json")
		data, err = os.ReadFile(fullPath)
		if err == nil {
			foundPath = fullPath
			break
		}
	}

	if data == nil {
		return nil, fmt.Errorf("record database not found: %s (searched in: %v)", databaseName, l.searchPaths)
	}

	if err := l.validator.ValidateDatabase(data); err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", foundPath, err)
	}

	var db RecordDatabase
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record database: %w", err)
	}

	l.cache.Store(databaseName, &db)

	return &db, nil
}

func (l *Loader) ClearCache() {
	l.cache.Range(func(key, value interface{}) bool {
		l.cache.Delete(key)
		return true
	})
}
