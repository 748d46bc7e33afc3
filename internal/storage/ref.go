// Package storage reads and writes the JSON collections behind the admin API.
// A single Backend, chosen at startup, serves every collection: local files
// or a remote key-value store.
package storage

import (
	"encoding/json"
	"path/filepath"
)

// Shape is the top-level JSON type a collection must have.
type Shape int

const (
	// Array collections hold a list of records.
	Array Shape = iota
	// Object collections hold a singular record.
	Object
)

func (s Shape) String() string {
	if s == Object {
		return "object"
	}
	return "array"
}

// Ref identifies a collection both as a local file and as a remote key.
type Ref struct {
	Name  string // Human readable label used in error messages, e.g. "projects.json"
	Path  string
	Key   string
	Shape Shape
	// Fallback, when set, is returned instead of a not-exist error for a
	// missing local file.
	Fallback json.RawMessage
}

// Refs names every collection the admin API persists.
type Refs struct {
	Projects     Ref
	Vacancies    Ref
	Documents    Ref
	SiteSettings Ref
	Experience   Ref
}

// DefaultRefs lays the collections out under dataDir with their well-known keys.
func DefaultRefs(dataDir string) Refs {
	return Refs{
		Projects: Ref{
			Name: "projects.json", Path: filepath.Join(dataDir, "projects.json"),
			Key: "sng:projects", Shape: Array,
		},
		Vacancies: Ref{
			Name: "vacancies.json", Path: filepath.Join(dataDir, "vacancies.json"),
			Key: "sng:vacancies", Shape: Array,
		},
		Documents: Ref{
			Name: "documents.json", Path: filepath.Join(dataDir, "documents.json"),
			Key: "sng:documents", Shape: Array,
		},
		SiteSettings: Ref{
			Name: "siteSettings.json", Path: filepath.Join(dataDir, "siteSettings.json"),
			Key: "sng:site-settings", Shape: Object,
		},
		Experience: Ref{
			Name: "experience.json", Path: filepath.Join(dataDir, "experience.json"),
			Shape: Array,
		},
	}
}
