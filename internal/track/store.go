package track

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Store holds the full track in memory and mirrors it to a YAML file.
// Every accepted fix triggers a full rewrite of the file, so the track on
// disk is complete and parseable after every successful append. At low fix
// rates (one or a few per second) the O(n) rewrite is a fair price for
// never losing more than the write in flight.
type Store struct {
	path  string
	fixes []Fix
}

// Load reads the track file at path. A missing file, an empty file, or a
// file that does not contain a list of fixes all yield an empty track;
// recording always has a well-defined starting point.
func Load(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var fixes []Fix
	if err := yaml.Unmarshal(data, &fixes); err != nil {
		return s
	}
	s.fixes = fixes
	return s
}

// Append adds fix to the end of the track and rewrites the file.
func (s *Store) Append(fix Fix) error {
	s.fixes = append(s.fixes, fix)
	data, err := yaml.Marshal(s.fixes)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Size returns the number of fixes currently held.
func (s *Store) Size() int {
	return len(s.fixes)
}

// Fixes returns the in-memory track in append order.
func (s *Store) Fixes() []Fix {
	return s.fixes
}
