package history

import "fmt"

// ForceSchemaVersionForTest restamps the layout version in the file header.
func (s *Store) ForceSchemaVersionForTest(version int) error {
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}
