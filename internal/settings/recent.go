package settings

import "fmt"

// Recent returns the paths of a recent list, most recent first.
func (s *Store) Recent(kind Kind) ([]string, error) {
	if err := kind.valid(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query("SELECT path FROM recent WHERE kind = ? ORDER BY seq DESC", string(kind))
	if err != nil {
		return nil, fmt.Errorf("list recent %s: %w", kind, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Touch moves path to the top of a recent list, adding it when new, and
// drops entries beyond MaxRecent.
func (s *Store) Touch(kind Kind, path string) error {
	if err := kind.valid(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM recent WHERE kind = ?", string(kind)).Scan(&next); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO recent (kind, path, seq) VALUES (?, ?, ?)
		ON CONFLICT(kind, path) DO UPDATE SET seq = excluded.seq`, string(kind), path, next); err != nil {
		return fmt.Errorf("touch %s: %w", path, err)
	}
	if _, err := tx.Exec(`DELETE FROM recent WHERE kind = ? AND path NOT IN (
		SELECT path FROM recent WHERE kind = ? ORDER BY seq DESC LIMIT ?)`,
		string(kind), string(kind), MaxRecent); err != nil {
		return fmt.Errorf("trim recent %s: %w", kind, err)
	}
	return tx.Commit()
}

// Prune removes the entries of a recent list for which exists reports
// false and returns the removed paths.
func (s *Store) Prune(kind Kind, exists func(path string) bool) ([]string, error) {
	paths, err := s.Recent(kind)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, p := range paths {
		if exists(p) {
			continue
		}
		if _, err := s.db.Exec("DELETE FROM recent WHERE kind = ? AND path = ?", string(kind), p); err != nil {
			return removed, fmt.Errorf("prune %s: %w", p, err)
		}
		removed = append(removed, p)
	}
	return removed, nil
}
