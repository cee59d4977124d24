package graph

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// CreateIndexes creates the standard lookup indexes on a graph's vertex
// and edge tables: a BTREE index on id for id() lookups, BTREE indexes
// on edge start_id/end_id for traversals, and a GIN index on properties
// for containment queries. Existing indexes are left alone. Returns the
// names of the indexes it created.
func (s *Store) CreateIndexes(ctx context.Context, graphName string) ([]string, error) {
	if err := ValidateIdentifier(graphName); err != nil {
		return nil, err
	}
	exists, err := s.GraphExists(ctx, graphName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrGraphNotFound, graphName)
	}

	var created []string
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		vertexTables, err := graphTables(ctx, tx, graphName, `%\_vertex`)
		if err != nil {
			return err
		}
		edgeTables, err := graphTables(ctx, tx, graphName, `%\_edge`)
		if err != nil {
			return err
		}

		for _, table := range vertexTables {
			for _, idx := range []struct{ suffix, method, column string }{
				{"id_btree_idx", "BTREE", "id"},
				{"properties_gin_idx", "GIN", "properties"},
			} {
				name := fmt.Sprintf("%s_%s", table, idx.suffix)
				ddl := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q.%q USING %s (%s)`,
					name, graphName, table, idx.method, idx.column)
				if _, err := tx.ExecContext(ctx, ddl); err != nil {
					return extensionErr(err)
				}
				created = append(created, name)
			}
		}
		for _, table := range edgeTables {
			for _, idx := range []struct{ suffix, method, column string }{
				{"id_btree_idx", "BTREE", "id"},
				{"start_id_btree_idx", "BTREE", "start_id"},
				{"end_id_btree_idx", "BTREE", "end_id"},
				{"properties_gin_idx", "GIN", "properties"},
			} {
				name := fmt.Sprintf("%s_%s", table, idx.suffix)
				ddl := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q.%q USING %s (%s)`,
					name, graphName, table, idx.method, idx.column)
				if _, err := tx.ExecContext(ctx, ddl); err != nil {
					return extensionErr(err)
				}
				created = append(created, name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("indexes ensured",
		zap.String("graph", graphName), zap.Int("indexes", len(created)))
	return created, nil
}

// graphTables lists base tables in the graph's schema matching the LIKE
// pattern (AGE keeps each graph in a schema of the same name).
func graphTables(ctx context.Context, tx *sql.Tx, schema, pattern string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_name LIKE $2 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, schema, pattern)
	if err != nil {
		return nil, extensionErr(err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, extensionErr(err)
		}
		tables = append(tables, name)
	}
	return tables, extensionErr(rows.Err())
}
