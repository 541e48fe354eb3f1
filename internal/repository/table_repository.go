package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/table-reservation/internal/model"
)

// TableRepo reads the restaurant's physical tables.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

// List returns every table, active or not, ordered by name.
func (r *TableRepo) List(ctx context.Context) ([]model.TableResource, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, capacity, is_active FROM tables ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	out := []model.TableResource{}
	for rows.Next() {
		var t model.TableResource
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.IsActive); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return out, nil
}
