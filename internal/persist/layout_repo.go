package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridnav/server/internal/nav"
	"github.com/jackc/pgx/v5"
)

// ErrLayoutNotFound is returned when a named layout does not exist.
var ErrLayoutNotFound = errors.New("layout not found")

// LayoutInfo is a row from the layouts table.
type LayoutInfo struct {
	Name      string
	Obstacles int
}

// LayoutRepo stores named obstacle layouts so placement state survives
// restarts.
type LayoutRepo struct {
	db *DB
}

func NewLayoutRepo(db *DB) *LayoutRepo {
	return &LayoutRepo{db: db}
}

// vertexRow is the JSONB shape stored for polygon footprints.
type vertexRow struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// SaveLayout replaces the named layout with the given footprints in one
// transaction. An existing layout of the same name is overwritten.
func (r *LayoutRepo) SaveLayout(ctx context.Context, name string, footprints []nav.Footprint) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var layoutID int32
	err = tx.QueryRow(ctx,
		`INSERT INTO layouts (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET created_at = now()
		 RETURNING layout_id`,
		name,
	).Scan(&layoutID)
	if err != nil {
		return fmt.Errorf("upsert layout %s: %w", name, err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM layout_obstacles WHERE layout_id = $1`, layoutID); err != nil {
		return fmt.Errorf("clear layout %s: %w", name, err)
	}

	for i, f := range footprints {
		var vertices []byte
		if f.Kind == nav.FootprintPolygon {
			rows := make([]vertexRow, len(f.Vertices))
			for j, v := range f.Vertices {
				rows[j] = vertexRow{X: v.X, Z: v.Z}
			}
			vertices, err = json.Marshal(rows)
			if err != nil {
				return fmt.Errorf("encode vertices: %w", err)
			}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO layout_obstacles
			   (layout_id, seq, kind, center_x, center_z, width, depth, rotation, vertices)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			layoutID, i, int16(f.Kind),
			f.Center.X, f.Center.Z, f.Width, f.Depth, f.Rotation, vertices,
		)
		if err != nil {
			return fmt.Errorf("insert obstacle %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

// LoadLayout returns the footprints of a named layout in save order.
func (r *LayoutRepo) LoadLayout(ctx context.Context, name string) ([]nav.Footprint, error) {
	var layoutID int32
	err := r.db.Pool.QueryRow(ctx,
		`SELECT layout_id FROM layouts WHERE name = $1`, name).Scan(&layoutID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLayoutNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT kind, center_x, center_z, width, depth, rotation, vertices
		 FROM layout_obstacles WHERE layout_id = $1 ORDER BY seq`, layoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var footprints []nav.Footprint
	for rows.Next() {
		var (
			kind     int16
			f        nav.Footprint
			vertices []byte
		)
		if err := rows.Scan(&kind, &f.Center.X, &f.Center.Z, &f.Width, &f.Depth, &f.Rotation, &vertices); err != nil {
			return nil, err
		}
		f.Kind = nav.FootprintKind(kind)
		if f.Kind == nav.FootprintPolygon && len(vertices) > 0 {
			var decoded []vertexRow
			if err := json.Unmarshal(vertices, &decoded); err != nil {
				return nil, fmt.Errorf("decode vertices: %w", err)
			}
			f.Vertices = make([]nav.Point, len(decoded))
			for i, v := range decoded {
				f.Vertices[i] = nav.Point{X: v.X, Z: v.Z}
			}
		}
		footprints = append(footprints, f)
	}
	return footprints, rows.Err()
}

// ListLayouts returns every stored layout with its obstacle count.
func (r *LayoutRepo) ListLayouts(ctx context.Context) ([]LayoutInfo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT l.name, count(o.obstacle_id)
		 FROM layouts l
		 LEFT JOIN layout_obstacles o ON o.layout_id = l.layout_id
		 GROUP BY l.layout_id ORDER BY l.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []LayoutInfo
	for rows.Next() {
		var info LayoutInfo
		if err := rows.Scan(&info.Name, &info.Obstacles); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteLayout removes a named layout and its obstacles.
func (r *LayoutRepo) DeleteLayout(ctx context.Context, name string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM layouts WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLayoutNotFound
	}
	return nil
}
