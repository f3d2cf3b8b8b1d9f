package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
	"github.com/clipstream/clipstream/internal/repository"
)

// VideoRepo implements VideoRepository using PostgreSQL.
type VideoRepo struct{ db *DB }

// NewVideoRepo constructs a video repository.
func NewVideoRepo(db *DB) *VideoRepo { return &VideoRepo{db: db} }

const videoColumns = `
v.id, v.owner_id, v.title, v.description, v.video_key, v.thumb_key,
v.duration, v.views, v.is_published, v.created_at, v.updated_at,
u.id, u.username, u.name, u.profile_image`

func scanVideo(row pgx.Row) (*model.Video, error) {
	var v model.Video
	var owner model.UserRef
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoKey, &v.ThumbKey,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
		&owner.ID, &owner.Username, &owner.Name, &owner.ProfileImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	v.Owner = &owner
	return &v, nil
}

// Create inserts a new video row.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	const q = `
INSERT INTO videos (id, owner_id, title, description, video_key, thumb_key,
                    duration, is_published)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q,
		v.ID, v.OwnerID, v.Title, v.Description, v.VideoKey, v.ThumbKey,
		v.Duration, v.IsPublished)
	return err
}

// GetByID selects a video with its owner joined in.
func (r *VideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	const q = `
SELECT ` + videoColumns + `
FROM videos v JOIN users u ON u.id = v.owner_id
WHERE v.id=$1`
	return scanVideo(r.db.Pool.QueryRow(ctx, q, id))
}

// sortColumn whitelists user-supplied sort keys.
func sortColumn(key string) string {
	switch key {
	case "views", "duration", "title":
		return "v." + key
	default:
		return "v.created_at"
	}
}

// List returns a page of videos matching the filter.
func (r *VideoRepo) List(ctx context.Context, f repository.VideoFilter) (*model.Paginated[model.Video], error) {
	page := f.Page.Normalize()

	where := []string{"true"}
	args := []any{}
	if f.OwnerID != uuid.Nil {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id=$%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", len(args), len(args)))
	}
	if f.OnlyPublished {
		where = append(where, "v.is_published")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQ := `SELECT count(*) FROM videos v WHERE ` + cond
	if err := r.db.Pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, err
	}

	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	args = append(args, page.Size, page.Offset())
	listQ := fmt.Sprintf(`
SELECT %s
FROM videos v JOIN users u ON u.id = v.owner_id
WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d`, videoColumns, cond, sortColumn(f.SortBy), dir, len(args)-1, len(args))

	rows, err := r.db.Pool.Query(ctx, listQ, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.Paginated[model.Video]{
		Items: items, Page: page.Number, Limit: page.Size, TotalItems: total,
	}, nil
}

// Update persists title, description and thumbnail changes.
func (r *VideoRepo) Update(ctx context.Context, v *model.Video) error {
	const q = `
UPDATE videos SET title=$2, description=$3, thumb_key=$4, updated_at=now()
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, v.ID, v.Title, v.Description, v.ThumbKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a video. Dependent comments, likes and playlist links go
// with it via ON DELETE CASCADE.
func (r *VideoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM videos WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// TogglePublish flips the publish flag and returns the new state.
func (r *VideoRepo) TogglePublish(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `
UPDATE videos SET is_published = NOT is_published, updated_at=now()
WHERE id=$1
RETURNING is_published`
	var published bool
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&published); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, errs.ErrNotFound
		}
		return false, err
	}
	return published, nil
}

// IncrementViews bumps the view counter.
func (r *VideoRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE videos SET views = views + 1 WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}

// CountByOwner returns the owner's video and cumulative view totals.
func (r *VideoRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, int64, error) {
	const q = `SELECT count(*), COALESCE(SUM(views),0) FROM videos WHERE owner_id=$1`
	var videos, views int64
	if err := r.db.Pool.QueryRow(ctx, q, ownerID).Scan(&videos, &views); err != nil {
		return 0, 0, err
	}
	return videos, views, nil
}
