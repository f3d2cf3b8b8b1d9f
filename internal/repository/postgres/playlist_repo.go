package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/model"
)

// PlaylistRepo implements PlaylistRepository using PostgreSQL.
type PlaylistRepo struct{ db *DB }

// NewPlaylistRepo constructs a playlist repository.
func NewPlaylistRepo(db *DB) *PlaylistRepo { return &PlaylistRepo{db: db} }

// Create inserts a new playlist row.
func (r *PlaylistRepo) Create(ctx context.Context, p *model.Playlist) error {
	const q = `INSERT INTO playlists (id, owner_id, name, description) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.OwnerID, p.Name, p.Description)
	return err
}

// GetByID selects a playlist together with its videos in insertion order.
func (r *PlaylistRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	const q = `
SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
       u.id, u.username, u.name, u.profile_image
FROM playlists p JOIN users u ON u.id = p.owner_id
WHERE p.id=$1`
	var p model.Playlist
	var owner model.UserRef
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		&owner.ID, &owner.Username, &owner.Name, &owner.ProfileImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	p.Owner = &owner

	const vq = `
SELECT ` + videoColumns + `
FROM playlist_videos pv
JOIN videos v ON v.id = pv.video_id
JOIN users u ON u.id = v.owner_id
WHERE pv.playlist_id=$1
ORDER BY pv.added_at ASC`
	rows, err := r.db.Pool.Query(ctx, vq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		p.Videos = append(p.Videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	p.TotalVideos = int64(len(p.Videos))
	return &p, nil
}

// ListByOwner returns a page of a user's playlists with video counts.
func (r *PlaylistRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, page model.Page) (*model.Paginated[model.Playlist], error) {
	page = page.Normalize()

	var total int64
	const countQ = `SELECT count(*) FROM playlists WHERE owner_id=$1`
	if err := r.db.Pool.QueryRow(ctx, countQ, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const listQ = `
SELECT p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
       (SELECT count(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id)
FROM playlists p
WHERE p.owner_id=$1
ORDER BY p.created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, listQ, ownerID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Playlist{}
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description,
			&p.CreatedAt, &p.UpdatedAt, &p.TotalVideos); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.Paginated[model.Playlist]{
		Items: items, Page: page.Number, Limit: page.Size, TotalItems: total,
	}, nil
}

// Update persists name and description changes.
func (r *PlaylistRepo) Update(ctx context.Context, p *model.Playlist) error {
	const q = `UPDATE playlists SET name=$2, description=$3, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, p.ID, p.Name, p.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a playlist; membership rows cascade.
func (r *PlaylistRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM playlists WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AddVideo links a video into the playlist. Adding twice is a no-op.
func (r *PlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	const q = `
INSERT INTO playlist_videos (playlist_id, video_id)
VALUES ($1, $2)
ON CONFLICT (playlist_id, video_id) DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, playlistID, videoID)
	return err
}

// RemoveVideo unlinks a video and reports whether it was present.
func (r *PlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) (bool, error) {
	const q = `DELETE FROM playlist_videos WHERE playlist_id=$1 AND video_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, playlistID, videoID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
