package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/clipstream/clipstream/internal/errs"
	"github.com/clipstream/clipstream/internal/repository"
)

var videoCols = []string{
	"id", "owner_id", "title", "description", "video_key", "thumb_key",
	"duration", "views", "is_published", "created_at", "updated_at",
	"u_id", "u_username", "u_name", "u_profile_image",
}

func videoRow(id, ownerID uuid.UUID, title string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(videoCols).AddRow(
		id, ownerID, title, "", "videos/k", "thumbs/k",
		12.5, int64(3), true, now, now,
		ownerID, "ada", "Ada", "")
}

func TestVideoRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewVideoRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`FROM videos v JOIN users u ON u\.id = v\.owner_id`).
		WithArgs(id).
		WillReturnRows(videoRow(id, owner, "intro"))
	v, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, v.ID)
	require.NotNil(t, v.Owner)
	require.Equal(t, "ada", v.Owner.Username)

	mock.ExpectQuery(`FROM videos v JOIN users u ON u\.id = v\.owner_id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestVideoRepo_List_OwnerAndQuery(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewVideoRepo(db)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT count\(\*\) FROM videos v`).
		WithArgs(owner, "%go%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`ORDER BY v\.created_at DESC`).
		WithArgs(owner, "%go%", 10, 0).
		WillReturnRows(videoRow(id, owner, "go tutorial"))

	page, err := r.List(ctx, repository.VideoFilter{
		OwnerID:       owner,
		Query:         "go",
		SortDesc:      true,
		OnlyPublished: true,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalItems)
	require.Len(t, page.Items, 1)
	require.Equal(t, "go tutorial", page.Items[0].Title)
}

func TestVideoRepo_TogglePublish(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewVideoRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SET is_published = NOT is_published`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"is_published"}).AddRow(false))
	published, err := r.TogglePublish(ctx, id)
	require.NoError(t, err)
	require.False(t, published)

	mock.ExpectQuery(`SET is_published = NOT is_published`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.TogglePublish(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestVideoRepo_CountByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewVideoRepo(db)
	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT count\(\*\), COALESCE\(SUM\(views\),0\) FROM videos`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"count", "sum"}).AddRow(int64(4), int64(120)))
	videos, views, err := r.CountByOwner(ctx, owner)
	require.NoError(t, err)
	require.EqualValues(t, 4, videos)
	require.EqualValues(t, 120, views)
}
