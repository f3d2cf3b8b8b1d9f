package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/clipstream/clipstream/internal/model"
)

func TestHistoryRepo_Record_Upserts(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewHistoryRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	videoID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`INSERT INTO watch_history`).
		WithArgs(userID, videoID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Record(ctx, userID, videoID))

	// A re-watch hits the conflict arm and still succeeds.
	mock.ExpectExec(`ON CONFLICT \(user_id, video_id\) DO UPDATE`).
		WithArgs(userID, videoID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Record(ctx, userID, videoID))
}

func TestHistoryRepo_ListForUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewHistoryRepo(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	videoID := uuid.Must(uuid.NewV4())
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT count\(\*\) FROM watch_history WHERE user_id=\$1`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`FROM watch_history h\s+JOIN videos v ON v\.id = h\.video_id`).
		WithArgs(userID, 10, 0).
		WillReturnRows(videoRow(videoID, owner, "intro"))

	page, err := r.ListForUser(ctx, userID, model.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalItems)
	require.Len(t, page.Items, 1)
	require.Equal(t, videoID, page.Items[0].ID)
}
