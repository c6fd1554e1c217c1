package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/logger"
	"github.com/krishkalaria12/imagehost/models"
	"github.com/krishkalaria12/imagehost/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}), logger.Discard())
	require.NoError(t, err)

	return db, mock
}

var imageColumns = []string{
	"id", "user_id", "original_key", "original_url", "filename", "original_filename",
	"format", "size", "width", "height", "transformed_key", "transformed_url",
	"transformations", "created_at", "updated_at",
}

func TestImageRepositoryFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	id, owner := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(imageColumns).AddRow(
		id.String(), owner.String(), "images/k.jpeg", "https://cdn/images/k.jpeg", "k.jpeg", "cat.jpg",
		"jpeg", 2048, 800, 600, "images/t.png", "https://cdn/images/t.png",
		[]byte(`{"rotate":90,"flip":true}`), now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "images" WHERE id = $1`)).
		WillReturnRows(rows)

	img, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, img.ID)
	assert.Equal(t, owner, img.UserID)
	assert.Equal(t, transform.JPEG, img.Format)
	assert.Equal(t, 800, img.Width)
	require.NotNil(t, img.TransformedURL)
	assert.Equal(t, "https://cdn/images/t.png", *img.TransformedURL)
	require.NotNil(t, img.Transformations)
	assert.Equal(t, 90, *img.Transformations.Rotate)
	assert.True(t, img.Transformations.Flip)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepositoryFindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "images" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(imageColumns))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestImageRepositoryListByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	owner := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "images" WHERE user_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	rows := sqlmock.NewRows(imageColumns)
	for i := 0; i < 2; i++ {
		rows.AddRow(uuid.NewString(), owner.String(), "k", "u", "f", "o", "png", 1, 1, 1, nil, nil, nil,
			now.Add(-time.Duration(i)*time.Minute), now)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "images" WHERE user_id = $1 ORDER BY created_at DESC LIMIT`)).
		WillReturnRows(rows)

	page, err := repo.ListByOwner(context.Background(), owner, 2, 10)
	require.NoError(t, err)

	assert.Len(t, page.Images, 2)
	assert.Nil(t, page.Images[0].TransformedURL)
	assert.Nil(t, page.Images[0].Transformations)
	assert.Equal(t, models.Pagination{
		CurrentPage:     2,
		TotalPages:      2,
		TotalImages:     12,
		ImagesPerPage:   10,
		HasNextPage:     false,
		HasPreviousPage: true,
	}, page.Pagination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepositoryUpdateTransformation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	key, url := "images/u/transformed/x.png", "https://cdn/images/u/transformed/x.png"
	img := &models.Image{
		ID:              uuid.New(),
		TransformedKey:  &key,
		TransformedURL:  &url,
		Transformations: &transform.Request{Flip: true},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "images" SET "transformed_key"=$1,"transformed_url"=$2,"transformations"=$3,"updated_at"=$4 WHERE`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateTransformation(context.Background(), img))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepositoryUpdateTransformationMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "images" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateTransformation(context.Background(), &models.Image{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at", "updated_at"}).
			AddRow(id.String(), "alice", "$2a$10$hash", now, now))

	user, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.FindByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
