package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/backend/config"
	"github.com/portfolio-site/backend/errs"
	"github.com/portfolio-site/backend/models"
)

func setupTestDB(t *testing.T) Database {
	t.Helper()

	gdb, err := Open(config.DBConfig{Type: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	d := New(gdb)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func strPtr(s string) *string { return &s }

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, d.EnsureSchema(ctx))
	require.NoError(t, d.EnsureSchema(ctx))
	require.NoError(t, d.ProjectRepo().EnsureSchema(ctx))

	assert.True(t, d.db.Migrator().HasTable("projects"))
	assert.True(t, d.db.Migrator().HasTable("feedback"))
	assert.True(t, d.db.Migrator().HasColumn(&models.Feedback{}, "profileImage"))
	assert.NoError(t, d.Ping(ctx))
}

func TestProjectRepoLifecycle(t *testing.T) {
	repo := setupTestDB(t).ProjectRepo()
	ctx := context.Background()

	// table is created lazily on first access
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	p := &models.Project{Title: "Site", Description: "desc", Github: "https://github.com/x", Live: "https://x.dev", Image: strPtr("1-a.png")}
	require.NoError(t, repo.Add(ctx, p))
	assert.NotZero(t, p.ID)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Site", got.Title)
	assert.Equal(t, "1-a.png", *got.Image)

	updated, err := repo.Update(ctx, p.ID, models.ProjectPatch{Title: strPtr("Site v2"), Image: strPtr("2-b.png")})
	require.NoError(t, err)
	assert.Equal(t, "Site v2", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, "2-b.png", *updated.Image)

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "2-b.png", *deleted.Image)

	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProjectRepoMissingRows(t *testing.T) {
	repo := setupTestDB(t).ProjectRepo()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.Update(ctx, 42, models.ProjectPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = repo.Delete(ctx, 42)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFeedbackRepoOrdersNewestFirst(t *testing.T) {
	repo := setupTestDB(t).FeedbackRepo()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Add(ctx, &models.Feedback{Name: name, Feedback: "hi", Stars: 5}))
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "second", all[1].Name)
	assert.Equal(t, "first", all[2].Name)
	assert.Greater(t, all[0].ID, all[1].ID)
}

func TestFeedbackRepoUpdateAndDelete(t *testing.T) {
	repo := setupTestDB(t).FeedbackRepo()
	ctx := context.Background()

	f := &models.Feedback{Name: "Ann", Feedback: "nice", Stars: 3, ImageSize: 120}
	require.NoError(t, repo.Add(ctx, f))
	assert.Nil(t, f.ProfileImage)

	stars := 5
	updated, err := repo.Update(ctx, f.ID, models.FeedbackPatch{Stars: &stars, ProfileImage: strPtr("https://cdn.example/a.jpg")})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Stars)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, int64(120), updated.ImageSize)

	deleted, err := repo.Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.jpg", *deleted.ProfileImage)

	_, err = repo.Delete(ctx, f.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
