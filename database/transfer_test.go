package database_test

import (
	"context"
	"testing"

	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/database/dbtest"
	"github.com/anoixa/bandpress/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	bands := []*models.Band{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	require.NoError(t, db.Create(&bands).Error)
	member := &models.Member{Name: "Kim"}
	require.NoError(t, db.Create(member).Error)
	album := &models.Album{Title: "Split"}
	require.NoError(t, db.Create(album).Error)
	require.NoError(t, db.Create(&models.BandAlbum{BandID: bands[0].ID, AlbumID: album.ID}).Error)
	require.NoError(t, db.Create(&models.BandAlbum{BandID: bands[1].ID, AlbumID: album.ID}).Error)
	require.NoError(t, db.Create(&models.Membership{BandID: bands[0].ID, MemberID: member.ID, Role: "bass"}).Error)
	song := &models.Song{BandID: bands[0].ID, AlbumID: album.ID, Title: "One", ReleaseType: "LP", MediaFormat: "CD", ReleaseYear: 2001}
	require.NoError(t, db.Create(song).Error)
	require.NoError(t, db.Create(&models.SongMember{SongID: song.ID, MemberID: member.ID, Role: "bass"}).Error)
}

func statsByTable(stats []database.TableStats) map[string]database.TableStats {
	out := make(map[string]database.TableStats, len(stats))
	for _, st := range stats {
		out[st.Table] = st
	}
	return out
}

func TestCopyApp_CopiesEveryTableInOrder(t *testing.T) {
	ctx := context.Background()
	src := dbtest.NewProvider(t, config.AppCatalog).DB()
	dst := dbtest.NewProvider(t, config.AppCatalog).DB()
	seedCatalog(t, src)

	stats, err := database.CopyApp(ctx, src, dst, config.AppCatalog, database.CopyOptions{BatchSize: 2})
	require.NoError(t, err)

	tables := make([]string, len(stats))
	for i, st := range stats {
		tables[i] = st.Table
	}
	assert.Equal(t, []string{"bands", "members", "albums", "band_albums", "memberships", "songs", "song_members"}, tables)

	byTable := statsByTable(stats)
	assert.Equal(t, int64(3), byTable["bands"].Read)
	assert.Equal(t, int64(3), byTable["bands"].Written)
	assert.Equal(t, int64(2), byTable["band_albums"].Written)

	var links []models.BandAlbum
	require.NoError(t, dst.Order("band_id asc").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Equal(t, uint(1), links[0].BandID)
}

func TestCopyApp_ConflictStrategies(t *testing.T) {
	ctx := context.Background()
	src := dbtest.NewProvider(t, config.AppBlog).DB()
	dst := dbtest.NewProvider(t, config.AppBlog).DB()
	require.NoError(t, src.Create(&models.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}).Error)

	_, err := database.CopyApp(ctx, src, dst, config.AppBlog, database.CopyOptions{})
	require.NoError(t, err)

	// 第二次运行：skip 跳过已有记录
	stats, err := database.CopyApp(ctx, src, dst, config.AppBlog, database.CopyOptions{OnConflict: database.ConflictSkip})
	require.NoError(t, err)
	users := statsByTable(stats)["users"]
	assert.Equal(t, int64(0), users.Written)
	assert.Equal(t, int64(1), users.Skipped)

	// overwrite 覆盖目标中的旧值
	require.NoError(t, src.Model(&models.User{}).Where("username = ?", "alice").Update("email", "new@x.com").Error)
	_, err = database.CopyApp(ctx, src, dst, config.AppBlog, database.CopyOptions{OnConflict: database.ConflictOverwrite})
	require.NoError(t, err)
	var got models.User
	require.NoError(t, dst.First(&got).Error)
	assert.Equal(t, "new@x.com", got.Email)

	// error 遇到冲突即失败
	_, err = database.CopyApp(ctx, src, dst, config.AppBlog, database.CopyOptions{OnConflict: database.ConflictError})
	assert.Error(t, err)
}

func TestCopyApp_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	src := dbtest.NewProvider(t, config.AppCatalog).DB()
	seedCatalog(t, src)

	stats, err := database.CopyApp(ctx, src, nil, config.AppCatalog, database.CopyOptions{DryRun: true})
	require.NoError(t, err)
	byTable := statsByTable(stats)
	assert.Equal(t, int64(3), byTable["bands"].Read)
	assert.Zero(t, byTable["bands"].Written)
}

func TestCopyApp_RejectsBadInput(t *testing.T) {
	src := dbtest.NewProvider(t, config.AppBlog).DB()

	_, err := database.CopyApp(context.Background(), src, src, config.AppBlog, database.CopyOptions{OnConflict: "merge"})
	assert.Error(t, err)

	_, err = database.CopyApp(context.Background(), src, src, "shop", database.CopyOptions{})
	assert.Error(t, err)

	_, err = database.CopyApp(context.Background(), src, nil, config.AppBlog, database.CopyOptions{})
	assert.Error(t, err)
}
