package catalog_test

import (
	"testing"

	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database/dbtest"
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/database/repo/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo    *catalog.Repository
	band    *models.Band
	other   *models.Band
	album   *models.Album
	single  *models.Album
	singer  *models.Member
	drummer *models.Member
	song1   *models.Song
	song2   *models.Song
}

func intPtr(v int) *int { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p := dbtest.NewProvider(t, config.AppCatalog)
	repo := catalog.NewRepository(p.DB())
	f := &fixture{repo: repo}

	f.band = &models.Band{Name: "The Band", FormedYear: intPtr(1990), HomeLocation: "Leeds"}
	f.other = &models.Band{Name: "Side Project"}
	require.NoError(t, repo.Bands.Create(f.band))
	require.NoError(t, repo.Bands.Create(f.other))

	f.singer = &models.Member{Name: "Sam", MainPosition: "vocals"}
	f.drummer = &models.Member{Name: "Dee", MainPosition: "drums"}
	require.NoError(t, repo.Members.Create(f.singer))
	require.NoError(t, repo.Members.Create(f.drummer))

	f.album = &models.Album{Title: "Debut", ReleaseYear: intPtr(1992)}
	require.NoError(t, repo.CreateAlbum(f.album, []uint{f.band.ID, f.other.ID, f.band.ID}))
	f.single = &models.Album{Title: "Single"}
	require.NoError(t, repo.CreateAlbum(f.single, []uint{f.band.ID}))

	f.song1 = &models.Song{BandID: f.band.ID, AlbumID: f.album.ID, Title: "One", ReleaseType: "LP", MediaFormat: "CD", ReleaseYear: 1992}
	f.song2 = &models.Song{BandID: f.band.ID, AlbumID: f.album.ID, Title: "Two", ReleaseType: "LP", MediaFormat: "CD", ReleaseYear: 1992}
	require.NoError(t, repo.Songs.Create(f.song1))
	require.NoError(t, repo.Songs.Create(f.song2))

	require.NoError(t, repo.SongMembers.Create(&models.SongMember{SongID: f.song1.ID, MemberID: f.singer.ID, Role: "vocals"}))
	require.NoError(t, repo.SongMembers.Create(&models.SongMember{SongID: f.song1.ID, MemberID: f.drummer.ID, Role: "drums"}))
	require.NoError(t, repo.SongMembers.Create(&models.SongMember{SongID: f.song2.ID, MemberID: f.singer.ID, Role: "backing"}))

	require.NoError(t, repo.Memberships.Create(&models.Membership{BandID: f.band.ID, MemberID: f.singer.ID, Role: "lead", StartYear: intPtr(1990)}))
	require.NoError(t, repo.Memberships.Create(&models.Membership{BandID: f.other.ID, MemberID: f.singer.ID, Role: "guest"}))
	return f
}

func titles(albums []*models.Album) []string {
	out := make([]string, len(albums))
	for i, a := range albums {
		out[i] = a.Title
	}
	return out
}

func names(members []*models.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}

func TestAlbumsForBand_AssociationOrder(t *testing.T) {
	f := newFixture(t)

	albums, err := f.repo.AlbumsForBand(f.band.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Debut", "Single"}, titles(albums))

	albums, err = f.repo.AlbumsForBand(f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Debut"}, titles(albums))

	albums, err = f.repo.AlbumsForBand(999)
	require.NoError(t, err)
	assert.Empty(t, albums)
}

func TestAlbumsForBand_OrderedByAlbumIDNotLinkOrder(t *testing.T) {
	f := newFixture(t)

	band := &models.Band{Name: "Late Links"}
	require.NoError(t, f.repo.Bands.Create(band))
	first := &models.Album{Title: "First"}
	second := &models.Album{Title: "Second"}
	require.NoError(t, f.repo.Albums.Create(first))
	require.NoError(t, f.repo.Albums.Create(second))

	// 先写后一张专辑的关联
	require.NoError(t, f.repo.LinkBands(second.ID, []uint{band.ID}))
	require.NoError(t, f.repo.LinkBands(first.ID, []uint{band.ID}))

	albums, err := f.repo.AlbumsForBand(band.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, titles(albums))
}

func TestBandsOfAlbum(t *testing.T) {
	f := newFixture(t)

	bands, err := f.repo.BandsOfAlbum(f.album.ID)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, f.band.ID, bands[0].ID)
	assert.Equal(t, f.other.ID, bands[1].ID)
}

func TestSongAndMemberTraversal(t *testing.T) {
	f := newFixture(t)

	members, err := f.repo.MembersOfSong(f.song1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sam", "Dee"}, names(members))

	songs, err := f.repo.SongsOfMember(f.singer.ID)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "One", songs[0].Title)

	albums, err := f.repo.AlbumsOfMember(f.singer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Debut"}, titles(albums))

	members, err = f.repo.MembersOfAlbum(f.album.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sam", "Dee"}, names(members))

	members, err = f.repo.MembersOfBand(f.band.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sam"}, names(members))

	bands, err := f.repo.BandsOfMember(f.singer.ID)
	require.NoError(t, err)
	assert.Len(t, bands, 2)

	credits, err := f.repo.CreditsOfSong(f.song1.ID)
	require.NoError(t, err)
	require.Len(t, credits, 2)
	require.NotNil(t, credits[0].Member)
	assert.Equal(t, "vocals", credits[0].Role)
}

func TestGetBandDetail(t *testing.T) {
	f := newFixture(t)

	band, err := f.repo.GetBandDetail(f.band.ID)
	require.NoError(t, err)
	require.NotNil(t, band)
	assert.Len(t, band.Songs, 2)
	require.Len(t, band.Memberships, 1)
	require.NotNil(t, band.Memberships[0].Member)
	assert.Equal(t, "Sam", band.Memberships[0].Member.Name)
	assert.Equal(t, []string{"Debut", "Single"}, titles(band.Albums))

	missing, err := f.repo.GetBandDetail(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestForeignKeysEnforced(t *testing.T) {
	f := newFixture(t)

	err := f.repo.Songs.Create(&models.Song{BandID: 999, AlbumID: f.album.ID, Title: "Ghost", ReleaseType: "EP", MediaFormat: "CD", ReleaseYear: 2000})
	assert.Error(t, err)
}

func TestDeleteBand_Cascades(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.repo.DeleteBand(f.band.ID))

	songs, err := f.repo.Songs.Count()
	require.NoError(t, err)
	assert.Zero(t, songs)

	credits, err := f.repo.SongMembers.Count()
	require.NoError(t, err)
	assert.Zero(t, credits)

	memberships, err := f.repo.Memberships.FindBy("", "band_id = ?", f.band.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)

	// 专辑保留，只解除关联
	albums, err := f.repo.Albums.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), albums)

	bands, err := f.repo.BandsOfAlbum(f.album.ID)
	require.NoError(t, err)
	require.Len(t, bands, 1)
	assert.Equal(t, f.other.ID, bands[0].ID)
}

func TestDeleteAlbumAndMember_Cascade(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.repo.DeleteMember(f.drummer.ID))
	members, err := f.repo.MembersOfSong(f.song1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sam"}, names(members))

	require.NoError(t, f.repo.DeleteAlbum(f.album.ID))
	songs, err := f.repo.SongsOfAlbum(f.album.ID)
	require.NoError(t, err)
	assert.Empty(t, songs)

	albums, err := f.repo.AlbumsForBand(f.band.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Single"}, titles(albums))
}

func TestDump(t *testing.T) {
	f := newFixture(t)

	d, err := f.repo.Dump()
	require.NoError(t, err)
	assert.Len(t, d.Bands, 2)
	assert.Len(t, d.Members, 2)
	assert.Len(t, d.Albums, 2)
	assert.Len(t, d.BandAlbums, 3)
	assert.Len(t, d.Songs, 2)
	assert.Len(t, d.SongMembers, 3)
	assert.Len(t, d.Memberships, 2)
}
