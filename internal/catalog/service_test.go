package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database/dbtest"
	"github.com/anoixa/bandpress/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.NewProvider(t, config.AppCatalog))
}

func validationField(t *testing.T, err error) string {
	t.Helper()
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Field
}

func TestAddAlbum_LinksBandsInOrder(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	band, err := s.AddBand(ctx, BandInput{Name: "The Quarrymen", FormedYear: intPtr(1957)})
	require.NoError(t, err)
	other, err := s.AddBand(ctx, BandInput{Name: "Wings"})
	require.NoError(t, err)

	first, err := s.AddAlbum(ctx, AlbumInput{Title: "First", BandIDs: []uint{band.ID}})
	require.NoError(t, err)
	second, err := s.AddAlbum(ctx, AlbumInput{Title: "Second", ReleaseYear: intPtr(1970), BandIDs: []uint{band.ID, other.ID, band.ID}})
	require.NoError(t, err)

	albums, err := s.AlbumsForBand(ctx, band.ID)
	require.NoError(t, err)
	require.Len(t, albums, 2)
	assert.Equal(t, first.ID, albums[0].ID)
	assert.Equal(t, second.ID, albums[1].ID)

	albums, err = s.AlbumsForBand(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "Second", albums[0].Title)

	_, err = s.AlbumsForBand(ctx, 404)
	assert.True(t, errs.IsNotFound(err))
}

func TestAddAlbum_UnknownBandRejected(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.AddAlbum(ctx, AlbumInput{Title: "Ghost", BandIDs: []uint{7}})
	assert.Equal(t, "bandid", validationField(t, err))

	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump.Albums)
}

func TestAddBand_LengthCountsCharacters(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	band, err := s.AddBand(ctx, BandInput{Name: strings.Repeat("ø", maxNameLen), HomeLocation: "Tromsø"})
	require.NoError(t, err)
	assert.NotZero(t, band.ID)

	_, err = s.AddBand(ctx, BandInput{Name: strings.Repeat("ø", maxNameLen+1)})
	assert.Equal(t, "bandname", validationField(t, err))
}

func TestAddSong_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	band, err := s.AddBand(ctx, BandInput{Name: "Band"})
	require.NoError(t, err)
	album, err := s.AddAlbum(ctx, AlbumInput{Title: "Album", BandIDs: []uint{band.ID}})
	require.NoError(t, err)

	valid := SongInput{Title: "Song", BandID: band.ID, AlbumID: album.ID, ReleaseType: "LP", MediaFormat: "Vinyl", ReleaseYear: 1969}

	tests := []struct {
		name  string
		edit  func(in *SongInput)
		field string
	}{
		{"unknown band", func(in *SongInput) { in.BandID = 99 }, "bandid"},
		{"unknown album", func(in *SongInput) { in.AlbumID = 99 }, "albumid"},
		{"release type too long", func(in *SongInput) { in.ReleaseType = "Single" }, "releasetype"},
		{"media format too long", func(in *SongInput) { in.MediaFormat = "Compact Disc!" }, "mediarelease"},
		{"title too long", func(in *SongInput) { in.Title = strings.Repeat("x", 81) }, "songtitle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := s.AddSong(ctx, in)
			assert.Equal(t, tt.field, validationField(t, err))
		})
	}

	song, err := s.AddSong(ctx, valid)
	require.NoError(t, err)
	assert.NotZero(t, song.ID)
}

func TestViews(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	band, err := s.AddBand(ctx, BandInput{Name: "Band"})
	require.NoError(t, err)
	john, err := s.AddMember(ctx, MemberInput{Name: "John", MainPosition: "Guitar"})
	require.NoError(t, err)
	paul, err := s.AddMember(ctx, MemberInput{Name: "Paul", MainPosition: "Bass"})
	require.NoError(t, err)
	album, err := s.AddAlbum(ctx, AlbumInput{Title: "Album", BandIDs: []uint{band.ID}})
	require.NoError(t, err)
	song, err := s.AddSong(ctx, SongInput{Title: "Song", BandID: band.ID, AlbumID: album.ID, ReleaseType: "LP", MediaFormat: "CD", ReleaseYear: 1965})
	require.NoError(t, err)

	for _, in := range []SongMemberInput{
		{SongID: song.ID, MemberID: paul.ID, Role: "Vocals"},
		{SongID: song.ID, MemberID: john.ID, Role: "Guitar"},
		{SongID: song.ID, MemberID: paul.ID, Role: "Bass"},
	} {
		_, err := s.AddSongMember(ctx, in)
		require.NoError(t, err)
	}
	_, err = s.AddMembership(ctx, MembershipInput{BandID: band.ID, MemberID: john.ID, Role: "Founder", StartYear: intPtr(1960)})
	require.NoError(t, err)

	songView, err := s.GetSongView(ctx, song.ID)
	require.NoError(t, err)
	require.Len(t, songView.Members, 3)
	assert.Equal(t, "Paul", songView.Members[0].Name)
	assert.Equal(t, "John", songView.Members[1].Name)
	assert.Equal(t, album.ID, songView.Album.ID)
	require.Len(t, songView.Bands, 1)
	assert.Len(t, songView.AllSongs, 1)

	albumView, err := s.GetAlbumView(ctx, album.ID)
	require.NoError(t, err)
	assert.Len(t, albumView.Songs, 1)
	assert.Len(t, albumView.Members, 2, "members are distinct")
	assert.Len(t, albumView.Bands, 1)

	memberView, err := s.GetMemberView(ctx, john.ID)
	require.NoError(t, err)
	assert.Len(t, memberView.Songs, 1)
	assert.Len(t, memberView.Albums, 1)
	require.Len(t, memberView.Memberships, 1)
	assert.Equal(t, "Band", memberView.Memberships[0].Band.Name)
	assert.Len(t, memberView.AllMembers, 2)

	bandView, err := s.GetBand(ctx, band.ID)
	require.NoError(t, err)
	assert.Len(t, bandView.Memberships, 1)
	assert.Len(t, bandView.Songs, 1)
	assert.Len(t, bandView.Albums, 1)

	members, err := s.MembersOfBand(ctx, band.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "John", members[0].Name)

	bands, err := s.BandsOfMember(ctx, paul.ID)
	require.NoError(t, err)
	assert.Empty(t, bands)

	for _, err := range []error{
		func() error { _, err := s.GetSongView(ctx, 99); return err }(),
		func() error { _, err := s.GetAlbumView(ctx, 99); return err }(),
		func() error { _, err := s.GetMemberView(ctx, 99); return err }(),
		func() error { _, err := s.GetBand(ctx, 99); return err }(),
	} {
		assert.True(t, errs.IsNotFound(err))
	}
}

func TestMembership_EditAndDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	band, err := s.AddBand(ctx, BandInput{Name: "Band"})
	require.NoError(t, err)
	member, err := s.AddMember(ctx, MemberInput{Name: "Ringo"})
	require.NoError(t, err)

	_, err = s.AddMembership(ctx, MembershipInput{BandID: band.ID, MemberID: 42})
	assert.Equal(t, "memberid", validationField(t, err))

	m, err := s.AddMembership(ctx, MembershipInput{BandID: band.ID, MemberID: member.ID, Role: "Drums", StartYear: intPtr(1962)})
	require.NoError(t, err)

	updated, err := s.UpdateMembership(ctx, m.ID, MembershipInput{BandID: band.ID, MemberID: member.ID, Role: "Drums, vocals", StartYear: intPtr(1962), EndYear: intPtr(1970)})
	require.NoError(t, err)
	assert.Equal(t, "Drums, vocals", updated.Role)
	require.NotNil(t, updated.EndYear)
	assert.Equal(t, 1970, *updated.EndYear)

	form, err := s.GetMembershipForm(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ringo", form.Membership.Member.Name)
	assert.Len(t, form.Bands, 1)

	_, err = s.UpdateMembership(ctx, 99, MembershipInput{BandID: band.ID, MemberID: member.ID})
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, s.DeleteMembership(ctx, m.ID))
	assert.True(t, errs.IsNotFound(s.DeleteMembership(ctx, m.ID)))
}

func TestDeletes_Cascade(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	band, err := s.AddBand(ctx, BandInput{Name: "Band"})
	require.NoError(t, err)
	member, err := s.AddMember(ctx, MemberInput{Name: "M"})
	require.NoError(t, err)
	album, err := s.AddAlbum(ctx, AlbumInput{Title: "A", BandIDs: []uint{band.ID}})
	require.NoError(t, err)
	song, err := s.AddSong(ctx, SongInput{Title: "S", BandID: band.ID, AlbumID: album.ID, ReleaseType: "EP", MediaFormat: "CD", ReleaseYear: 2000})
	require.NoError(t, err)
	credit, err := s.AddSongMember(ctx, SongMemberInput{SongID: song.ID, MemberID: member.ID, Role: "Vocals"})
	require.NoError(t, err)
	_, err = s.AddMembership(ctx, MembershipInput{BandID: band.ID, MemberID: member.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteSongMember(ctx, credit.ID))
	assert.True(t, errs.IsNotFound(s.DeleteSongMember(ctx, credit.ID)))

	require.NoError(t, s.DeleteBand(ctx, band.ID))
	dump, err := s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump.Bands)
	assert.Empty(t, dump.Songs)
	assert.Empty(t, dump.Memberships)
	assert.Empty(t, dump.BandAlbums)
	assert.Len(t, dump.Albums, 1, "albums outlive their bands")
	assert.Len(t, dump.Members, 1)

	require.NoError(t, s.DeleteAlbum(ctx, album.ID))
	require.NoError(t, s.DeleteMember(ctx, member.ID))
	assert.True(t, errs.IsNotFound(s.DeleteSong(ctx, song.ID)))

	dump, err = s.Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, dump.Albums)
	assert.Empty(t, dump.Members)
}

func TestFormOptions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.AddBand(ctx, BandInput{Name: "Band"})
	require.NoError(t, err)
	_, err = s.AddMember(ctx, MemberInput{Name: "M"})
	require.NoError(t, err)

	data, err := s.FormOptions(ctx, true, false, false, false)
	require.NoError(t, err)
	assert.Len(t, data.Bands, 1)
	assert.Nil(t, data.Members)

	data, err = s.FormOptions(ctx, true, true, true, true)
	require.NoError(t, err)
	assert.Len(t, data.Members, 1)
	assert.Empty(t, data.Albums)
}
