package catalog

import (
	"context"

	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/database/repo/catalog"
	"github.com/anoixa/bandpress/internal/errs"
)

// ListBands 全部乐队，含成员关系（及乐手）、单曲、专辑
func (s *Service) ListBands(ctx context.Context) ([]*models.Band, error) {
	var bands []*models.Band
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		bands, err = repo.ListBandDetails()
		return err
	})
	return bands, err
}

// GetBand 单个乐队详情
func (s *Service) GetBand(ctx context.Context, id uint) (*models.Band, error) {
	var band *models.Band
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		band, err = repo.GetBandDetail(id)
		if err != nil {
			return err
		}
		if band == nil {
			return errs.NotFound("band", id)
		}
		return nil
	})
	return band, err
}

// AlbumView 专辑页
type AlbumView struct {
	Album     *models.Album    `json:"album"`
	Songs     []*models.Song   `json:"songs"`
	Members   []*models.Member `json:"members"`
	Bands     []*models.Band   `json:"bands"`
	AllAlbums []*models.Album  `json:"all_albums"`
}

// GetAlbumView 专辑、单曲、参与乐手（去重）、乐队和全部专辑
func (s *Service) GetAlbumView(ctx context.Context, id uint) (*AlbumView, error) {
	var v AlbumView
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		if v.Album, err = repo.Albums.GetByID(id); err != nil {
			return err
		}
		if v.Album == nil {
			return errs.NotFound("album", id)
		}
		if v.Songs, err = repo.SongsOfAlbum(id); err != nil {
			return err
		}
		if v.Members, err = repo.MembersOfAlbum(id); err != nil {
			return err
		}
		if v.Bands, err = repo.BandsOfAlbum(id); err != nil {
			return err
		}
		v.AllAlbums, err = repo.Albums.List("")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MemberView 乐手页
type MemberView struct {
	Member      *models.Member       `json:"member"`
	Songs       []*models.Song       `json:"songs"`
	Albums      []*models.Album      `json:"albums"`
	Memberships []*models.Membership `json:"memberships"`
	AllMembers  []*models.Member     `json:"all_members"`
}

// GetMemberView 乐手、参与的单曲和专辑、成员关系和全部乐手
func (s *Service) GetMemberView(ctx context.Context, id uint) (*MemberView, error) {
	var v MemberView
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		if v.Member, err = repo.Members.GetByID(id); err != nil {
			return err
		}
		if v.Member == nil {
			return errs.NotFound("member", id)
		}
		if v.Songs, err = repo.SongsOfMember(id); err != nil {
			return err
		}
		if v.Albums, err = repo.AlbumsOfMember(id); err != nil {
			return err
		}
		if v.Memberships, err = repo.MembershipsOfMember(id); err != nil {
			return err
		}
		v.AllMembers, err = repo.Members.List("")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SongView 单曲页
type SongView struct {
	Song     *models.Song         `json:"song"`
	Members  []*models.Member     `json:"members"`
	Credits  []*models.SongMember `json:"credits"`
	Album    *models.Album        `json:"album"`
	Bands    []*models.Band       `json:"bands"`
	AllSongs []*models.Song       `json:"all_songs"`
}

// GetSongView 单曲、署名乐手、所属专辑及专辑的乐队、全部单曲
func (s *Service) GetSongView(ctx context.Context, id uint) (*SongView, error) {
	var v SongView
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		if v.Song, err = repo.GetSongDetail(id); err != nil {
			return err
		}
		if v.Song == nil {
			return errs.NotFound("song", id)
		}
		if v.Members, err = repo.MembersOfSong(id); err != nil {
			return err
		}
		if v.Credits, err = repo.CreditsOfSong(id); err != nil {
			return err
		}
		v.Album = v.Song.Album
		v.Bands = []*models.Band{}
		if v.Album != nil {
			if v.Bands, err = repo.BandsOfAlbum(v.Album.ID); err != nil {
				return err
			}
		}
		v.AllSongs, err = repo.Songs.List("")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// AlbumsForBand 乐队关联的专辑，按关联顺序；乐队不存在返回 NotFoundError
func (s *Service) AlbumsForBand(ctx context.Context, bandID uint) ([]*models.Album, error) {
	var albums []*models.Album
	err := s.run(ctx, func(repo *catalog.Repository) error {
		ok, err := repo.Bands.Exists(bandID)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NotFound("band", bandID)
		}
		albums, err = repo.AlbumsForBand(bandID)
		return err
	})
	return albums, err
}

// MembersOfBand 通过成员关系找到的乐手
func (s *Service) MembersOfBand(ctx context.Context, bandID uint) ([]*models.Member, error) {
	var members []*models.Member
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		members, err = repo.MembersOfBand(bandID)
		return err
	})
	return members, err
}

// BandsOfMember 乐手所在过的乐队
func (s *Service) BandsOfMember(ctx context.Context, memberID uint) ([]*models.Band, error) {
	var bands []*models.Band
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		bands, err = repo.BandsOfMember(memberID)
		return err
	})
	return bands, err
}

// Summary 首页统计
type Summary struct {
	Bands   int64 `json:"bands"`
	Members int64 `json:"members"`
	Albums  int64 `json:"albums"`
	Songs   int64 `json:"songs"`
}

// GetSummary 各表记录数
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	var sum Summary
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		if sum.Bands, err = repo.Bands.Count(); err != nil {
			return err
		}
		if sum.Members, err = repo.Members.Count(); err != nil {
			return err
		}
		if sum.Albums, err = repo.Albums.Count(); err != nil {
			return err
		}
		sum.Songs, err = repo.Songs.Count()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}
