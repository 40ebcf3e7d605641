// Package catalog 乐队目录：乐队、乐手、成员关系、专辑、单曲、署名
//
// 目录不需要登录。所有关联查询每次请求都直接查库，不经过缓存。
package catalog

import (
	"context"
	"log"

	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/database/repo/catalog"
	"github.com/anoixa/bandpress/internal/errs"
)

// Service 目录服务
type Service struct {
	db database.Provider
}

// NewService 创建目录服务
func NewService(db database.Provider) *Service {
	return &Service{db: db}
}

// run 在一个工作单元中执行
func (s *Service) run(ctx context.Context, fn func(repo *catalog.Repository) error) error {
	return database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		return fn(uow.Catalog())
	})
}

// FormData 表单下拉选项
type FormData struct {
	Bands   []*models.Band   `json:"bands,omitempty"`
	Members []*models.Member `json:"members,omitempty"`
	Albums  []*models.Album  `json:"albums,omitempty"`
	Songs   []*models.Song   `json:"songs,omitempty"`
}

// FormOptions 表单选项，按需取乐队、乐手、专辑、单曲
func (s *Service) FormOptions(ctx context.Context, bands, members, albums, songs bool) (*FormData, error) {
	var data FormData
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		if bands {
			if data.Bands, err = repo.Bands.List(""); err != nil {
				return err
			}
		}
		if members {
			if data.Members, err = repo.Members.List(""); err != nil {
				return err
			}
		}
		if albums {
			if data.Albums, err = repo.Albums.List(""); err != nil {
				return err
			}
		}
		if songs {
			if data.Songs, err = repo.Songs.List(""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// AddBand 新增乐队
func (s *Service) AddBand(ctx context.Context, in BandInput) (*models.Band, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	band := &models.Band{Name: in.Name, FormedYear: in.FormedYear, HomeLocation: in.HomeLocation}
	err := s.run(ctx, func(repo *catalog.Repository) error {
		return repo.Bands.Create(band)
	})
	if err != nil {
		return nil, err
	}
	return band, nil
}

// AddMember 新增乐手，不关联乐队
func (s *Service) AddMember(ctx context.Context, in MemberInput) (*models.Member, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	member := &models.Member{Name: in.Name, MainPosition: in.MainPosition}
	err := s.run(ctx, func(repo *catalog.Repository) error {
		return repo.Members.Create(member)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// AddAlbum 新增专辑并关联所有选中的乐队
func (s *Service) AddAlbum(ctx context.Context, in AlbumInput) (*models.Album, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	album := &models.Album{Title: in.Title, ReleaseYear: in.ReleaseYear}
	err := s.run(ctx, func(repo *catalog.Repository) error {
		for _, id := range in.BandIDs {
			if err := requireBand(repo, id); err != nil {
				return err
			}
		}
		return repo.CreateAlbum(album, in.BandIDs)
	})
	if err != nil {
		return nil, err
	}
	return album, nil
}

// AddSong 新增单曲
func (s *Service) AddSong(ctx context.Context, in SongInput) (*models.Song, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	song := &models.Song{
		BandID:      in.BandID,
		AlbumID:     in.AlbumID,
		Title:       in.Title,
		ReleaseType: in.ReleaseType,
		MediaFormat: in.MediaFormat,
		ReleaseYear: in.ReleaseYear,
	}
	err := s.run(ctx, func(repo *catalog.Repository) error {
		if err := requireBand(repo, in.BandID); err != nil {
			return err
		}
		if err := requireAlbum(repo, in.AlbumID); err != nil {
			return err
		}
		return repo.Songs.Create(song)
	})
	if err != nil {
		return nil, err
	}
	return song, nil
}

// AddSongMember 给单曲添加署名
func (s *Service) AddSongMember(ctx context.Context, in SongMemberInput) (*models.SongMember, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	credit := &models.SongMember{SongID: in.SongID, MemberID: in.MemberID, Role: in.Role}
	err := s.run(ctx, func(repo *catalog.Repository) error {
		if err := requireSong(repo, in.SongID); err != nil {
			return err
		}
		if err := requireMember(repo, in.MemberID); err != nil {
			return err
		}
		return repo.SongMembers.Create(credit)
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// AddMembership 新增成员关系
func (s *Service) AddMembership(ctx context.Context, in MembershipInput) (*models.Membership, error) {
	membership := &models.Membership{}
	err := s.run(ctx, func(repo *catalog.Repository) error {
		if err := applyMembership(repo, membership, in); err != nil {
			return err
		}
		return repo.Memberships.Create(membership)
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// MembershipForm 编辑成员关系的表单数据
type MembershipForm struct {
	Membership *models.Membership `json:"membership"`
	Bands      []*models.Band     `json:"bands"`
	Members    []*models.Member   `json:"members"`
}

// GetMembershipForm 读取成员关系及可选的乐队、乐手
func (s *Service) GetMembershipForm(ctx context.Context, id uint) (*MembershipForm, error) {
	var form MembershipForm
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		if form.Membership, err = repo.GetMembershipDetail(id); err != nil {
			return err
		}
		if form.Membership == nil {
			return errs.NotFound("membership", id)
		}
		if form.Bands, err = repo.Bands.List(""); err != nil {
			return err
		}
		form.Members, err = repo.Members.List("")
		return err
	})
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// UpdateMembership 修改成员关系，最后写入者生效
func (s *Service) UpdateMembership(ctx context.Context, id uint, in MembershipInput) (*models.Membership, error) {
	var membership *models.Membership
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		membership, err = repo.Memberships.GetByID(id)
		if err != nil {
			return err
		}
		if membership == nil {
			return errs.NotFound("membership", id)
		}
		if err := applyMembership(repo, membership, in); err != nil {
			return err
		}
		return repo.Memberships.Update(membership)
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func applyMembership(repo *catalog.Repository, m *models.Membership, in MembershipInput) error {
	if err := requireBand(repo, in.BandID); err != nil {
		return err
	}
	if err := requireMember(repo, in.MemberID); err != nil {
		return err
	}
	m.BandID = in.BandID
	m.MemberID = in.MemberID
	m.Role = in.Role
	m.StartYear = in.StartYear
	m.EndYear = in.EndYear
	return nil
}

// DeleteMembership 删除成员关系
func (s *Service) DeleteMembership(ctx context.Context, id uint) error {
	return s.run(ctx, func(repo *catalog.Repository) error {
		ok, err := repo.Memberships.Exists(id)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NotFound("membership", id)
		}
		return repo.Memberships.Delete(id)
	})
}

// DeleteSongMember 删除单曲署名
func (s *Service) DeleteSongMember(ctx context.Context, id uint) error {
	return s.run(ctx, func(repo *catalog.Repository) error {
		ok, err := repo.SongMembers.Exists(id)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NotFound("song member", id)
		}
		return repo.SongMembers.Delete(id)
	})
}

// DeleteBand 删除乐队及其成员关系、单曲、专辑关联
func (s *Service) DeleteBand(ctx context.Context, id uint) error {
	return s.deleteWith(ctx, "band", id, func(repo *catalog.Repository) (bool, error) {
		return repo.Bands.Exists(id)
	}, func(repo *catalog.Repository) error {
		return repo.DeleteBand(id)
	})
}

// DeleteMember 删除乐手及其成员关系、署名
func (s *Service) DeleteMember(ctx context.Context, id uint) error {
	return s.deleteWith(ctx, "member", id, func(repo *catalog.Repository) (bool, error) {
		return repo.Members.Exists(id)
	}, func(repo *catalog.Repository) error {
		return repo.DeleteMember(id)
	})
}

// DeleteAlbum 删除专辑及其单曲、乐队关联
func (s *Service) DeleteAlbum(ctx context.Context, id uint) error {
	return s.deleteWith(ctx, "album", id, func(repo *catalog.Repository) (bool, error) {
		return repo.Albums.Exists(id)
	}, func(repo *catalog.Repository) error {
		return repo.DeleteAlbum(id)
	})
}

// DeleteSong 删除单曲及其署名
func (s *Service) DeleteSong(ctx context.Context, id uint) error {
	return s.deleteWith(ctx, "song", id, func(repo *catalog.Repository) (bool, error) {
		return repo.Songs.Exists(id)
	}, func(repo *catalog.Repository) error {
		return repo.DeleteSong(id)
	})
}

func (s *Service) deleteWith(ctx context.Context, resource string, id uint,
	exists func(*catalog.Repository) (bool, error), del func(*catalog.Repository) error) error {
	err := s.run(ctx, func(repo *catalog.Repository) error {
		ok, err := exists(repo)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NotFound(resource, id)
		}
		return del(repo)
	})
	if err == nil {
		log.Printf("[Catalog] Deleted %s %d", resource, id)
	}
	return err
}

// Dump 全部目录数据
func (s *Service) Dump(ctx context.Context) (*catalog.DataDump, error) {
	var dump *catalog.DataDump
	err := s.run(ctx, func(repo *catalog.Repository) error {
		var err error
		dump, err = repo.Dump()
		return err
	})
	return dump, err
}
