package catalog

import (
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/database/repo/base"
	"gorm.io/gorm"
)

// Repository 乐队目录仓库
type Repository struct {
	db *gorm.DB

	Bands       *base.Repository[models.Band]
	Members     *base.Repository[models.Member]
	Albums      *base.Repository[models.Album]
	Songs       *base.Repository[models.Song]
	Memberships *base.Repository[models.Membership]
	SongMembers *base.Repository[models.SongMember]
}

// NewRepository 创建新的目录仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		Bands:       base.NewRepository[models.Band](db),
		Members:     base.NewRepository[models.Member](db),
		Albums:      base.NewRepository[models.Album](db),
		Songs:       base.NewRepository[models.Song](db),
		Memberships: base.NewRepository[models.Membership](db),
		SongMembers: base.NewRepository[models.SongMember](db),
	}
}

// CreateAlbum 创建专辑并按给定顺序关联乐队，重复的乐队 ID 只关联一次
func (r *Repository) CreateAlbum(album *models.Album, bandIDs []uint) error {
	if err := r.Albums.Create(album); err != nil {
		return err
	}
	return r.LinkBands(album.ID, bandIDs)
}

// LinkBands 写入 band_albums 关联
func (r *Repository) LinkBands(albumID uint, bandIDs []uint) error {
	seen := make(map[uint]struct{}, len(bandIDs))
	for _, bandID := range bandIDs {
		if _, ok := seen[bandID]; ok {
			continue
		}
		seen[bandID] = struct{}{}
		if err := r.db.Create(&models.BandAlbum{BandID: bandID, AlbumID: albumID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetBandDetail 乐队详情：成员关系（含乐手）、单曲、专辑
func (r *Repository) GetBandDetail(id uint) (*models.Band, error) {
	band, err := r.Bands.GetByID(id, "Memberships.Member", "Songs")
	if err != nil || band == nil {
		return band, err
	}
	albums, err := r.AlbumsForBand(id)
	if err != nil {
		return nil, err
	}
	band.Albums = albums
	return band, nil
}

// ListBandDetails 全部乐队及其成员关系、单曲、专辑
func (r *Repository) ListBandDetails() ([]*models.Band, error) {
	var bands []*models.Band
	err := r.db.
		Preload("Memberships.Member").
		Preload("Songs", func(db *gorm.DB) *gorm.DB { return db.Order("songs.id asc") }).
		Preload("Albums", func(db *gorm.DB) *gorm.DB { return db.Order("albums.id asc") }).
		Order("id asc").
		Find(&bands).Error
	return bands, err
}

// GetMembershipDetail 成员关系（含乐队和乐手）
func (r *Repository) GetMembershipDetail(id uint) (*models.Membership, error) {
	return r.Memberships.GetByID(id, "Band", "Member")
}

// GetSongDetail 单曲（含乐队和专辑）
func (r *Repository) GetSongDetail(id uint) (*models.Song, error) {
	return r.Songs.GetByID(id, "Band", "Album")
}

// SongsOfAlbum 专辑中的单曲
func (r *Repository) SongsOfAlbum(albumID uint) ([]*models.Song, error) {
	return r.Songs.FindBy("id asc", "album_id = ?", albumID)
}

// MembershipsOfMember 乐手的成员关系（含乐队）
func (r *Repository) MembershipsOfMember(memberID uint) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := r.db.Preload("Band").Where("member_id = ?", memberID).Order("id asc").Find(&memberships).Error
	return memberships, err
}

// DataDump 目录全部数据
type DataDump struct {
	Bands       []*models.Band       `json:"bands"`
	Members     []*models.Member     `json:"members"`
	Memberships []*models.Membership `json:"memberships"`
	Albums      []*models.Album      `json:"albums"`
	BandAlbums  []*models.BandAlbum  `json:"band_albums"`
	Songs       []*models.Song       `json:"songs"`
	SongMembers []*models.SongMember `json:"song_members"`
}

// Dump 读取所有目录表
func (r *Repository) Dump() (*DataDump, error) {
	var (
		d   DataDump
		err error
	)
	if d.Bands, err = r.Bands.List(""); err != nil {
		return nil, err
	}
	if d.Members, err = r.Members.List(""); err != nil {
		return nil, err
	}
	if d.Memberships, err = r.Memberships.List(""); err != nil {
		return nil, err
	}
	if d.Albums, err = r.Albums.List(""); err != nil {
		return nil, err
	}
	if err = r.db.Order("band_id asc, album_id asc").Find(&d.BandAlbums).Error; err != nil {
		return nil, err
	}
	if d.Songs, err = r.Songs.List(""); err != nil {
		return nil, err
	}
	if d.SongMembers, err = r.SongMembers.List(""); err != nil {
		return nil, err
	}
	return &d, nil
}
