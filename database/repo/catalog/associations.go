package catalog

import (
	"github.com/anoixa/bandpress/database/models"
)

// 关联查询每次直接查库，不做缓存

// AlbumsForBand 乐队关联的专辑，按 album_id 升序返回
// band_albums 以 (band_id, album_id) 为主键，没有记录写入先后的列。关联只在创建专辑时
// 写入，所以 album_id 升序就是关联顺序；直接写入的关联行同样按 album_id 排序，与写入先后无关。
func (r *Repository) AlbumsForBand(bandID uint) ([]*models.Album, error) {
	var albums []*models.Album
	err := r.db.
		Joins("JOIN band_albums ON band_albums.album_id = albums.id").
		Where("band_albums.band_id = ?", bandID).
		Order("band_albums.album_id asc").
		Find(&albums).Error
	return albums, err
}

// BandsOfAlbum 专辑关联的乐队
func (r *Repository) BandsOfAlbum(albumID uint) ([]*models.Band, error) {
	var bands []*models.Band
	err := r.db.
		Joins("JOIN band_albums ON band_albums.band_id = bands.id").
		Where("band_albums.album_id = ?", albumID).
		Order("band_albums.band_id asc").
		Find(&bands).Error
	return bands, err
}

// MembersOfSong 单曲的参与乐手，按署名顺序，同一乐手多个角色时重复出现
func (r *Repository) MembersOfSong(songID uint) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.
		Joins("JOIN song_members ON song_members.member_id = members.id").
		Where("song_members.song_id = ?", songID).
		Order("song_members.id asc").
		Find(&members).Error
	return members, err
}

// CreditsOfSong 单曲署名（含乐手）
func (r *Repository) CreditsOfSong(songID uint) ([]*models.SongMember, error) {
	var credits []*models.SongMember
	err := r.db.Preload("Member").Where("song_id = ?", songID).Order("id asc").Find(&credits).Error
	return credits, err
}

// SongsOfMember 乐手参与的单曲，按署名顺序
func (r *Repository) SongsOfMember(memberID uint) ([]*models.Song, error) {
	var songs []*models.Song
	err := r.db.
		Joins("JOIN song_members ON song_members.song_id = songs.id").
		Where("song_members.member_id = ?", memberID).
		Order("song_members.id asc").
		Find(&songs).Error
	return songs, err
}

// AlbumsOfMember 乐手参与过的专辑（去重）
func (r *Repository) AlbumsOfMember(memberID uint) ([]*models.Album, error) {
	songIDs := r.db.Model(&models.SongMember{}).Select("song_id").Where("member_id = ?", memberID)
	albumIDs := r.db.Model(&models.Song{}).Select("album_id").Where("id IN (?)", songIDs)

	var albums []*models.Album
	err := r.db.Where("id IN (?)", albumIDs).Order("id asc").Find(&albums).Error
	return albums, err
}

// MembersOfAlbum 专辑单曲中署名过的乐手（去重）
func (r *Repository) MembersOfAlbum(albumID uint) ([]*models.Member, error) {
	songIDs := r.db.Model(&models.Song{}).Select("id").Where("album_id = ?", albumID)
	memberIDs := r.db.Model(&models.SongMember{}).Select("member_id").Where("song_id IN (?)", songIDs)

	var members []*models.Member
	err := r.db.Where("id IN (?)", memberIDs).Order("id asc").Find(&members).Error
	return members, err
}

// MembersOfBand 通过成员关系找到的乐手（去重）
func (r *Repository) MembersOfBand(bandID uint) ([]*models.Member, error) {
	memberIDs := r.db.Model(&models.Membership{}).Select("member_id").Where("band_id = ?", bandID)

	var members []*models.Member
	err := r.db.Where("id IN (?)", memberIDs).Order("id asc").Find(&members).Error
	return members, err
}

// BandsOfMember 乐手所在过的乐队（去重）
func (r *Repository) BandsOfMember(memberID uint) ([]*models.Band, error) {
	bandIDs := r.db.Model(&models.Membership{}).Select("band_id").Where("member_id = ?", memberID)

	var bands []*models.Band
	err := r.db.Where("id IN (?)", bandIDs).Order("id asc").Find(&bands).Error
	return bands, err
}
