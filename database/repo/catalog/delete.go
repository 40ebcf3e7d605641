package catalog

import (
	"github.com/anoixa/bandpress/database/models"
)

// 以下删除都要求在调用方的事务中执行，先删子行再删父行

// deleteSongs 删除匹配条件的单曲及其署名
func (r *Repository) deleteSongs(query string, args ...interface{}) error {
	songIDs := r.db.Model(&models.Song{}).Select("id").Where(query, args...)
	if _, err := r.SongMembers.DeleteWhere("song_id IN (?)", songIDs); err != nil {
		return err
	}
	_, err := r.Songs.DeleteWhere(query, args...)
	return err
}

// DeleteSong 删除单曲及其署名
func (r *Repository) DeleteSong(id uint) error {
	return r.deleteSongs("id = ?", id)
}

// DeleteBand 删除乐队：成员关系、单曲（含署名）、专辑关联，专辑本身保留
func (r *Repository) DeleteBand(id uint) error {
	if _, err := r.Memberships.DeleteWhere("band_id = ?", id); err != nil {
		return err
	}
	if err := r.deleteSongs("band_id = ?", id); err != nil {
		return err
	}
	if err := r.db.Where("band_id = ?", id).Delete(&models.BandAlbum{}).Error; err != nil {
		return err
	}
	return r.Bands.Delete(id)
}

// DeleteAlbum 删除专辑：单曲（含署名）、乐队关联
func (r *Repository) DeleteAlbum(id uint) error {
	if err := r.deleteSongs("album_id = ?", id); err != nil {
		return err
	}
	if err := r.db.Where("album_id = ?", id).Delete(&models.BandAlbum{}).Error; err != nil {
		return err
	}
	return r.Albums.Delete(id)
}

// DeleteMember 删除乐手：成员关系、单曲署名
func (r *Repository) DeleteMember(id uint) error {
	if _, err := r.Memberships.DeleteWhere("member_id = ?", id); err != nil {
		return err
	}
	if _, err := r.SongMembers.DeleteWhere("member_id = ?", id); err != nil {
		return err
	}
	return r.Members.Delete(id)
}
