package catalog

import (
	"fmt"
	"unicode/utf8"

	"github.com/anoixa/bandpress/database/repo/catalog"
	"github.com/anoixa/bandpress/internal/errs"
)

// 字段长度上限，与表结构一致
const (
	maxNameLen        = 80
	maxReleaseTypeLen = 5
	maxMediaFormatLen = 12
	maxRoleLen        = 80
)

// BandInput 乐队表单
type BandInput struct {
	Name         string
	FormedYear   *int
	HomeLocation string
}

// MemberInput 乐手表单
type MemberInput struct {
	Name         string
	MainPosition string
}

// AlbumInput 专辑表单，BandIDs 按提交顺序关联
type AlbumInput struct {
	Title       string
	ReleaseYear *int
	BandIDs     []uint
}

// SongInput 单曲表单
type SongInput struct {
	Title       string
	BandID      uint
	AlbumID     uint
	ReleaseType string
	MediaFormat string
	ReleaseYear int
}

// SongMemberInput 单曲署名表单
type SongMemberInput struct {
	SongID   uint
	MemberID uint
	Role     string
}

// MembershipInput 成员关系表单，年份可空
type MembershipInput struct {
	BandID    uint
	MemberID  uint
	Role      string
	StartYear *int
	EndYear   *int
}

func maxLen(field, label, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return errs.Validation(field, fmt.Sprintf("%s must be at most %d characters", label, limit))
	}
	return nil
}

func firstErr(errList ...error) error {
	for _, err := range errList {
		if err != nil {
			return err
		}
	}
	return nil
}

func (in BandInput) validate() error {
	return firstErr(
		maxLen("bandname", "Band name", in.Name, maxNameLen),
		maxLen("homelocation", "Home location", in.HomeLocation, maxNameLen),
	)
}

func (in MemberInput) validate() error {
	return firstErr(
		maxLen("membername", "Member name", in.Name, maxNameLen),
		maxLen("mainposition", "Main position", in.MainPosition, maxNameLen),
	)
}

func (in AlbumInput) validate() error {
	return maxLen("albumtitle", "Album title", in.Title, maxNameLen)
}

func (in SongInput) validate() error {
	return firstErr(
		maxLen("songtitle", "Song title", in.Title, maxNameLen),
		maxLen("releasetype", "Release type", in.ReleaseType, maxReleaseTypeLen),
		maxLen("mediarelease", "Media format", in.MediaFormat, maxMediaFormatLen),
	)
}

func (in SongMemberInput) validate() error {
	return maxLen("role", "Role", in.Role, maxRoleLen)
}

// 外键检查：引用的行必须存在
func requireBand(repo *catalog.Repository, id uint) error {
	return requireRow(repo.Bands.Exists, "bandid", "Band", id)
}

func requireAlbum(repo *catalog.Repository, id uint) error {
	return requireRow(repo.Albums.Exists, "albumid", "Album", id)
}

func requireSong(repo *catalog.Repository, id uint) error {
	return requireRow(repo.Songs.Exists, "songid", "Song", id)
}

func requireMember(repo *catalog.Repository, id uint) error {
	return requireRow(repo.Members.Exists, "memberid", "Member", id)
}

func requireRow(exists func(uint) (bool, error), field, label string, id uint) error {
	ok, err := exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Validation(field, fmt.Sprintf("%s %d does not exist", label, id))
	}
	return nil
}
