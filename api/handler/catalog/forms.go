package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

type bandRequest struct {
	Name         string `form:"bandname"`
	FormedYear   string `form:"formedyear"`
	HomeLocation string `form:"homelocation"`
}

type memberRequest struct {
	Name         string `form:"membername"`
	MainPosition string `form:"mainposition"`
}

type albumRequest struct {
	Title       string `form:"albumtitle"`
	ReleaseYear string `form:"releaseyear"`
	BandIDs     []uint `form:"bandid"`
}

type songRequest struct {
	Title       string `form:"songtitle"`
	BandID      uint   `form:"bandid" binding:"required"`
	AlbumID     uint   `form:"albumid" binding:"required"`
	ReleaseType string `form:"releasetype"`
	MediaFormat string `form:"mediarelease"`
	ReleaseYear int    `form:"songreleaseyear" binding:"required"`
}

type songMemberRequest struct {
	SongID   uint   `form:"songid" binding:"required"`
	MemberID uint   `form:"memberid" binding:"required"`
	Role     string `form:"role"`
}

type membershipRequest struct {
	BandID    uint   `form:"bandid" binding:"required"`
	MemberID  uint   `form:"memberid" binding:"required"`
	Role      string `form:"role"`
	StartYear string `form:"startyear"`
	EndYear   string `form:"endyear"`
}

// optionalInt 空串视为未填写
func optionalInt(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q is not an integer", field, value)
	}
	return &n, nil
}
