package models

// Album 专辑
type Album struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(80);not null" json:"title"`
	ReleaseYear *int   `json:"release_year"`

	Songs []Song  `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"songs,omitempty"`
	Bands []*Band `gorm:"many2many:band_albums;" json:"bands,omitempty"`
}

// Song 单曲，属于一个乐队和一张专辑
type Song struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	BandID      uint   `gorm:"not null;index" json:"band_id"`
	AlbumID     uint   `gorm:"not null;index" json:"album_id"`
	Title       string `gorm:"type:varchar(80);not null" json:"title"`
	ReleaseType string `gorm:"type:varchar(5);not null" json:"release_type"`
	MediaFormat string `gorm:"type:varchar(12);not null" json:"media_format"`
	ReleaseYear int    `gorm:"not null" json:"release_year"`

	Band    *Band        `json:"band,omitempty"`
	Album   *Album       `json:"album,omitempty"`
	Credits []SongMember `gorm:"foreignKey:SongID;constraint:OnDelete:CASCADE" json:"credits,omitempty"`
}

// SongMember 单曲与乐手的关联实体
type SongMember struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SongID   uint   `gorm:"not null;index" json:"song_id"`
	MemberID uint   `gorm:"not null;index" json:"member_id"`
	Role     string `gorm:"type:varchar(80);not null" json:"role"`

	Song   *Song   `json:"song,omitempty"`
	Member *Member `json:"member,omitempty"`
}

// BandAlbum band_albums 关联表的行，按专辑关联顺序排序
type BandAlbum struct {
	BandID  uint `gorm:"primaryKey" json:"band_id"`
	AlbumID uint `gorm:"primaryKey" json:"album_id"`
}

// TableName 关联表名
func (BandAlbum) TableName() string {
	return "band_albums"
}
