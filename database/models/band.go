package models

// Band 乐队，通过 band_albums 与专辑多对多关联
type Band struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"type:varchar(80);not null" json:"name"`
	FormedYear   *int   `json:"formed_year"`
	HomeLocation string `gorm:"type:varchar(80)" json:"home_location"`

	Memberships []Membership `gorm:"foreignKey:BandID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	Songs       []Song       `gorm:"foreignKey:BandID;constraint:OnDelete:CASCADE" json:"songs,omitempty"`
	Albums      []*Album     `gorm:"many2many:band_albums;" json:"albums,omitempty"`
}

// Member 乐手，不直接挂在乐队上，只通过 Membership 关联
type Member struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"type:varchar(80);not null" json:"name"`
	MainPosition string `gorm:"type:varchar(80)" json:"main_position"`

	Memberships []Membership `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	SongCredits []SongMember `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"song_credits,omitempty"`
}

// Membership 乐队成员关系（带属性的关联实体）
type Membership struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	BandID    uint   `gorm:"not null;index" json:"band_id"`
	MemberID  uint   `gorm:"not null;index" json:"member_id"`
	StartYear *int   `json:"start_year"`
	EndYear   *int   `json:"end_year"`
	Role      string `gorm:"type:text" json:"role"`

	Band   *Band   `json:"band,omitempty"`
	Member *Member `json:"member,omitempty"`
}
