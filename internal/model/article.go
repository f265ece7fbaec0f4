package model

// Article is a stored text passage with the label of where it came from.
type Article struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PageContent string `gorm:"column:page_content;type:text;not null" json:"page_content"`
	Source      string `gorm:"size:255;not null" json:"source"`
}

func (Article) TableName() string {
	return "Articles"
}
