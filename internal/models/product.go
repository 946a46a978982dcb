package models

// Media is the image or video set shown for a product
type Media struct {
	Type string   `json:"type"` // image or video
	URLs []string `json:"urls"`
}

// ProductComment is the legacy comment shape embedded in product records.
type ProductComment struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Product is a feed item published by a partner.
type Product struct {
	ID          string           `json:"id" validate:"required"`
	UserID      string           `json:"userId" validate:"required"`
	Description string           `json:"description" validate:"max=2000"`
	Media       Media            `json:"media"`
	ProductURL  string           `json:"productUrl" validate:"omitempty,url"`
	Likes       []string         `json:"likes"` // user IDs
	Comments    []ProductComment `json:"comments"`
	IsPublished bool             `json:"isPublished"`
	PublishedAt string           `json:"publishedAt"`
}

// Backup is the export format of the data store. Each field holds the raw
// stored JSON, or nil when the key was absent.
type Backup struct {
	User       *string `json:"user" yaml:"user"`
	Products   *string `json:"products" yaml:"products"`
	Settings   *string `json:"settings" yaml:"settings"`
	ExportDate string  `json:"exportDate" yaml:"exportDate"`
}
