package models

import "time"

type CmsPage struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_cms_pages_slug_locale" json:"slug"`
	Locale      string    `gorm:"type:varchar(5);not null;default:'th';uniqueIndex:idx_cms_pages_slug_locale" json:"locale"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsPublished bool      `gorm:"default:false" json:"is_published"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Sections []CmsSection `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

type CmsSection struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PageID    int64     `gorm:"index;not null" json:"page_id"`
	Type      string    `gorm:"type:varchar(32);not null" json:"type"`
	Title     string    `json:"title,omitempty"`
	Content   string    `gorm:"type:text" json:"content,omitempty"`
	Settings  JSONMap   `gorm:"type:text" json:"settings,omitempty"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsVisible bool      `gorm:"default:true" json:"is_visible"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type CmsFaq struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Locale      string    `gorm:"type:varchar(5);not null;default:'th';index" json:"locale"`
	Category    string    `gorm:"type:varchar(64)" json:"category,omitempty"`
	Question    string    `gorm:"type:text;not null" json:"question"`
	Answer      string    `gorm:"type:text;not null" json:"answer"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type CmsMedia struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName     string    `gorm:"not null" json:"file_name"`
	ObjectKey    string    `gorm:"uniqueIndex;not null" json:"object_key"`
	URL          string    `gorm:"not null" json:"url"`
	MimeType     string    `gorm:"type:varchar(128)" json:"mime_type"`
	Size         int64     `json:"size"`
	Alt          string    `json:"alt,omitempty"`
	UploadedByID *int64    `json:"uploaded_by_id,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type CmsPartner struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	LogoURL     string    `json:"logo_url,omitempty"`
	Website     string    `json:"website,omitempty"`
	Country     string    `gorm:"type:varchar(2)" json:"country,omitempty"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type CmsBlogPost struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string      `gorm:"type:varchar(128);not null;uniqueIndex:idx_cms_blog_slug_locale" json:"slug"`
	Locale      string      `gorm:"type:varchar(5);not null;default:'th';uniqueIndex:idx_cms_blog_slug_locale" json:"locale"`
	Title       string      `gorm:"not null" json:"title"`
	Excerpt     string      `gorm:"type:text" json:"excerpt,omitempty"`
	Content     string      `gorm:"type:text" json:"content,omitempty"`
	CoverURL    string      `json:"cover_url,omitempty"`
	Tags        StringArray `gorm:"type:text" json:"tags"`
	IsPublished bool        `gorm:"default:false" json:"is_published"`
	PublishedAt *time.Time  `gorm:"index" json:"published_at,omitempty"`
	AuthorID    *int64      `json:"author_id,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// CmsEstate is an industrial estate showcased on the coverage map.
type CmsEstate struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string      `gorm:"type:varchar(128);uniqueIndex;not null" json:"slug"`
	Name        string      `gorm:"not null" json:"name"`
	Province    string      `json:"province,omitempty"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Latitude    *float64    `json:"latitude,omitempty"`
	Longitude   *float64    `json:"longitude,omitempty"`
	ImageURLs   StringArray `gorm:"type:text" json:"image_urls"`
	WorkerCount int         `gorm:"default:0" json:"worker_count"`
	SortOrder   int         `gorm:"default:0" json:"sort_order"`
	IsPublished bool        `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *CmsPage) Key() int64 { return p.ID }
func (p *CmsPage) SetKey(id int64) { p.ID = id }
func (s *CmsSection) Key() int64 { return s.ID }
func (s *CmsSection) SetKey(id int64) { s.ID = id }
func (f *CmsFaq) Key() int64 { return f.ID }
func (f *CmsFaq) SetKey(id int64) { f.ID = id }
func (m *CmsMedia) Key() int64 { return m.ID }
func (m *CmsMedia) SetKey(id int64) { m.ID = id }
func (p *CmsPartner) Key() int64 { return p.ID }
func (p *CmsPartner) SetKey(id int64) { p.ID = id }
func (b *CmsBlogPost) Key() int64 { return b.ID }
func (b *CmsBlogPost) SetKey(id int64) { b.ID = id }
func (e *CmsEstate) Key() int64 { return e.ID }
func (e *CmsEstate) SetKey(id int64) { e.ID = id }
