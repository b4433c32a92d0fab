package index

import "time"

// sourceRow is a source registered on a named index.
type sourceRow struct {
	ID        uint   `gorm:"primaryKey"`
	IndexName string `gorm:"size:191;not null;uniqueIndex:idx_index_sources_key"`
	Address   string `gorm:"size:191;not null;uniqueIndex:idx_index_sources_key"`
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sourceRow) TableName() string { return "index_sources" }

// documentRow is one stored document of a source.
type documentRow struct {
	ID         uint   `gorm:"primaryKey"`
	IndexName  string `gorm:"size:191;not null;uniqueIndex:idx_index_documents_key"`
	Collection string `gorm:"size:191;not null;uniqueIndex:idx_index_documents_key"`
	Path       string `gorm:"size:191;not null;uniqueIndex:idx_index_documents_key"`
	Source     string `gorm:"size:191;not null;index"`
	Version    int64
	Body       string `gorm:"type:text"`
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "index_documents" }
