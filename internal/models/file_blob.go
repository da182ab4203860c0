package models

import (
	"time"
)

// FileBlob and FileBlobChunk back the database-embedded file store variant.
// Bytes are chunked so a single row never holds an entire attachment; reads
// stream one chunk at a time. Rows in these tables are owned by the store
// and must only be touched through it.
type FileBlob struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Category  string    `gorm:"size:32;not null;uniqueIndex:idx_blob_key" json:"category"`
	Key       string    `gorm:"column:object_key;size:300;not null;uniqueIndex:idx_blob_key" json:"key"`
	Size      int64     `gorm:"not null" json:"size"`
	ChunkSize int       `gorm:"not null" json:"chunk_size"`
	CreatedAt time.Time `json:"created_at"`
}

func (FileBlob) TableName() string { return "file_blobs" }

type FileBlobChunk struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	BlobID uint   `gorm:"not null;uniqueIndex:idx_blob_chunk" json:"blob_id"`
	Seq    int    `gorm:"not null;uniqueIndex:idx_blob_chunk" json:"seq"`
	Data   []byte `gorm:"not null" json:"-"`
}

func (FileBlobChunk) TableName() string { return "file_blob_chunks" }
