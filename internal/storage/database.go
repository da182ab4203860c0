package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/projectpulse/backend/internal/models"
	"gorm.io/gorm"
)

// chunkSize matches the historical embedded-store chunking (255KB), keeping
// individual rows comfortably under database packet limits.
const chunkSize = 255 * 1024

// DatabaseStore keeps file bytes inside the main database as chunked blob
// rows. It is the embedded-blob era of the design and the default for
// development; it needs no external storage service.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) Save(ctx context.Context, category Category, key string, r io.Reader, size int64) error {
	db := s.db.WithContext(ctx)

	return db.Transaction(func(tx *gorm.DB) error {
		// Overwrite semantics: an existing blob under the same key is
		// replaced, never appended to.
		if err := s.deleteByKey(tx, category, key); err != nil {
			return err
		}

		blob := models.FileBlob{
			Category:  string(category),
			Key:       key,
			Size:      size,
			ChunkSize: chunkSize,
		}
		if err := tx.Create(&blob).Error; err != nil {
			return err
		}

		buf := make([]byte, chunkSize)
		for seq := 0; ; seq++ {
			n, err := io.ReadFull(r, buf)
			if n > 0 {
				chunk := models.FileBlobChunk{
					BlobID: blob.ID,
					Seq:    seq,
					Data:   bytes.Clone(buf[:n]),
				}
				if err := tx.Create(&chunk).Error; err != nil {
					return err
				}
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})
}

func (s *DatabaseStore) Open(ctx context.Context, category Category, key string) (io.ReadCloser, error) {
	var blob models.FileBlob
	err := s.db.WithContext(ctx).
		Where("category = ? AND object_key = ?", string(category), key).
		First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &chunkReader{ctx: ctx, db: s.db, blobID: blob.ID}, nil
}

func (s *DatabaseStore) Rename(ctx context.Context, category Category, oldKey, newKey string) error {
	result := s.db.WithContext(ctx).
		Model(&models.FileBlob{}).
		Where("category = ? AND object_key = ?", string(category), oldKey).
		Update("object_key", newKey)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) Delete(ctx context.Context, category Category, key string) error {
	return s.deleteByKey(s.db.WithContext(ctx), category, key)
}

func (s *DatabaseStore) deleteByKey(db *gorm.DB, category Category, key string) error {
	var blob models.FileBlob
	err := db.Where("category = ? AND object_key = ?", string(category), key).First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already gone; delete stays idempotent.
			return nil
		}
		return err
	}

	if err := db.Where("blob_id = ?", blob.ID).Delete(&models.FileBlobChunk{}).Error; err != nil {
		return err
	}
	return db.Delete(&blob).Error
}

// chunkReader streams a blob one chunk row at a time so large attachments
// are never buffered whole in memory.
type chunkReader struct {
	ctx    context.Context
	db     *gorm.DB
	blobID uint
	seq    int
	buf    []byte
	done   bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		if r.done {
			return 0, io.EOF
		}
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}

		var chunk models.FileBlobChunk
		err := r.db.WithContext(r.ctx).
			Where("blob_id = ? AND seq = ?", r.blobID, r.seq).
			First(&chunk).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				r.done = true
				return 0, io.EOF
			}
			return 0, err
		}
		r.buf = chunk.Data
		r.seq++
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *chunkReader) Close() error {
	r.done = true
	r.buf = nil
	return nil
}
