package database

import (
	"bytes"
	"fmt"
	"log"

	storage_go "github.com/supabase-community/storage-go"
)

// BlobStore defines the storage bucket operations the card pipeline and
// screenshot upload need.
type BlobStore interface {
	Upload(bucket, path string, data []byte, contentType string, upsert bool) error
	PublicURL(bucket, path string) string
}

// blobStoreImpl implements BlobStore over the Supabase storage API.
type blobStoreImpl struct {
	supabase *SupabaseService
}

// NewBlobStore creates a new instance of BlobStore.
func NewBlobStore(supabase *SupabaseService) BlobStore {
	return &blobStoreImpl{supabase: supabase}
}

// Upload writes a blob to the given bucket path.
func (b *blobStoreImpl) Upload(bucket, path string, data []byte, contentType string, upsert bool) error {
	_, err := b.supabase.Client.Storage.UploadFile(bucket, path, bytes.NewReader(data), storageFileOptions(contentType, upsert))
	if err != nil {
		log.Printf("BlobStore Error: upload to %s/%s failed: %v", bucket, path, err)
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

// PublicURL resolves the public URL of an object. The bucket must be
// public; reachability is still verified separately because a resolved
// URL does not guarantee the object is actually servable.
func (b *blobStoreImpl) PublicURL(bucket, path string) string {
	resp := b.supabase.Client.Storage.GetPublicUrl(bucket, path)
	return resp.SignedURL
}

func storageFileOptions(contentType string, upsert bool) storage_go.FileOptions {
	return storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
}
