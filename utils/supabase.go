package utils

import (
	"fmt"
	"io"
	"path"

	storage "github.com/supabase-community/storage-go"
)

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(objectPath string, r io.Reader, contentType string) (string, error)
}

// SupabaseUploader writes into one Supabase Storage bucket.
type SupabaseUploader struct {
	client *storage.Client
	bucket string
}

func NewSupabaseUploader(supabaseURL, key, bucket string) *SupabaseUploader {
	return &SupabaseUploader{
		client: storage.NewClient(supabaseURL+"/storage/v1", key, nil),
		bucket: bucket,
	}
}

func (u *SupabaseUploader) Upload(objectPath string, r io.Reader, contentType string) (string, error) {
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := u.client.UploadFile(u.bucket, objectPath, r, options); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return u.client.GetPublicUrl(u.bucket, objectPath).SignedURL, nil
}

// ObjectPath builds "<folder>/<id><ext of filename>".
func ObjectPath(folder, id, filename string) string {
	name := id + path.Ext(filename)
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
