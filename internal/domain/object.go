package domain

import "time"

// S3メタデータのキー。
const (
	MetadataKeyID           = "key-id"
	MetadataAlgorithm       = "algorithm"
	MetadataContentEncoding = "content-encoding"
)

// ObjectInfo はオブジェクトストレージ上のオブジェクト情報を表す。
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	Metadata     map[string]string
}
