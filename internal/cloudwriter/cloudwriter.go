// Package cloudwriter abstracts object storage uploads behind a small
// writer interface so the export layer stays storage-agnostic. The
// caller's context is captured at NewWriter time and bounds the final
// upload, so a cancelled export never leaves a PutObject running.
package cloudwriter

import "context"

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath string) (CloudWriter, error)
}
