// Package export writes order history to Parquet files partitioned by
// day, either on local disk or uploaded to object storage.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/deliverus/foodstore/internal/cloudwriter"
	"github.com/deliverus/foodstore/internal/models"
)

// orderRow is the flat Parquet projection of one order. Lifecycle
// timestamps are epoch millis, zero when the stage was not reached.
type orderRow struct {
	ID            string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	RestaurantID  string  `parquet:"name=restaurant_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	UserID        string  `parquet:"name=user_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status        string  `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price         float64 `parquet:"name=price, type=DOUBLE"`
	ShippingCosts float64 `parquet:"name=shipping_costs, type=DOUBLE"`
	LineCount     int32   `parquet:"name=line_count, type=INT32"`
	CreatedAt     int64   `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	StartedAt     int64   `parquet:"name=started_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	SentAt        int64   `parquet:"name=sent_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	DeliveredAt   int64   `parquet:"name=delivered_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// OrderExporter fans orders out to one Parquet writer per day
// partition. Safe for concurrent WriteOrder calls: the exporter mutex
// guards the partition maps and a per-partition mutex serializes
// writes into each ParquetWriter.
type OrderExporter struct {
	basePath           string
	folder             string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string

	mu            sync.Mutex
	writers       map[string]*writer.ParquetWriter
	writerMutexes map[string]*sync.Mutex
	files         map[string]source.ParquetFile
}

func NewOrderExporter(basePath, folder string) *OrderExporter {
	return &OrderExporter{
		basePath:      basePath,
		folder:        folder,
		writers:       make(map[string]*writer.ParquetWriter),
		writerMutexes: make(map[string]*sync.Mutex),
		files:         make(map[string]source.ParquetFile),
	}
}

// NewS3OrderExporter uploads each partition to the bucket instead of
// writing local files.
func NewS3OrderExporter(ctx context.Context, folder, bucket, region string) (*OrderExporter, error) {
	factory, err := cloudwriter.NewS3WriterFactory(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
	}
	exporter := NewOrderExporter("", folder)
	exporter.cloudWriterFactory = factory
	exporter.cloudBucketName = bucket
	return exporter, nil
}

func (e *OrderExporter) WriteOrder(ctx context.Context, order *models.Order) error {
	year, month, day := order.CreatedAt.Date()
	partition := fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)

	e.mu.Lock()
	pw, ok := e.writers[partition]
	if !ok {
		var err error
		pw, err = e.newWriter(ctx, partition)
		if err != nil {
			e.mu.Unlock()
			return fmt.Errorf("failed to create partition writer: %w", err)
		}
	}
	writerMutex := e.writerMutexes[partition]
	e.mu.Unlock()

	writerMutex.Lock()
	defer writerMutex.Unlock()
	return pw.Write(rowFromOrder(order))
}

func rowFromOrder(order *models.Order) orderRow {
	row := orderRow{
		ID:            order.ID,
		RestaurantID:  order.RestaurantID,
		UserID:        order.UserID,
		Status:        string(order.Status()),
		Price:         order.Price,
		ShippingCosts: order.ShippingCosts,
		LineCount:     int32(len(order.Products)),
		CreatedAt:     order.CreatedAt.UnixMilli(),
	}
	if order.StartedAt != nil {
		row.StartedAt = order.StartedAt.UnixMilli()
	}
	if order.SentAt != nil {
		row.SentAt = order.SentAt.UnixMilli()
	}
	if order.DeliveredAt != nil {
		row.DeliveredAt = order.DeliveredAt.UnixMilli()
	}
	return row
}

func (e *OrderExporter) newWriter(ctx context.Context, partition string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if e.cloudWriterFactory != nil {
		objectPath := filepath.Join(e.folder, "orders", partition, "data.parquet")
		cw, err := e.cloudWriterFactory.NewWriter(ctx, e.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = newCloudParquetFile(cw)
	} else {
		fullPath := filepath.Join(e.basePath, e.folder, "orders", partition)
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(orderRow), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	e.writers[partition] = pw
	e.writerMutexes[partition] = &sync.Mutex{}
	e.files[partition] = fw
	return pw, nil
}

// Close flushes and closes every partition writer, returning the last
// error seen.
func (e *OrderExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var lastErr error
	for partition, pw := range e.writers {
		writerMutex := e.writerMutexes[partition]
		writerMutex.Lock()
		if err := pw.WriteStop(); err != nil {
			lastErr = fmt.Errorf("closing writer for partition %s: %w", partition, err)
		}
		if f, ok := e.files[partition]; ok {
			if err := f.Close(); err != nil {
				lastErr = fmt.Errorf("closing file for partition %s: %w", partition, err)
			}
		}
		writerMutex.Unlock()
	}
	e.writers = make(map[string]*writer.ParquetWriter)
	e.writerMutexes = make(map[string]*sync.Mutex)
	e.files = make(map[string]source.ParquetFile)
	return lastErr
}

// cloudParquetFile adapts a CloudWriter to the write-only subset of
// source.ParquetFile that the writer path exercises.
type cloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func newCloudParquetFile(cw cloudwriter.CloudWriter) *cloudParquetFile {
	return &cloudParquetFile{cloudWriter: cw}
}

func (c *cloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *cloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *cloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *cloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *cloudParquetFile) Write(p []byte) (n int, err error) {
	return c.cloudWriter.Write(p)
}

func (c *cloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
