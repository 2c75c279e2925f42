package blob

import (
	"context"
	"fmt"

	"quarters/internal/platform/config"
)

// Open builds the Store selected by configuration.
func Open(ctx context.Context, cfg config.Server) (Store, error) {
	switch Driver(cfg.BlobDriver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(cfg.BlobBasePath)
	case DriverS3:
		return NewS3(ctx, S3Config{Region: cfg.BlobS3Region, Bucket: cfg.BlobS3Bucket})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
}
