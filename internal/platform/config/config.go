package config

import "os"

// Server captures process level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string

	// BlobDriver selects the photo binary backend: memory, filesystem, or s3.
	BlobDriver   string
	BlobBasePath string
	BlobS3Bucket string
	BlobS3Region string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("QUARTERS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	blobDriver := os.Getenv("BLOB_DRIVER")
	if blobDriver == "" {
		blobDriver = "memory"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		BlobDriver:    blobDriver,
		BlobBasePath:  os.Getenv("BLOB_BASE_PATH"),
		BlobS3Bucket:  os.Getenv("BLOB_S3_BUCKET"),
		BlobS3Region:  os.Getenv("BLOB_S3_REGION"),
	}
}
