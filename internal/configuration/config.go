package configuration

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Auth     AuthConfig

	// MetadataBackend selects the persistence strategy: "snapshot" for the
	// JSON file mirror, "postgres" for the relational mirror.
	MetadataBackend string
	SnapshotPath    string

	// BlobBackend selects where binary content goes: "local" or "minio".
	BlobBackend string
	UploadDir   string

	// Optional collaborators; empty means disabled.
	NATSURL    string
	CLAMAVURL  string
	OIDCIssuer string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

type AuthConfig struct {
	Username   string
	Password   string
	Name       string
	SessionTTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "pdfuser"),
			Password: getEnv("DB_PASSWORD", "pdfpassword"),
			DBName:   getEnv("DB_NAME", "pdfmanager"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET", "pdfs"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Auth: AuthConfig{
			Username:   getEnv("AUTH_USERNAME", "user@example.com"),
			Password:   getEnv("AUTH_PASSWORD", "password"),
			Name:       getEnv("AUTH_NAME", "Project Leader"),
			SessionTTL: 24 * time.Hour,
		},
		MetadataBackend: getEnv("METADATA_BACKEND", "snapshot"),
		SnapshotPath:    getEnv("SNAPSHOT_PATH", "pdf_documents.json"),
		BlobBackend:     getEnv("BLOB_BACKEND", "local"),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		NATSURL:         getEnv("NATS_URL", ""),
		CLAMAVURL:       getEnv("CLAMAV_URL", ""),
		OIDCIssuer:      getEnv("OIDC_ISSUER_URL", ""),
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
