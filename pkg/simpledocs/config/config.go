// Package config assembles a simpledocs service from declarative
// configuration. Collaborator lifecycles are owned by the process entry
// point; nothing here is a package-level singleton.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docsys/simple-docs/pkg/simpledocs"
	memoryrepo "github.com/docsys/simple-docs/pkg/simpledocs/repo/memory"
	pgrepo "github.com/docsys/simple-docs/pkg/simpledocs/repo/postgres"
	memorystorage "github.com/docsys/simple-docs/pkg/simpledocs/storage/memory"
	s3storage "github.com/docsys/simple-docs/pkg/simpledocs/storage/s3"
)

// ServerConfig is the full configuration for the document service.
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Storage broker configuration
	StorageType string // "memory", "s3"
	S3          S3Config

	// JWT verification (the gateway boundary of the HTTP layer)
	JWTSecret string
}

// S3Config configures the S3 signed-URL broker.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	PresignSeconds  int
	KMSKeyID        string
}

// Option applies configuration on top of defaults.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top
// of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		StorageType:  "memory",
	}
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}
	if c.StorageType != "memory" && c.StorageType != "s3" {
		return errors.New("storage_type must be 'memory' or 's3'")
	}
	if c.StorageType == "s3" && c.S3.Bucket == "" {
		return errors.New("s3 bucket is required when using s3 storage")
	}
	return nil
}

// BuildService wires repository, audit trail, broker and directory into
// a Service instance.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (simpledocs.Service, error) {
	var options []simpledocs.Option

	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		options = append(options,
			simpledocs.WithRepository(pgrepo.NewWithPool(pool)),
			simpledocs.WithAuditTrail(pgrepo.NewAuditTrailWithPool(pool)),
			// The admin directory has no postgres implementation yet; the
			// in-memory one keeps the admin surface usable in development.
			simpledocs.WithDirectory(memoryrepo.NewDirectory()),
		)
	default:
		options = append(options,
			simpledocs.WithRepository(memoryrepo.New()),
			simpledocs.WithAuditTrail(memoryrepo.NewAuditTrail()),
			simpledocs.WithDirectory(memoryrepo.NewDirectory()),
		)
	}

	broker, err := c.buildBroker()
	if err != nil {
		return nil, fmt.Errorf("failed to build storage broker: %w", err)
	}
	options = append(options, simpledocs.WithURLBroker(broker))

	if logger != nil {
		options = append(options, simpledocs.WithLogger(logger))
	}

	return simpledocs.New(options...)
}

func (c *ServerConfig) buildBroker() (simpledocs.SignedURLBroker, error) {
	switch c.StorageType {
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
			PresignDuration: c.S3.PresignSeconds,
			EnableSSE:       c.S3.KMSKeyID != "",
			SSEAlgorithm:    "aws:kms",
			SSEKMSKeyID:     c.S3.KMSKeyID,
		})
	default:
		return memorystorage.New(), nil
	}
}
