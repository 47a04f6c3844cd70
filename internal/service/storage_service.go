package service

import (
	"context"
	"knowledgebot/internal/config"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider resolves stored object names (product and category
// images) into URLs the chat transport can send to users. Content
// uploads happen outside this service, so only the read path is here.
type StorageProvider interface {
	ResolveURL(ctx context.Context, objectName string) (string, error)
}

// LocalStorageProvider serves objects from the router's static mount.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) ResolveURL(ctx context.Context, objectName string) (string, error) {
	return "/uploads/" + objectName, nil
}

// MinioStorageProvider resolves objects to presigned GET URLs.
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) ResolveURL(ctx context.Context, objectName string) (string, error) {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, objectName, 15*time.Minute, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	switch cfg.Storage.Type {
	case "minio":
		provider, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		return &StorageService{Provider: provider}, nil
	default:
		return &StorageService{Provider: &LocalStorageProvider{Config: &cfg.Storage}}, nil
	}
}

func (s *StorageService) ResolveURL(ctx context.Context, objectName string) (string, error) {
	if objectName == "" {
		return "", nil
	}
	return s.Provider.ResolveURL(ctx, objectName)
}
