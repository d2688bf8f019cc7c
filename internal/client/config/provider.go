package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/kakeibo/internal/client/repositories/metadata"
)

const (
	BaseURLKey   = "config.base_url"
	AccessKeyKey = "config.access_key"
)

// Provider supplies the server base URL and access key. An empty value
// means unconfigured.
type Provider interface {
	BaseURL(ctx context.Context) (string, error)
	AccessKey(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	SetAccessKey(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// MetadataProvider keeps provisioned values in the meta table. A value that
// was never provisioned, or was cleared, falls back to the static one.
type MetadataProvider struct {
	repo             metadata.Repository
	defaultBaseURL   string
	defaultAccessKey string
}

func NewMetadataProvider(repo metadata.Repository, defaultBaseURL, defaultAccessKey string) *MetadataProvider {
	return &MetadataProvider{
		repo:             repo,
		defaultBaseURL:   strings.TrimSpace(defaultBaseURL),
		defaultAccessKey: strings.TrimSpace(defaultAccessKey),
	}
}

func (p *MetadataProvider) get(ctx context.Context, key, fallback string) (string, error) {
	v, ok, err := p.repo.Setting(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}
	return v, nil
}

func (p *MetadataProvider) BaseURL(ctx context.Context) (string, error) {
	return p.get(ctx, BaseURLKey, p.defaultBaseURL)
}

func (p *MetadataProvider) AccessKey(ctx context.Context) (string, error) {
	return p.get(ctx, AccessKeyKey, p.defaultAccessKey)
}

func (p *MetadataProvider) SetBaseURL(ctx context.Context, url string) error {
	return p.repo.SetSetting(ctx, BaseURLKey, url)
}

func (p *MetadataProvider) SetAccessKey(ctx context.Context, key string) error {
	return p.repo.SetSetting(ctx, AccessKeyKey, key)
}

func (p *MetadataProvider) Clear(ctx context.Context) error {
	if err := p.repo.Delete(ctx, BaseURLKey); err != nil {
		return err
	}
	return p.repo.Delete(ctx, AccessKeyKey)
}

// StaticProvider serves values held in memory.
type StaticProvider struct {
	mu        sync.RWMutex
	baseURL   string
	accessKey string
}

func NewStaticProvider(baseURL, accessKey string) *StaticProvider {
	return &StaticProvider{baseURL: strings.TrimSpace(baseURL), accessKey: strings.TrimSpace(accessKey)}
}

func (p *StaticProvider) BaseURL(context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseURL, nil
}

func (p *StaticProvider) AccessKey(context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accessKey, nil
}

func (p *StaticProvider) SetBaseURL(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseURL = strings.TrimSpace(url)
	return nil
}

func (p *StaticProvider) SetAccessKey(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accessKey = strings.TrimSpace(key)
	return nil
}

func (p *StaticProvider) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baseURL, p.accessKey = "", ""
	return nil
}
