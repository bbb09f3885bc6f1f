package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// Strategy selects how the provider obtains the model file.
type Strategy string

const (
	// StrategyRemote downloads the model once into the cache directory.
	StrategyRemote Strategy = "remote"
	// StrategyLocal reads a structure file and a weights file from disk.
	StrategyLocal Strategy = "local"
)

const downloadChunkSize = 8 << 10

type ProviderConfig struct {
	Strategy Strategy

	// Remote strategy.
	URL      string
	CacheDir string
	FileName string
	Metadata Metadata

	// Local strategy.
	StructurePath string
	WeightsPath   string
}

// ModelPath is where the remote strategy caches the downloaded model.
func (c ProviderConfig) ModelPath() string {
	return filepath.Join(c.CacheDir, c.FileName)
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Opener turns a weights file and its metadata into a ready Model.
type Opener func(path string, metadata Metadata) (Model, error)

// Provider loads the model once and hands out the same instance afterwards.
type Provider struct {
	cfg    ProviderConfig
	client Doer
	open   Opener
	logger *log.Logger

	mu       sync.Mutex
	model    Model
	metadata Metadata
}

func NewProvider(cfg ProviderConfig, client Doer, open Opener, logger *log.Logger) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if open == nil {
		open = OpenSession
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Provider{
		cfg:    cfg,
		client: client,
		open:   open,
		logger: logger,
	}
}

// Provide returns the loaded model and its metadata, loading it on first use.
// Failures are returned as *Error and are not retried by the provider.
func (p *Provider) Provide(ctx context.Context) (Model, Metadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.model != nil {
		return p.model, p.metadata, nil
	}

	var (
		m    Model
		meta Metadata
		err  error
	)
	switch p.cfg.Strategy {
	case StrategyRemote, "":
		m, meta, err = p.provideRemote(ctx)
	case StrategyLocal:
		m, meta, err = p.provideLocal()
	default:
		err = Errorf(KindLoad, "provide", "unknown strategy %q", p.cfg.Strategy)
	}
	if err != nil {
		return nil, Metadata{}, err
	}

	p.model = m
	p.metadata = meta
	return m, meta, nil
}

// Close releases the cached model if it holds resources.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model == nil {
		return nil
	}
	var err error
	if c, ok := p.model.(io.Closer); ok {
		err = c.Close()
	}
	p.model = nil
	return err
}

func (p *Provider) provideRemote(ctx context.Context) (Model, Metadata, error) {
	meta := p.cfg.Metadata.withDefaults()
	if err := meta.Validate(); err != nil {
		return nil, Metadata{}, Wrap(KindLoad, "validate metadata", err)
	}

	path, err := p.ensureDownloaded(ctx)
	if err != nil {
		return nil, Metadata{}, err
	}

	p.logger.Printf("Loading model from: %s", path)
	m, err := p.open(path, meta)
	if err != nil {
		return nil, Metadata{}, Wrap(KindLoad, "open model", err)
	}
	return m, meta, nil
}

func (p *Provider) provideLocal() (Model, Metadata, error) {
	meta, err := ReadMetadata(p.cfg.StructurePath)
	if err != nil {
		return nil, Metadata{}, err
	}

	if _, err := os.Stat(p.cfg.WeightsPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Metadata{}, Wrap(KindMissingFile, "stat weights", err)
		}
		return nil, Metadata{}, Wrap(KindLoad, "stat weights", err)
	}

	p.logger.Printf("Loading weights from: %s (structure %s)", p.cfg.WeightsPath, p.cfg.StructurePath)
	m, err := p.open(p.cfg.WeightsPath, meta)
	if err != nil {
		return nil, Metadata{}, Wrap(KindLoad, "open weights", err)
	}
	return m, meta, nil
}

// ensureDownloaded returns the cached model path, fetching it when absent.
// The existence check is not a lock; two cold starts may both download.
func (p *Provider) ensureDownloaded(ctx context.Context) (string, error) {
	path := p.cfg.ModelPath()
	_, err := os.Stat(path)
	if err == nil {
		p.logger.Printf("Using cached model: %s", path)
		return path, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", Wrap(KindLoad, "stat model", err)
	}

	if p.cfg.URL == "" {
		return "", Errorf(KindMissingFile, "download", "%s is absent and no model URL is configured", path)
	}
	// An empty CacheDir means the working directory.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", Wrap(KindDownload, "create cache dir", err)
	}

	p.logger.Printf("Downloading model from %s", p.cfg.URL)
	n, err := p.download(ctx, path)
	if err != nil {
		return "", err
	}
	p.logger.Printf("Downloaded %d bytes to %s", n, path)
	return path, nil
}

// download streams the body into a temporary file next to dest and renames it
// into place only after the whole body was written.
func (p *Provider) download(ctx context.Context, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL, nil)
	if err != nil {
		return 0, Wrap(KindDownload, "create request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, Wrap(KindDownload, "fetch model", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, Errorf(KindDownload, "fetch model", "unexpected status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, Wrap(KindDownload, "create temp file", err)
	}
	tmpPath := tmp.Name()

	n, err := copyChunks(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, Wrap(KindDownload, "write model", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, Wrap(KindDownload, "persist model", err)
	}
	return n, nil
}

func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, downloadChunkSize)
	var written int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("read body: %w", rerr)
		}
	}
}
