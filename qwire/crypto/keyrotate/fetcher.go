package keyrotate

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

var (
	ErrRemoteRequest = errors.New("keyrotate: remote request failed")
	ErrHexDecode     = errors.New("keyrotate: public key is not valid hex")
)

const maxResponseSize = 64 << 10

// Response is the body returned by the rotation endpoint.
type Response struct {
	PubKeyMeta struct {
		KeyVer uint16 `json:"KeyVer"`
		PubKey string `json:"PubKey"`
	} `json:"PubKeyMeta"`
}

// Fetcher queries the rotation endpoint.
type Fetcher struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

func NewFetcher(cfg Config, opts ...Option) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Fetcher{cfg: cfg, client: http.DefaultClient, log: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.Named("keyrotate")
	return f, nil
}

func (f *Fetcher) requestURL(uin uint64) (string, error) {
	u, err := url.Parse(f.cfg.Endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("cipher_suite_ver", strconv.Itoa(f.cfg.CipherSuiteVersion))
	q.Set("uin", strconv.FormatUint(uin, 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchKey returns the current key version and uncompressed public key for
// uin. The key is not checked against any curve.
func (f *Fetcher) FetchKey(ctx context.Context, uin uint64) (uint16, []byte, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	target, err := f.requestURL(uin)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRemoteRequest, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRemoteRequest, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("key fetch failed", zap.Uint64("uin", uin), zap.Error(err))
		return 0, nil, fmt.Errorf("%w: %w", ErrRemoteRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Warn("key fetch rejected", zap.Uint64("uin", uin), zap.Int("status", resp.StatusCode))
		return 0, nil, fmt.Errorf("%w: status %d", ErrRemoteRequest, resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return 0, nil, fmt.Errorf("%w: decode body: %v", ErrRemoteRequest, err)
	}
	key, err := hex.DecodeString(body.PubKeyMeta.PubKey)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrHexDecode, err)
	}

	f.log.Debug("fetched server key",
		zap.Uint64("uin", uin),
		zap.Uint16("version", body.PubKeyMeta.KeyVer),
		zap.Int("key_len", len(key)),
	)
	return body.PubKeyMeta.KeyVer, key, nil
}
