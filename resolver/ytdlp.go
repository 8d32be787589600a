package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"JalebiJams/utils"

	"github.com/lrstanley/go-ytdlp"
)

// ExtractOptions override the extractor's defaults for a single call
type ExtractOptions struct {
	Clients  []string // Player client identities, empty keeps yt-dlp's own choice
	Download bool     // Materialize the audio file instead of returning metadata only
	Playlist bool     // Enumerate playlists instead of resolving a single video
	Flat     bool     // Skip per entry processing when enumerating
	MaxItems int      // Playlist item cap, zero means unlimited
}

// Extractor turns a reference into extractor metadata
type Extractor interface {
	Extract(ctx context.Context, reference string, opts ExtractOptions) (*Info, error)
}

// YtDlpConfig is the configuration surface of the primary extractor
type YtDlpConfig struct {
	Format             string
	Retries            int
	Cookies            string
	Proxy              string
	NoCheckCertificate bool
	UserAgent          string
	AcceptLanguage     string
	Origin             string
	Referer            string
	CacheDir           string
}

// YtDlp runs the yt-dlp binary through go-ytdlp
type YtDlp struct {
	cfg YtDlpConfig
}

// NewYtDlp returns a yt-dlp backed Extractor
func NewYtDlp(cfg YtDlpConfig) *YtDlp {
	if cfg.Format == "" {
		cfg.Format = "bestaudio/best"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "cache"
	}
	return &YtDlp{cfg: cfg}
}

// Extract runs yt-dlp and decodes its single JSON document
func (y *YtDlp) Extract(ctx context.Context, reference string, opts ExtractOptions) (*Info, error) {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig()

	if y.cfg.Proxy != "" {
		cmd.Proxy(y.cfg.Proxy)
	}
	if opts.Flat {
		cmd.FlatPlaylist()
	}
	if opts.Playlist {
		if opts.MaxItems > 0 {
			cmd.PlaylistItems(fmt.Sprintf("1-%d", opts.MaxItems))
		}
	} else {
		cmd.NoPlaylist()
	}
	if opts.Download {
		if err := os.MkdirAll(y.cfg.CacheDir, 0755); err != nil {
			return nil, err
		}
		cmd.Output(utils.AudioTemplate(y.cfg.CacheDir)).NoSimulate()
	}

	res, err := cmd.Run(ctx, append(y.args(opts), reference)...)
	if err != nil {
		return nil, runError(res, err)
	}

	var info Info
	if err := json.Unmarshal([]byte(res.Stdout), &info); err != nil {
		return nil, fmt.Errorf("decoding yt-dlp output: %w", err)
	}
	return &info, nil
}

// args builds the raw flags shared by every yt-dlp invocation
func (y *YtDlp) args(opts ExtractOptions) []string {
	args := []string{
		"--dump-single-json",
		"--default-search", "ytsearch",
		"--format", y.cfg.Format,
	}
	if y.cfg.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(y.cfg.Retries))
	}
	if y.cfg.NoCheckCertificate {
		args = append(args, "--no-check-certificates")
	}
	if y.cfg.Cookies != "" {
		args = append(args, "--cookies", y.cfg.Cookies)
	}
	for _, h := range [][2]string{
		{"User-Agent", y.cfg.UserAgent},
		{"Accept-Language", y.cfg.AcceptLanguage},
		{"Origin", y.cfg.Origin},
		{"Referer", y.cfg.Referer},
	} {
		if h[1] != "" {
			args = append(args, "--add-headers", h[0]+":"+h[1])
		}
	}
	if len(opts.Clients) > 0 {
		args = append(args, "--extractor-args", "youtube:player_client="+strings.Join(opts.Clients, ","))
	}
	return args
}

// Version asks the installed yt-dlp binary for its version
func (y *YtDlp) Version(ctx context.Context) (string, error) {
	res, err := ytdlp.New().Run(ctx, "--version")
	if err != nil {
		return "", runError(res, err)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// runError keeps the last line of yt-dlp's stderr, which carries the actual reason
func runError(res *ytdlp.Result, err error) error {
	if res == nil {
		return err
	}
	stderr := strings.TrimSpace(res.Stderr)
	if stderr == "" {
		return err
	}
	lines := strings.Split(stderr, "\n")
	return fmt.Errorf("%w: %s", err, strings.TrimSpace(lines[len(lines)-1]))
}

var errNotExtracted = errors.New("extractor returned no metadata")
