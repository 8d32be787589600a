package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type extractCall struct {
	reference string
	opts      ExtractOptions
}

type fakeExtractor struct {
	mu      sync.Mutex
	calls   []extractCall
	results []func(ctx context.Context) (*Info, error)
}

func (f *fakeExtractor) Extract(ctx context.Context, reference string, opts ExtractOptions) (*Info, error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, extractCall{reference, opts})
	f.mu.Unlock()

	if idx >= len(f.results) {
		return nil, errors.New("unexpected call")
	}
	return f.results[idx](ctx)
}

func fail(msg string) func(context.Context) (*Info, error) {
	return func(context.Context) (*Info, error) { return nil, errors.New(msg) }
}

func succeed(info *Info) func(context.Context) (*Info, error) {
	return func(context.Context) (*Info, error) { return info, nil }
}

type fakeSecondary struct {
	track *ResolvedTrack
	err   error
	calls int
}

func (f *fakeSecondary) Lookup(ctx context.Context, reference string) (*ResolvedTrack, error) {
	f.calls++
	return f.track, f.err
}

type fakeLedger struct {
	ids []string
}

func (f *fakeLedger) Remember(ctx context.Context, videoID string) error {
	f.ids = append(f.ids, videoID)
	return nil
}

var testConfig = Config{
	Clients:        []string{"android", "web"},
	FallbackClient: "default",
	StageTimeout:   time.Second,
}

func TestResolve_PrimarySucceeds(t *testing.T) {
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		succeed(&Info{ID: "dQw4w9WgXcQ", Title: "Song", Duration: 200, URL: "https://stream"}),
	}}
	r := New(ext, nil, nil, nil, testConfig)

	track, err := r.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ", Shallow)

	require.NoError(t, err)
	assert.Equal(t, Primary, track.Provider)
	assert.Equal(t, "https://stream", track.StreamURL)
	require.Len(t, ext.calls, 1)
	assert.Equal(t, []string{"android", "web"}, ext.calls[0].opts.Clients)
	assert.False(t, ext.calls[0].opts.Download)
}

func TestResolve_ClientNarrowingRetry(t *testing.T) {
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		fail("Sign in to confirm you're not a bot"),
		succeed(&Info{Title: "Song", URL: "https://stream"}),
	}}
	r := New(ext, nil, nil, nil, testConfig)

	track, err := r.Resolve(context.Background(), "song", Shallow)

	require.NoError(t, err)
	assert.Equal(t, FallbackClient, track.Provider)
	require.Len(t, ext.calls, 2)
	assert.Equal(t, []string{"default"}, ext.calls[1].opts.Clients)
	assert.False(t, ext.calls[1].opts.Download)
}

func TestResolve_ForcedDownloadUsesLocalFile(t *testing.T) {
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		fail("blocked"),
		fail("blocked"),
		succeed(&Info{
			ID:                 "dQw4w9WgXcQ",
			Title:              "Song",
			URL:                "https://blocked-stream",
			RequestedDownloads: []RequestedDownload{{Filepath: "cache/dQw4w9WgXcQ.webm"}},
		}),
	}}
	ledger := &fakeLedger{}
	r := New(ext, nil, ledger, nil, testConfig)

	track, err := r.Resolve(context.Background(), "dQw4w9WgXcQ", Shallow)

	require.NoError(t, err)
	assert.Equal(t, ForceDownload, track.Provider)
	assert.Equal(t, "cache/dQw4w9WgXcQ.webm", track.StreamURL)
	assert.True(t, ext.calls[2].opts.Download)
	assert.Equal(t, []string{"dQw4w9WgXcQ"}, ledger.ids)
}

func TestResolve_SecondaryProvider(t *testing.T) {
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		fail("one"), fail("two"), fail("three"),
	}}
	secondary := &fakeSecondary{track: &ResolvedTrack{Title: "Mirror", StreamURL: "https://mirror"}}
	r := New(ext, secondary, nil, nil, testConfig)

	track, err := r.Resolve(context.Background(), "dQw4w9WgXcQ", Shallow)

	require.NoError(t, err)
	assert.Equal(t, SecondaryProvider, track.Provider)
	assert.Equal(t, "https://mirror", track.StreamURL)
	assert.Equal(t, 1, secondary.calls)
}

func TestResolve_AllStagesFail(t *testing.T) {
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		fail("one"), fail("two"), fail("three"),
	}}
	secondary := &fakeSecondary{err: errors.New("mirror down")}
	r := New(ext, secondary, nil, nil, testConfig)

	_, err := r.Resolve(context.Background(), "dQw4w9WgXcQ", Shallow)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "dQw4w9WgXcQ", extractionErr.Reference)
	assert.ErrorContains(t, extractionErr.Cause, "mirror down")
	assert.Len(t, ext.calls, 3)
}

func TestResolve_NoPlayableFormatFallsThrough(t *testing.T) {
	video := &Info{Title: "Video only", Formats: []Format{{ACodec: "none", URL: "v"}}}
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		succeed(video), succeed(video), succeed(video),
	}}
	r := New(ext, nil, nil, nil, testConfig)

	_, err := r.Resolve(context.Background(), "dQw4w9WgXcQ", Shallow)

	assert.ErrorIs(t, err, ErrNoPlayableFormat)
	assert.Len(t, ext.calls, 3)
}

func TestResolve_EagerDownloadsFromFirstStage(t *testing.T) {
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		succeed(&Info{ID: "abcdefghijk", Filename: "cache/abcdefghijk.m4a"}),
	}}
	r := New(ext, nil, nil, nil, testConfig)

	track, err := r.Resolve(context.Background(), "abcdefghijk", Eager)

	require.NoError(t, err)
	assert.True(t, ext.calls[0].opts.Download)
	assert.Equal(t, "cache/abcdefghijk.m4a", track.StreamURL)
}

func TestResolve_StageDeadline(t *testing.T) {
	hang := func(ctx context.Context) (*Info, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		hang,
		succeed(&Info{URL: "https://stream"}),
	}}
	cfg := testConfig
	cfg.StageTimeout = 20 * time.Millisecond
	r := New(ext, nil, nil, nil, cfg)

	track, err := r.Resolve(context.Background(), "slow", Shallow)

	require.NoError(t, err)
	assert.Equal(t, FallbackClient, track.Provider)
}

func TestResolve_StopsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ext := &fakeExtractor{results: []func(context.Context) (*Info, error){
		func(context.Context) (*Info, error) {
			cancel()
			return nil, context.Canceled
		},
	}}
	r := New(ext, nil, nil, nil, testConfig)

	_, err := r.Resolve(ctx, "anything", Shallow)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
	assert.Len(t, ext.calls, 1)
}

func TestYtDlpArgs(t *testing.T) {
	y := NewYtDlp(YtDlpConfig{
		Retries:            3,
		Cookies:            "cookies.txt",
		NoCheckCertificate: true,
		UserAgent:          "UA",
		Referer:            "https://www.youtube.com/",
	})

	args := y.args(ExtractOptions{Clients: []string{"android", "web"}})

	assert.Equal(t, []string{
		"--dump-single-json",
		"--default-search", "ytsearch",
		"--format", "bestaudio/best",
		"--retries", "3",
		"--no-check-certificates",
		"--cookies", "cookies.txt",
		"--add-headers", "User-Agent:UA",
		"--add-headers", "Referer:https://www.youtube.com/",
		"--extractor-args", "youtube:player_client=android,web",
	}, args)
}

func TestYtDlpArgs_NoClients(t *testing.T) {
	args := NewYtDlp(YtDlpConfig{Format: "bestaudio"}).args(ExtractOptions{})

	assert.Equal(t, []string{"--dump-single-json", "--default-search", "ytsearch", "--format", "bestaudio"}, args)
}

func TestNewLimiter(t *testing.T) {
	unlimited := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow())
	}

	limited := NewLimiter(1, 0)
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}

func TestProviderString(t *testing.T) {
	assert.Equal(t, "primary", Primary.String())
	assert.Equal(t, "fallback-client", FallbackClient.String())
	assert.Equal(t, "force-download", ForceDownload.String())
	assert.Equal(t, "secondary", SecondaryProvider.String())
}
