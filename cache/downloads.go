package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"JalebiJams/utils"

	"github.com/Strum355/log"
	"github.com/redis/go-redis/v9"
)

// Downloads tracks audio files materialized by forced downloads so stale ones can be swept
type Downloads struct {
	rdb *redis.Client
	dir string
	ttl time.Duration
}

// NewDownloads returns a ledger for files under dir, kept for ttl after their last use
func NewDownloads(rdb *redis.Client, dir string, ttl time.Duration) *Downloads {
	return &Downloads{rdb: rdb, dir: dir, ttl: ttl}
}

func downloadKey(videoID string) string {
	return "download:" + videoID
}

// Remember marks videoID as recently used
func (d *Downloads) Remember(ctx context.Context, videoID string) error {
	return d.rdb.Set(ctx, downloadKey(videoID), time.Now().Unix(), d.ttl).Err()
}

// partial reports whether name is a download yt-dlp is still writing
func partial(name string) bool {
	return strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl")
}

// Sweep removes cached files whose ledger entry has expired and returns how many were deleted
func (d *Downloads) Sweep(ctx context.Context) (int, error) {
	files, err := os.ReadDir(d.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, file := range files {
		if file.IsDir() || partial(file.Name()) {
			continue
		}
		if info, err := file.Info(); err != nil || time.Since(info.ModTime()) < d.ttl {
			continue
		}
		_, err := d.rdb.Get(ctx, downloadKey(utils.GetAudioID(file.Name()))).Result()
		if err == redis.Nil {
			if err := os.Remove(filepath.Join(d.dir, file.Name())); err == nil {
				removed++
			}
			continue
		}
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// StartSweeping sweeps the cache every interval until ctx is done
func (d *Downloads) StartSweeping(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Info("Beginning cache cleanup!")
				removed, err := d.Sweep(ctx)
				if err != nil {
					log.WithError(err).Error("Cache cleanup failed")
					continue
				}
				log.WithFields(log.Fields{"removed": removed}).Info("Cache cleanup completed")
			}
		}
	}()
}

// Purge deletes every cached file, used on shutdown
func Purge(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, file := range files {
		_ = os.RemoveAll(filepath.Join(dir, file.Name()))
	}
	return nil
}
