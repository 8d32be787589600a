package db_client

import (
	"context"
	"time"

	"JalebiJams/queue"
	"JalebiJams/resolver"

	"gorm.io/gorm"
)

// PlayRecord is one track that started playing in a guild
type PlayRecord struct {
	gorm.Model
	GuildID     string `gorm:"index;not null"`
	SourceURL   string `gorm:"not null"`
	Title       string
	RequestedBy string
	Provider    string `gorm:"size:32"`
	Seconds     *float64
	PlayedAt    time.Time `gorm:"index"`
}

// History stores play records in Postgres
type History struct {
	db *gorm.DB
}

func NewHistory(db *gorm.DB) *History {
	return &History{db: db}
}

func newPlayRecord(guildID string, ref queue.TrackReference, track *resolver.ResolvedTrack, now time.Time) *PlayRecord {
	record := &PlayRecord{
		GuildID:     guildID,
		SourceURL:   ref.SourceURL,
		Title:       track.Title,
		RequestedBy: ref.ReplyTarget.RequestedBy,
		Provider:    track.Provider.String(),
		PlayedAt:    now,
	}
	if track.Duration != nil {
		seconds := track.Duration.Seconds()
		record.Seconds = &seconds
	}
	return record
}

// Record logs that track started playing
func (h *History) Record(ctx context.Context, guildID string, ref queue.TrackReference, track *resolver.ResolvedTrack) error {
	return h.db.WithContext(ctx).Create(newPlayRecord(guildID, ref, track, time.Now())).Error
}

// Count returns how many tracks have played in the guild
func (h *History) Count(ctx context.Context, guildID string) (int64, error) {
	var n int64
	err := h.db.WithContext(ctx).Model(&PlayRecord{}).Where("guild_id = ?", guildID).Count(&n).Error
	return n, err
}
