package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

func initDefaults() {
	viper.SetDefault("discord.token", os.Getenv("discord_token"))
	viper.SetDefault("discord.app.id", os.Getenv("discord_app_id"))
	viper.SetDefault("prefix", "!")
	viper.SetDefault("theme", 0xE8A33D)

	viper.SetDefault("redis.address", os.Getenv("redis_address"))
	viper.SetDefault("postgres.dsn", "")

	viper.SetDefault("ytdlp.format", "bestaudio/best")
	viper.SetDefault("ytdlp.clients", []string{"android", "web", "ios"})
	viper.SetDefault("ytdlp.fallback_client", "default")
	viper.SetDefault("ytdlp.retries", 3)
	viper.SetDefault("ytdlp.cookies", "")
	viper.SetDefault("ytdlp.proxy", "")
	viper.SetDefault("ytdlp.no_check_certificate", true)
	viper.SetDefault("ytdlp.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	viper.SetDefault("ytdlp.accept_language", "en-US,en;q=0.9")
	viper.SetDefault("ytdlp.origin", "https://www.youtube.com")
	viper.SetDefault("ytdlp.referer", "https://www.youtube.com/")

	viper.SetDefault("resolver.stage_timeout", 45*time.Second)
	viper.SetDefault("resolver.rate", 2.0)
	viper.SetDefault("resolver.burst", 4)
	viper.SetDefault("secondary.host", "https://yewtu.be")

	viper.SetDefault("playlist.max_items", 50)
	viper.SetDefault("playlist.mode", "shallow")
	viper.SetDefault("playlist.concurrency", 4)

	viper.SetDefault("cache.dir", "cache")
	viper.SetDefault("cache.audio", 3600)
	viper.SetDefault("cache.playlist", 600)

	viper.SetDefault("player.volume", 50)
	viper.SetDefault("player.error_length", 180)
	viper.SetDefault("ffmpeg.path", "ffmpeg")
}
