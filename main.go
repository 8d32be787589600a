package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"JalebiJams/cache"
	"JalebiJams/commands"
	"JalebiJams/config"
	"JalebiJams/db_client"
	"JalebiJams/handlers"
	"JalebiJams/player"
	"JalebiJams/playlist"
	"JalebiJams/queue"
	"JalebiJams/redis_client"
	"JalebiJams/resolver"
	"JalebiJams/voice"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

var production *bool

func main() {
	// Sets Flag to Debug Mode
	production = flag.Bool("p", false, "enables production with json logging")
	flag.Parse()
	if *production {
		log.InitJSONLogger(&log.Config{Output: os.Stdout})
	} else {
		log.InitSimpleLogger(&log.Config{Output: os.Stdout})
	}

	// Sets up Configurations for Viper
	config.InitConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cacheDir := viper.GetString("cache.dir")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.WithError(err).Error("Failed to create cache directory")
		return
	}

	// Redis backed caches are optional
	var (
		ledger    resolver.DownloadLedger
		playlists playlist.Cache
	)
	rdb, err := redis_client.New(ctx, viper.GetString("redis.address"))
	if err != nil {
		log.WithError(err).Error("Failed to connect to Redis, running without caches")
	}
	if rdb != nil {
		defer rdb.Close()
		downloads := cache.NewDownloads(rdb, cacheDir, time.Duration(viper.GetInt("cache.audio"))*time.Second)
		downloads.StartSweeping(ctx, time.Hour)
		ledger = downloads
		playlists = cache.NewPlaylists(rdb, time.Duration(viper.GetInt("cache.playlist"))*time.Second)
	}

	// Play history is optional
	var history player.History
	if dsn := viper.GetString("postgres.dsn"); dsn != "" {
		db, err := db_client.Open(ctx, dsn)
		if err != nil {
			log.WithError(err).Error("Failed to open Postgres, running without play history")
		} else {
			history = db_client.NewHistory(db)
		}
	}

	ytdlp := resolver.NewYtDlp(resolver.YtDlpConfig{
		Format:             viper.GetString("ytdlp.format"),
		Retries:            viper.GetInt("ytdlp.retries"),
		Cookies:            viper.GetString("ytdlp.cookies"),
		Proxy:              viper.GetString("ytdlp.proxy"),
		NoCheckCertificate: viper.GetBool("ytdlp.no_check_certificate"),
		UserAgent:          viper.GetString("ytdlp.user_agent"),
		AcceptLanguage:     viper.GetString("ytdlp.accept_language"),
		Origin:             viper.GetString("ytdlp.origin"),
		Referer:            viper.GetString("ytdlp.referer"),
		CacheDir:           cacheDir,
	})

	var secondary resolver.Lookuper
	if host := viper.GetString("secondary.host"); host != "" {
		secondary = resolver.NewSecondary(host)
	}

	limiter := resolver.NewLimiter(viper.GetFloat64("resolver.rate"), viper.GetInt("resolver.burst"))
	res := resolver.New(ytdlp, secondary, ledger, limiter, resolver.Config{
		Clients:        config.StringList("ytdlp.clients"),
		FallbackClient: viper.GetString("ytdlp.fallback_client"),
		StageTimeout:   viper.GetDuration("resolver.stage_timeout"),
	})
	expander := playlist.NewExpander(ytdlp, limiter, playlists, viper.GetInt("playlist.max_items"), viper.GetInt("playlist.concurrency"))

	// Creates Discord Bot Session
	s, err := discordgo.New("Bot " + viper.GetString("discord.token"))
	if err != nil {
		log.WithError(err).Error("Failed to create Discord session")
		return
	}

	controller := player.NewController(player.Deps{
		Connector: voice.NewConnector(s, viper.GetString("ffmpeg.path")),
		Presence:  voice.NewPresence(s),
		Replier:   commands.NewChannelReplier(s),
		Resolver:  res,
		Expander:  expander,
		History:   history,
	}, queue.NewRegistry(), player.Config{
		Mode:        resolver.ParseMode(viper.GetString("playlist.mode")),
		Volume:      viper.GetInt("player.volume"),
		ErrorLength: viper.GetInt("player.error_length"),
	})

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("Bot has registered handlers")
	})

	// Configuring Intents and Adding Handlers
	handlers.HandlerConfig(s, controller)

	// Register Slash Commands
	diagnostics := commands.NewDiagnostics(ytdlp.Version, viper.GetString("secondary.host"), viper.GetString("ytdlp.cookies"))
	commands.RegisterSlashCommands(s, commands.NewMusic(controller, diagnostics))

	// Connecting to Discord Server Gateway
	if err := s.Open(); err != nil {
		log.WithError(err).Error("Failed to open Discord gateway")
		return
	}
	log.Info("Bot is initialising")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
	cancel()
	gracefulShutdown(s, controller, cacheDir)
}

// gracefulShutdown handles cleaning up after the bot is shutdown
func gracefulShutdown(s *discordgo.Session, controller *player.Controller, cacheDir string) {
	log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	controller.Shutdown(ctx)

	s.RLock()
	connections := make([]*discordgo.VoiceConnection, 0, len(s.VoiceConnections))
	for _, vc := range s.VoiceConnections {
		connections = append(connections, vc)
	}
	s.RUnlock()
	for _, vc := range connections {
		if vc != nil {
			vc.Disconnect()
		}
	}

	s.Close()

	if err := cache.Purge(cacheDir); err != nil {
		log.WithError(err).Error("Failed to clean up cache")
	} else {
		log.Info("Cache cleanup completed")
	}

	log.Info("Cleanly exiting")
}
