package bot

// Set at build time with -ldflags "-X github.com/raine/photo-pricer/internal/bot.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)
