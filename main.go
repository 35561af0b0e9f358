// Package main provides the entry point for the Murmur voice assistant.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/murmur/internal/audio"
	"github.com/dgnsrekt/murmur/internal/cache"
	"github.com/dgnsrekt/murmur/internal/chat"
	"github.com/dgnsrekt/murmur/internal/command"
	"github.com/dgnsrekt/murmur/internal/murf"
	"github.com/dgnsrekt/murmur/internal/speech"
	"github.com/dgnsrekt/murmur/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile      string
	voiceFlag       string
	modelFlag       string
	noSpeech        bool
	cacheDir        string
	maxCacheEntries int
	style           string
	width           uint
	mouse           bool

	rootCmd = &cobra.Command{
		Use:   "murmur",
		Short: "Chat with a voice assistant in your terminal",
		Long: paragraph(
			fmt.Sprintf("\nChat with a %s in your terminal. Replies are spoken aloud and cached so repeats never hit the network.", keyword("voice assistant")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI()
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	voiceFlag = viper.GetString("voice")
	modelFlag = viper.GetString("model")
	noSpeech = viper.GetBool("no_speech")
	cacheDir = viper.GetString("cache.dir")
	maxCacheEntries = viper.GetInt("cache.max_entries")
	mouse = viper.GetBool("mouse")
	style = viper.GetString("style")
	width = viper.GetUint("width")

	if maxCacheEntries < 1 {
		return fmt.Errorf("cache.max_entries must be at least 1, got %d", maxCacheEntries)
	}

	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		return fmt.Errorf("unknown style: %s", style)
	}

	if !cmd.Flags().Changed("width") {
		if term.IsTerminal(int(os.Stdout.Fd())) && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}
			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// defaultCacheDir resolves the clip cache location when no flag or
// config value is set.
func defaultCacheDir() (string, error) {
	scope := gap.NewScope(gap.User, "murmur")
	dir, err := scope.CacheDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve cache directory: %w", err)
	}
	return filepath.Join(dir, "clips"), nil
}

func runTUI() error {
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.GlamourStyle = style
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.NoSpeech = noSpeech
	cfg.Voice = voiceFlag

	if cacheDir == "" {
		cacheDir, err = defaultCacheDir()
		if err != nil {
			return err
		}
	} else {
		cacheDir = expandPath(cacheDir)
	}

	store, err := cache.NewDiskStore(cacheDir, viper.GetInt("cache.compression"))
	if err != nil {
		return fmt.Errorf("could not open clip cache: %w", err)
	}
	clipCache := cache.New(store, cache.WithMaxEntries(maxCacheEntries))
	defer clipCache.Close() //nolint:errcheck

	watcher, err := cache.NewWatcher(store, log.Default())
	if err != nil {
		log.Warn("cache directory watch unavailable", "err", err)
	} else {
		defer watcher.Close() //nolint:errcheck
	}

	murfClient := murf.NewClient(murf.Config{
		APIKey:            os.Getenv("MURF_API_KEY"),
		RequestsPerMinute: viper.GetInt("rate_limit"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	catalog, err := murfClient.Voices(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("could not load voice catalog: %w", err)
	}
	if catalog.Len() == 0 {
		return errors.New("voice catalog is empty; check provider configuration")
	}

	var player audio.Player
	if noSpeech {
		player = audio.NewMockPlayer()
	} else {
		player, err = audio.NewPlayer()
		if err != nil {
			log.Warn("audio device unavailable, continuing without speech", "err", err)
			cfg.NoSpeech = true
			player = audio.NewMockPlayer()
		}
	}
	defer player.Close() //nolint:errcheck

	resolver := chooseResolver(catalog)
	speaker := speech.NewSpeaker(clipCache, murfClient, resolver, player, speech.Options{
		Voice: voiceFlag,
		Speed: viper.GetFloat64("speed"),
		Pitch: viper.GetFloat64("pitch"),
	})
	defer speaker.Close()

	chatClient := chat.NewClient(chat.Config{
		APIKey: os.Getenv("GITHUB_TOKEN"),
		Model:  modelFlag,
	})
	if chatClient.Demo() {
		log.Info("no GITHUB_TOKEN set, running chat in demo mode")
	}
	if murfClient.Demo() {
		log.Info("no MURF_API_KEY set, using the static voice catalog")
	}

	deps := ui.Deps{
		Chat:       chatClient,
		History:    chat.NewHistory(),
		Speaker:    speaker,
		Dispatcher: command.NewDispatcher(log.Default()),
		Cache:      clipCache,
		Catalog:    catalog,
		DiskStore:  store,
	}

	if _, err := ui.NewProgram(cfg, deps).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	// .env first so provider keys are visible to config loading.
	_ = godotenv.Load()

	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&voiceFlag, "voice", "v", "", "preferred voice identifier")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "chat completion model")
	rootCmd.Flags().BoolVar(&noSpeech, "no-speech", false, "disable spoken replies")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for cached clips")
	rootCmd.Flags().IntVar(&maxCacheEntries, "max-cache-entries", cache.DefaultMaxEntries, "maximum number of cached clips")
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "glamour style for rendered replies")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("no_speech", rootCmd.Flags().Lookup("no-speech"))
	_ = viper.BindPFlag("cache.dir", rootCmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("cache.max_entries", rootCmd.Flags().Lookup("max-cache-entries"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("voice", "en-US-natalie")
	viper.SetDefault("model", chat.DefaultModel)
	viper.SetDefault("cache.max_entries", cache.DefaultMaxEntries)
	viper.SetDefault("cache.compression", 3)
	viper.SetDefault("speed", 1.0)
	viper.SetDefault("pitch", 0.0)
	viper.SetDefault("rate_limit", 30)

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "murmur")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "murmur")}, dirs...)
	}

	if c := os.Getenv("MURMUR_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("murmur")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("murmur")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "murmur.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
