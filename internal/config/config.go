package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string            `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./uploads/agadeepaoli.db"`
	HTTP        HTTPConfig        `yaml:"http"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Site        SiteConfig        `yaml:"site"`
	Cache       CacheConfig       `yaml:"cache"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host" env:"HOST"`
	Port         string        `yaml:"port" env:"PORT" env-default:"3000"`
	StaticDir    string        `yaml:"static_dir" env:"STATIC_DIR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"60s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"120s"`
	Statsviz     bool          `yaml:"statsviz" env:"STATSVIZ"`

	// UploadTimeout replaces read_timeout and write_timeout for upload requests.
	UploadTimeout time.Duration `yaml:"upload_timeout" env-default:"10m"`
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env:"UPLOADS_DIR" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env-default:"/uploads"`
	MaxSize int64  `yaml:"max_size" env:"UPLOAD_MAX_SIZE" env-default:"52428800"`
}

// SiteConfig holds the values filled in when a client omits optional fields.
type SiteConfig struct {
	DefaultAuthor string `yaml:"default_author" env-default:"சந்திரசேகர் P"`
	DefaultAlt    string `yaml:"default_alt" env-default:"அறக்கட்டளை பதிவு (Media)"`
}

type CacheConfig struct {
	PoemsTTL time.Duration `yaml:"poems_ttl" env-default:"1m"`
}

// Addr returns the listen address in host:port form.
func (c HTTPConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// MustLoad reads the config file named by --config or CONFIG_PATH. Without
// either, the configuration is taken from the environment alone.
func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		return MustLoadEnv()
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func MustLoadEnv() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from env: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
