package types

// Config represents the overall application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server" envPrefix:"SERVER_"`
	Storage StorageConfig `yaml:"storage" json:"storage" envPrefix:"STORAGE_"`
	Library LibraryConfig `yaml:"library" json:"library" envPrefix:"LIBRARY_"`
	Parser  ParserConfig  `yaml:"parser" json:"parser" envPrefix:"PARSER_"`
	Log     LogConfig     `yaml:"log" json:"log" envPrefix:"LOG_"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host" env:"HOST"`
	Port         int    `yaml:"port" json:"port" env:"PORT"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout" env:"READ_TIMEOUT"`    // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout" env:"WRITE_TIMEOUT"` // seconds
}

// StorageConfig defines storage adapter settings
type StorageConfig struct {
	Adapter string            `yaml:"adapter" json:"adapter" env:"ADAPTER"` // "local" or "s3"
	Local   LocalStorageOpts  `yaml:"local" json:"local" envPrefix:"LOCAL_"`
	S3      S3StorageOpts     `yaml:"s3" json:"s3" envPrefix:"S3_"`
	Options map[string]string `yaml:"options" json:"options"` // Additional adapter-specific options
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path" env:"BASE_PATH"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint" env:"ENDPOINT"`
	Region          string `yaml:"region" json:"region" env:"REGION"`
	Bucket          string `yaml:"bucket" json:"bucket" env:"BUCKET"`
	AccessKeyID     string `yaml:"access_key_id" json:"-" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" json:"-" env:"SECRET_ACCESS_KEY"`
	UseSSL          bool   `yaml:"use_ssl" json:"use_ssl" env:"USE_SSL"`
}

// LibraryConfig configures where book files and records live
type LibraryConfig struct {
	BooksDir          string `yaml:"books_dir" json:"books_dir" env:"BOOKS_DIR"`
	Store             string `yaml:"store" json:"store" env:"STORE"` // "storage" or "sqlite"
	SQLitePath        string `yaml:"sqlite_path" json:"sqlite_path" env:"SQLITE_PATH"`
	MaxFileSize       int64  `yaml:"max_file_size" json:"max_file_size" env:"MAX_FILE_SIZE"` // bytes
	ImportConcurrency int    `yaml:"import_concurrency" json:"import_concurrency" env:"IMPORT_CONCURRENCY"`
}

// ParserConfig tunes content extraction
type ParserConfig struct {
	CacheSize int `yaml:"cache_size" json:"cache_size" env:"CACHE_SIZE"` // 0 = unbounded
	Timeout   int `yaml:"timeout" json:"timeout" env:"TIMEOUT"`          // seconds, 0 = none
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `yaml:"level" json:"level" env:"LEVEL"`
	Development bool   `yaml:"development" json:"development" env:"DEVELOPMENT"`
}
