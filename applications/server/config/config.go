package config

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"
)

// Supported storage backends.
const (
	BackendInMemory = "inmemory"
	BackendMinio    = "minio"
)

// Server is the root service configuration, resolved once at startup.
type Server struct {
	API     Api     `yaml:"api"`
	Upload  Upload  `yaml:"upload"`
	Storage Storage `yaml:"storage"`
}

type Api struct {
	HTTPAddr string `yaml:"http_addr"`
}

// Upload bounds a single request. MaxFilesize accepts humanized values
// such as "8 MiB".
type Upload struct {
	MaxFilesize       string `yaml:"max_filesize"`
	MaxFilesPerUpload int    `yaml:"max_files_per_upload"`
}

// MaxFilesizeBytes parses the humanized per-file size limit.
func (u Upload) MaxFilesizeBytes() (int64, error) {
	size, err := humanize.ParseBytes(u.MaxFilesize)
	if err != nil {
		return 0, fmt.Errorf("can't parse max_filesize: %w", err)
	}

	return int64(size), nil
}

type Storage struct {
	Backend string `yaml:"backend"`
	Minio   Minio  `yaml:"minio"`
}

type Minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func Parse(path string) (Server, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("can't read config file: %w", err)
	}

	var cfg Server
	if err = yaml.Unmarshal(raw, &cfg); err != nil {
		return Server{}, fmt.Errorf("can't unmarshal config: %w", err)
	}

	return cfg, nil
}

func (s Server) Validate() error {
	if s.API.HTTPAddr == "" {
		return fmt.Errorf("api.http_addr is required")
	}

	size, err := s.Upload.MaxFilesizeBytes()
	if err != nil {
		return err
	}
	if size <= 0 {
		return fmt.Errorf("upload.max_filesize must be positive")
	}
	if s.Upload.MaxFilesPerUpload <= 0 {
		return fmt.Errorf("upload.max_files_per_upload must be positive")
	}

	switch s.Storage.Backend {
	case BackendInMemory:
	case BackendMinio:
		if s.Storage.Minio.Endpoint == "" || s.Storage.Minio.Bucket == "" {
			return fmt.Errorf("storage.minio endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", s.Storage.Backend)
	}

	return nil
}
