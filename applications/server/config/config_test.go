package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfig(t *testing.T) {
	want := Server{
		API: Api{HTTPAddr: "0.0.0.0:8002"},
		Upload: Upload{
			MaxFilesize:       "8 MiB",
			MaxFilesPerUpload: 10,
		},
		Storage: Storage{Backend: BackendInMemory},
	}

	got, err := Parse("config.yml")

	assert.NoError(t, got.Validate())
	assert.Equal(t, nil, err)
	assert.Equal(t, want, got)
}

func TestMaxFilesizeBytes(t *testing.T) {
	u := Upload{MaxFilesize: "8 MiB"}

	size, err := u.MaxFilesizeBytes()

	assert.NoError(t, err)
	assert.Equal(t, int64(8*1024*1024), size)
}

func TestValidateErrors(t *testing.T) {
	valid := Server{
		API:     Api{HTTPAddr: "0.0.0.0:8002"},
		Upload:  Upload{MaxFilesize: "1 MiB", MaxFilesPerUpload: 5},
		Storage: Storage{Backend: BackendInMemory},
	}
	assert.NoError(t, valid.Validate())

	noAddr := valid
	noAddr.API.HTTPAddr = ""
	assert.Error(t, noAddr.Validate())

	badSize := valid
	badSize.Upload.MaxFilesize = "a lot"
	assert.Error(t, badSize.Validate())

	badCount := valid
	badCount.Upload.MaxFilesPerUpload = 0
	assert.Error(t, badCount.Validate())

	badBackend := valid
	badBackend.Storage.Backend = "tape"
	assert.Error(t, badBackend.Validate())

	minioNoBucket := valid
	minioNoBucket.Storage.Backend = BackendMinio
	minioNoBucket.Storage.Minio = Minio{Endpoint: "localhost:9000"}
	assert.Error(t, minioNoBucket.Validate())
}
