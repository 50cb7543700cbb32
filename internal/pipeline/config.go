package pipeline

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/neurosift/mipforge/internal/compile"
	"github.com/neurosift/mipforge/internal/fetch"
	"github.com/neurosift/mipforge/internal/objectstore"
	"github.com/neurosift/mipforge/internal/queue"
	"github.com/neurosift/mipforge/internal/remote"
)

// DefaultBuildType is the single default shared by variant selection and
// compilation. The build type is supplied once per invocation (env or flag)
// and threaded explicitly through both stages.
const DefaultBuildType = "standard"

// EnvBuildType is the canonical environment variable naming the requested
// build type.
const EnvBuildType = "MIP_BUILD_TYPE"

// Config holds pipeline settings.
type Config struct {
	BuildType   string
	PackagesDir string
	PreparedDir string
	BundledDir  string
	IndexDir    string

	BaseURL   string
	KeyPrefix string

	Force    bool
	DryRun   bool
	Packages []string
	Parallel int

	CompileTimeoutSec int

	QueueBackend string
	QueueFile    string
	RedisURL     string
	RedisKey     string
	KafkaBrokers string
	KafkaTopic   string
	BatchSize    int
	MaxAttempts  int

	ObjectStoreEndpoint string
	ObjectStoreBucket   string
	ObjectStoreAccess   string
	ObjectStoreSecret   string
	ObjectStoreUseSSL   bool
}

// FromEnv builds a Config from the environment.
func FromEnv() Config {
	return Config{
		BuildType:           getenv(EnvBuildType, DefaultBuildType),
		PackagesDir:         getenv("MIP_PACKAGES_DIR", "packages"),
		PreparedDir:         getenv("MIP_PREPARED_DIR", "build/prepared"),
		BundledDir:          getenv("MIP_BUNDLED_DIR", "build/bundled"),
		IndexDir:            getenv("MIP_INDEX_DIR", "build/gh-pages"),
		BaseURL:             getenv("MIP_BASE_URL", "https://mip-packages.neurosift.app/core/packages"),
		KeyPrefix:           getenv("MIP_KEY_PREFIX", "core/packages"),
		Force:               getenvBool("MIP_FORCE", false),
		Packages:            splitList(getenv("MIP_PACKAGES", "")),
		Parallel:            getenvInt("MIP_PARALLEL", 1),
		CompileTimeoutSec:   getenvInt("MIP_COMPILE_TIMEOUT_SEC", 1800),
		QueueBackend:        getenv("MIP_QUEUE_BACKEND", "file"),
		QueueFile:           getenv("MIP_QUEUE_FILE", "build/rebuild_queue.json"),
		RedisURL:            getenv("REDIS_URL", ""),
		RedisKey:            getenv("REDIS_KEY", ""),
		KafkaBrokers:        getenv("KAFKA_BROKERS", ""),
		KafkaTopic:          getenv("KAFKA_TOPIC", ""),
		BatchSize:           getenvInt("MIP_BATCH_SIZE", 50),
		MaxAttempts:         getenvInt("MIP_MAX_ATTEMPTS", 3),
		ObjectStoreEndpoint: getenv("OBJECT_STORE_ENDPOINT", ""),
		ObjectStoreBucket:   getenv("OBJECT_STORE_BUCKET", ""),
		ObjectStoreAccess:   getenv("OBJECT_STORE_ACCESS_KEY", ""),
		ObjectStoreSecret:   getenv("OBJECT_STORE_SECRET_KEY", ""),
		ObjectStoreUseSSL:   getenvBool("OBJECT_STORE_USE_SSL", false),
	}
}

// Queue builds the rebuild queue backend from config.
func (c Config) Queue() queue.Backend {
	switch c.QueueBackend {
	case "redis":
		return queue.NewRedisQueue(c.RedisURL, c.RedisKey)
	case "kafka":
		return queue.NewKafkaQueue(c.KafkaBrokers, c.KafkaTopic)
	default:
		return queue.NewFileQueue(c.QueueFile)
	}
}

// ObjectStore builds the artifact store client, or a NullStore when not
// configured so dry runs work without credentials.
func (c Config) ObjectStore() (objectstore.Store, error) {
	if c.ObjectStoreEndpoint == "" || c.ObjectStoreBucket == "" {
		return objectstore.NullStore{}, nil
	}
	return objectstore.NewMinIOStore(c.ObjectStoreEndpoint, c.ObjectStoreAccess, c.ObjectStoreSecret, c.ObjectStoreBucket, c.ObjectStoreUseSSL)
}

// Remote returns the published-metadata probe client.
func (c Config) Remote() *remote.Client {
	if c.BaseURL == "" {
		return nil
	}
	return &remote.Client{BaseURL: strings.TrimRight(c.BaseURL, "/")}
}

// Fetcher returns the source acquisition client.
func (c Config) Fetcher() fetch.Fetcher {
	return &fetch.Client{HTTPClient: &http.Client{Timeout: 10 * time.Minute}}
}

// Invoker returns the compile script invoker.
func (c Config) Invoker() compile.Invoker {
	return &compile.ScriptInvoker{Timeout: time.Duration(c.CompileTimeoutSec) * time.Second}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getenvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			return true
		case "0", "false", "no", "n":
			return false
		}
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
