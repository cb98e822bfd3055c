package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Agent    AgentConfig    `yaml:"agent"`
	Relay    RelayConfig    `yaml:"relay"`
	Data     DataConfig     `yaml:"data"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

// AgentConfig 外部治理代理服务
type AgentConfig struct {
	BaseURL string `yaml:"base_url"`
	AppName string `yaml:"app_name"`
}

// RelayConfig 上游更新分发接入
type RelayConfig struct {
	WSURL          string        `yaml:"ws_url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
}

type DataConfig struct {
	Dir          string `yaml:"dir"`
	DocumentsDir string `yaml:"documents_dir"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		Agent: AgentConfig{
			BaseURL: "http://localhost:8000",
			AppName: "governance",
		},
		Relay: RelayConfig{
			WSURL:          "",
			ReconnectDelay: 3 * time.Second,
		},
		Data: DataConfig{
			Dir:          "./data",
			DocumentsDir: "./data/documents",
		},
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	// 环境变量优先级高于配置文件
	if baseURL := os.Getenv("AGENT_API_URL"); baseURL != "" {
		config.Agent.BaseURL = baseURL
	}
	if appName := os.Getenv("AGENT_APP_NAME"); appName != "" {
		config.Agent.AppName = appName
	}
	if wsURL := os.Getenv("RELAY_WS_URL"); wsURL != "" {
		config.Relay.WSURL = wsURL
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	// 数据目录环境变量
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		config.Data.Dir = dataDir
	}
	if docsDir := os.Getenv("DOCUMENTS_DIR"); docsDir != "" {
		config.Data.DocumentsDir = docsDir
	}

	if config.Data.DocumentsDir == "" {
		config.Data.DocumentsDir = filepath.Join(config.Data.Dir, "documents")
	}

	return config
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func UpdateConfig(newCfg *Config) {
	cfg = newCfg
}
