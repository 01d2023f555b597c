package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// 历史存储后端
const (
	HistoryBackendAPI    = "api"
	HistoryBackendSQLite = "sqlite"
	HistoryBackendNone   = "none"
)

// 环境变量覆盖
const (
	EnvReferenceEndpoint = "PPCONVERT_REFERENCE_ENDPOINT"
	EnvDataDir           = "PPCONVERT_DATA_DIR"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Reference ReferenceConfig `toml:"reference"`
	History   HistoryConfig   `toml:"history"`
	Export    ExportConfig    `toml:"export"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ReferenceConfig 参照数据服务（主数据 + 空船历史）
type ReferenceConfig struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SnapshotPath   string `toml:"snapshot_path"` // 非空时从快照文件读取主数据，不访问服务
}

// HistoryConfig 空船历史读写
type HistoryConfig struct {
	Backend   string `toml:"backend"`
	CreatedBy string `toml:"created_by"`
}

// ExportConfig xlsx 导出相关配置
type ExportConfig struct {
	SheetName    string `toml:"sheet_name"`
	FlagColor    string `toml:"flag_color"`
	TemplatePath string `toml:"template_path"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Reference: ReferenceConfig{
			Endpoint:       "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		History: HistoryConfig{
			Backend:   HistoryBackendAPI,
			CreatedBy: "admin",
		},
		Export: ExportConfig{
			SheetName: "Preview",
			FlagColor: "#E6B8B7",
		},
	}
}

// Validate 校验取值范围
func (c *AppConfig) Validate() error {
	switch c.History.Backend {
	case HistoryBackendAPI, HistoryBackendSQLite, HistoryBackendNone:
	default:
		return fmt.Errorf("invalid history backend %q (want api|sqlite|none)", c.History.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Reference.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid reference timeout %d", c.Reference.TimeoutSeconds)
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 可执行文件同目录下的 config.toml
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigFrom 从指定路径加载配置；文件不存在时使用默认配置，环境变量总是生效
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, fmt.Errorf("read %s: %w", configPath, err)
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖（用于容器 / 本地运行）
func applyEnv(config *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvReferenceEndpoint)); v != "" {
		config.Reference.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		config.Data.DataDir = v
	}
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadConfigFrom(DefaultPath())
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到指定路径
func SaveConfig(configPath string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径相对可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// exports: 导出文件；snapshots: 主数据快照
	for _, subdir := range []string{"exports", "snapshots"} {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
