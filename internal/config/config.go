package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zacy-Sokach/BookingAssistant/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL     = "http://localhost:5000"
	DefaultTimeout       = 60
	DefaultFadeDelayMS   = 1000
	DefaultMarkdownStyle = "dark"
	DefaultLogLevel      = "info"

	// ServerURLEnv 覆盖配置文件中的 server_url
	ServerURLEnv = "BOOKING_ASSISTANT_SERVER_URL"
)

type Config struct {
	ServerURL      string    `yaml:"server_url"`
	TimeoutSeconds *int      `yaml:"timeout_seconds,omitempty"`
	UI             UIConfig  `yaml:"ui"`
	Log            LogConfig `yaml:"log"`
}

type UIConfig struct {
	FadeDelayMS   int    `yaml:"fade_delay_ms"`
	MarkdownStyle string `yaml:"markdown_style"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default 返回默认配置
func Default() *Config {
	timeout := DefaultTimeout
	return &Config{
		ServerURL:      DefaultServerURL,
		TimeoutSeconds: &timeout,
		UI: UIConfig{
			FadeDelayMS:   DefaultFadeDelayMS,
			MarkdownStyle: DefaultMarkdownStyle,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// LoadConfig 从默认配置路径加载
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom 从指定路径加载配置，文件不存在时返回默认配置
func LoadConfigFrom(configPath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// 使用默认值
	case err != nil:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	config.applyDefaults()

	if envURL := strings.TrimSpace(os.Getenv(ServerURLEnv)); envURL != "" {
		config.ServerURL = envURL
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ServerURL) == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.TimeoutSeconds == nil {
		timeout := DefaultTimeout
		c.TimeoutSeconds = &timeout
	}
	if c.UI.FadeDelayMS <= 0 {
		c.UI.FadeDelayMS = DefaultFadeDelayMS
	}
	if c.UI.MarkdownStyle == "" {
		c.UI.MarkdownStyle = DefaultMarkdownStyle
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url 无效: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url 必须使用 http 或 https: %q", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server_url 缺少主机名: %q", c.ServerURL)
	}
	if c.TimeoutSeconds != nil && *c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds 不能为负数: %d", *c.TimeoutSeconds)
	}
	return nil
}

// Timeout 请求超时，0 表示不限制
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds == nil {
		return DefaultTimeout * time.Second
	}
	return time.Duration(*c.TimeoutSeconds) * time.Second
}

// FadeDelay 初始化成功后隐藏初始化区域前的等待时间
func (c *Config) FadeDelay() time.Duration {
	return time.Duration(c.UI.FadeDelayMS) * time.Millisecond
}

// LogFilePath 日志文件路径，未配置时放在配置目录下
func (c *Config) LogFilePath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	configDir, err := utils.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取配置目录失败: %w", err)
	}
	return filepath.Join(configDir, "booking-assistant.log"), nil
}

// SaveConfig 保存到默认配置路径
func SaveConfig(config *Config) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(configPath, config)
}

// SaveConfigTo 保存到指定路径
func SaveConfigTo(configPath string, config *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

func getConfigPath() (string, error) {
	configDir, err := utils.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取配置目录失败: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
