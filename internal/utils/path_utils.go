package utils

import (
	"os"
	"path/filepath"
)

// AppDirName 配置目录名
const AppDirName = "booking-assistant"

// GetConfigDir 获取跨平台的配置目录
// Windows: %APPDATA%/booking-assistant
// Linux/macOS: ~/.config/booking-assistant
func GetConfigDir() (string, error) {
	// 检查是否设置了自定义配置目录
	if configHome := os.Getenv("BOOKING_ASSISTANT_CONFIG_HOME"); configHome != "" {
		return configHome, nil
	}

	// Windows: 使用 APPDATA
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, AppDirName), nil
	}

	// Linux/macOS: 使用 XDG_CONFIG_HOME 或 ~/.config
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", AppDirName), nil
}

// GetConfigPathForDisplay 获取用于显示的配置路径字符串
func GetConfigPathForDisplay() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, AppDirName, "config.yaml") + " (Windows)"
	}
	return "~/.config/" + AppDirName + "/config.yaml (Linux/macOS)"
}
