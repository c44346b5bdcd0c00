package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

const (
	RepoOwner = "Zacy-Sokach"
	RepoName  = "BookingAssistant"
	Repo      = RepoOwner + "/" + RepoName

	defaultAPIBase = "https://api.github.com"
	// DevVersion 本地构建的版本号，总是视为落后于任何发布版本
	DevVersion = "dev"
)

type ReleaseInfo struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type Checker struct {
	client  *http.Client
	apiBase string
}

func NewChecker() *Checker {
	return NewCheckerWithBase(defaultAPIBase)
}

// NewCheckerWithBase 指定 GitHub API 地址，测试中指向 httptest 服务
func NewCheckerWithBase(apiBase string) *Checker {
	return &Checker{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiBase: strings.TrimRight(apiBase, "/"),
	}
}

func (c *Checker) GetLatestVersion(ctx context.Context) (*ReleaseInfo, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBase, Repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取最新版本失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API 返回状态码 %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("发布信息缺少 tag_name")
	}

	return &release, nil
}

// CheckForUpdate 返回是否有新版本以及最新发布信息
func (c *Checker) CheckForUpdate(ctx context.Context, currentVersion string) (bool, *ReleaseInfo, error) {
	latest, err := c.GetLatestVersion(ctx)
	if err != nil {
		return false, nil, err
	}

	if currentVersion == "" || currentVersion == DevVersion {
		return true, latest, nil
	}

	return compareVersions(currentVersion, latest.TagName) < 0, latest, nil
}

// GetDownloadURL 当前平台对应的发布文件地址
func GetDownloadURL(version string) string {
	binaryName := fmt.Sprintf("bookingassistant-%s-%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	return fmt.Sprintf("https://github.com/%s/releases/download/%s/%s", Repo, version, binaryName)
}

// compareVersions 按数字逐段比较，忽略 v 前缀和 -rc 之类的后缀
func compareVersions(v1, v2 string) int {
	parts1 := versionParts(v1)
	parts2 := versionParts(v2)

	for i := 0; i < len(parts1) && i < len(parts2); i++ {
		if parts1[i] < parts2[i] {
			return -1
		}
		if parts1[i] > parts2[i] {
			return 1
		}
	}

	switch {
	case len(parts1) < len(parts2):
		return -1
	case len(parts1) > len(parts2):
		return 1
	}
	return 0
}

func versionParts(v string) []int {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		fmt.Sscanf(f, "%d", &parts[i])
	}
	return parts
}
