package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 分段识别模式
const (
	SegmentModeDynamic = "dynamic" // 从数据块第 0 列推断
	SegmentModeFixed   = "fixed"   // 使用声明的固定分段列表
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Extract ExtractConfig `toml:"extract"`
	Export  ExportConfig  `toml:"export"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir  string `toml:"data_dir"`
	AuditLog bool   `toml:"audit_log"` // 是否把每次导入写入 sqlite 审计表
}

// YearColumns 某一年份 RN / REV 所在的列偏移（0 起，A 列为 0）
type YearColumns struct {
	Year int `toml:"year"`
	RN   int `toml:"rn"`
	REV  int `toml:"rev"`
}

// ExtractConfig 数据块抽取配置
type ExtractConfig struct {
	HeaderRow           int           `toml:"header_row"`
	SegmentMode         string        `toml:"segment_mode"`
	Segments            []string      `toml:"segments"`
	Sentinels           []string      `toml:"sentinels"`
	SegmentWindowOffset int           `toml:"segment_window_offset"`
	FoldSheetNames      bool          `toml:"fold_sheet_names"`
	Years               []YearColumns `toml:"years"`
}

// ExportConfig 导出配置
type ExportConfig struct {
	Filename string `toml:"filename"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	Path          string
}

// DefaultYears 默认年份列布局：2023 (B/J)、2024 (C/K)、2025 (E/M)
func DefaultYears() []YearColumns {
	return []YearColumns{
		{Year: 2023, RN: 1, REV: 9},
		{Year: 2024, RN: 2, REV: 10},
		{Year: 2025, RN: 4, REV: 12},
	}
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:  "data",
			AuditLog: true,
		},
		Extract: ExtractConfig{
			HeaderRow:   24,
			SegmentMode: SegmentModeDynamic,
			Sentinels:   []string{"TOTAL", "VS BUD 25"},
			Years:       DefaultYears(),
		},
		Export: ExportConfig{
			Filename: "combined_rn_rev_data.csv",
		},
	}
}

// Validate 校验配置
// segment_mode 大小写与首尾空白不敏感，校验时原地规范化
func (c *AppConfig) Validate() error {
	c.Extract.SegmentMode = strings.ToLower(strings.TrimSpace(c.Extract.SegmentMode))
	ex := c.Extract
	if ex.HeaderRow < 0 {
		return fmt.Errorf("extract.header_row must be >= 0, got %d", ex.HeaderRow)
	}
	if ex.SegmentWindowOffset < 0 {
		return fmt.Errorf("extract.segment_window_offset must be >= 0, got %d", ex.SegmentWindowOffset)
	}
	switch ex.SegmentMode {
	case SegmentModeDynamic:
	case SegmentModeFixed:
		if len(ex.Segments) == 0 {
			return fmt.Errorf("extract.segments is required in %q mode", SegmentModeFixed)
		}
	default:
		return fmt.Errorf("unknown extract.segment_mode %q", ex.SegmentMode)
	}
	if len(ex.Years) == 0 {
		return fmt.Errorf("extract.years must not be empty")
	}
	for _, y := range ex.Years {
		if y.RN < 0 || y.REV < 0 {
			return fmt.Errorf("extract.years[%d] has a negative column offset", y.Year)
		}
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

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadConfigFrom(filepath.Join(exeDir, "config.toml"))
}

// LoadConfigFrom 从指定路径加载配置
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	// .env 仅用于本地运行，不存在时忽略
	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	applyEnvOverrides(config, &info)

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnvOverrides 环境变量覆盖（用于容器 / 本地运行）
func applyEnvOverrides(config *AppConfig, info *LoadConfigInfo) {
	if v := os.Getenv("FORECAST_CONVERTER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			config.Server.Port = port
			info.PortSpecified = true
		}
	}
	if v := os.Getenv("FORECAST_CONVERTER_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("FORECAST_CONVERTER_SEGMENT_MODE"); v != "" {
		config.Extract.SegmentMode = strings.ToLower(strings.TrimSpace(v))
	}
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *AppConfig, configPath string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
// 相对路径相对于可执行文件所在目录
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}
