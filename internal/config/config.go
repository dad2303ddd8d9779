package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/John-Robertt/geoclean/internal/infra/logx"
	"github.com/John-Robertt/geoclean/internal/prune"
	"github.com/John-Robertt/geoclean/internal/wiki"
)

const (
	// ErrCodeNotFound 表示 --config 指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingInput 表示没有给出输入文件。
	ErrCodeMissingInput = "config_missing_input"
)

// DefaultFileName 是未指定 --config 时在 cwd 下查找的配置文件（可选）。
const DefaultFileName = "geoclean.yaml"

const (
	BackendSearch     = "search"
	BackendOpenSearch = "opensearch"
)

// CLIArgs 是 CLI 暴露的入口参数。
type CLIArgs struct {
	Input      string
	OutputDir  string
	ConfigPath string
	NoEnrich   bool
	DryRun     bool
	LogLevel   string
}

// FileConfig 对应 geoclean.yaml 的结构；每一项也可由 GEOCLEAN_* 环境变量覆盖。
//
// 注意：cleanenv 会对零值字段套用 env-default，所以布尔开关一律以“默认 false”的形式出现。
type FileConfig struct {
	TitleKey     string   `yaml:"title_key" json:"title_key" toml:"title_key" env:"GEOCLEAN_TITLE_KEY" env-default:"title" validate:"required"`
	WikipediaKey string   `yaml:"wikipedia_key" json:"wikipedia_key" toml:"wikipedia_key" env:"GEOCLEAN_WIKIPEDIA_KEY" env-default:"Wikipedia" validate:"required,nefield=TitleKey"`
	TextFields   []string `yaml:"text_fields" json:"text_fields" toml:"text_fields" env:"GEOCLEAN_TEXT_FIELDS"`

	DisableEnrich     bool   `yaml:"disable_enrich" json:"disable_enrich" toml:"disable_enrich" env:"GEOCLEAN_DISABLE_ENRICH"`
	BaseLanguage      string `yaml:"base_language" json:"base_language" toml:"base_language" env:"GEOCLEAN_BASE_LANGUAGE" env-default:"en"`
	SecondaryLanguage string `yaml:"secondary_language" json:"secondary_language" toml:"secondary_language" env:"GEOCLEAN_SECONDARY_LANGUAGE" env-default:"de"`
	MaxLanguages      int    `yaml:"max_languages" json:"max_languages" toml:"max_languages" env:"GEOCLEAN_MAX_LANGUAGES" env-default:"4" validate:"min=1,max=16"`

	Search SearchConfig `yaml:"search" json:"search" toml:"search"`
	HTTP   HTTPConfig   `yaml:"http" json:"http" toml:"http"`
	Retry  RetryConfig  `yaml:"retry" json:"retry" toml:"retry"`
	Cache  CacheConfig  `yaml:"cache" json:"cache" toml:"cache"`
	Log    LogConfig    `yaml:"log" json:"log" toml:"log"`
}

type SearchConfig struct {
	Backend   string `yaml:"backend" json:"backend" toml:"backend" env:"GEOCLEAN_SEARCH_BACKEND" env-default:"search" validate:"oneof=search opensearch"`
	Limit     int    `yaml:"limit" json:"limit" toml:"limit" env:"GEOCLEAN_SEARCH_LIMIT" env-default:"3" validate:"min=1,max=50"`
	Endpoint  string `yaml:"endpoint" json:"endpoint" toml:"endpoint" env:"GEOCLEAN_SEARCH_ENDPOINT" env-default:"https://{lang}.wikipedia.org"`
	UserAgent string `yaml:"user_agent" json:"user_agent" toml:"user_agent" env:"GEOCLEAN_SEARCH_USER_AGENT"`
}

type HTTPConfig struct {
	RequestInterval time.Duration `yaml:"request_interval" json:"request_interval" toml:"request_interval" env:"GEOCLEAN_HTTP_REQUEST_INTERVAL" env-default:"200ms" validate:"gte=0s"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout" toml:"timeout" env:"GEOCLEAN_HTTP_TIMEOUT" env-default:"10s" validate:"gt=0s"`
	ProxyURL        string        `yaml:"proxy_url" json:"proxy_url" toml:"proxy_url" env:"GEOCLEAN_HTTP_PROXY_URL"`
}

type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval" json:"initial_interval" toml:"initial_interval" env:"GEOCLEAN_RETRY_INITIAL_INTERVAL" env-default:"500ms" validate:"gt=0s"`
	MaxAttempts     int           `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts" env:"GEOCLEAN_RETRY_MAX_ATTEMPTS" env-default:"3" validate:"min=1,max=10"`
}

type CacheConfig struct {
	Dir string `yaml:"dir" json:"dir" toml:"dir" env:"GEOCLEAN_CACHE_DIR"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" toml:"level" env:"GEOCLEAN_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" json:"format" toml:"format" env:"GEOCLEAN_LOG_FORMAT" env-default:"console" validate:"oneof=console json"`
	// File 非空时额外写一份 JSON 滚动日志。
	File       string `yaml:"file" json:"file" toml:"file" env:"GEOCLEAN_LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" toml:"max_size_mb" env:"GEOCLEAN_LOG_MAX_SIZE_MB" env-default:"10" validate:"min=1,max=1024"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" toml:"max_backups" env:"GEOCLEAN_LOG_MAX_BACKUPS" env-default:"3" validate:"min=0,max=100"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	InputPath  string
	OutputDir  string
	OutputPath string
	ConfigPath string // 实际读取的配置文件；未读取为空

	DryRun bool
	Enrich bool

	TitleKey     string
	WikipediaKey string
	TextFields   []string

	BaseLanguage      string
	SecondaryLanguage string
	MaxLanguages      int

	SearchBackend  string
	SearchLimit    int
	SearchEndpoint string
	UserAgent      string

	RequestInterval time.Duration
	Timeout         time.Duration
	ProxyURL        string

	RetryInitialInterval time.Duration
	MaxAttempts          int

	CacheDir string

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingInput:
		return fmt.Sprintf("%s：缺少输入文件参数", e.Code)
	case ErrCodeInvalid:
		if e.Err != nil {
			if e.Path == "" {
				return fmt.Sprintf("%s：%v", e.Code, e.Err)
			}
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取配置并与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 给了 --config：该文件必须存在
// 2) 否则读取 <cwd>/geoclean.yaml（可选，不存在只用环境变量与默认值）
//
// 覆盖优先级：CLI > GEOCLEAN_* 环境变量 > 配置文件 > 默认值
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	if strings.TrimSpace(cli.Input) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingInput}
	}

	fc, cfgPath, err := readFileConfig(cwdAbs, cli.ConfigPath)
	if err != nil {
		return EffectiveConfig{}, err
	}
	eff, err := merge(cwdAbs, cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff.ConfigPath = cfgPath
	return eff, nil
}

// readFileConfig 读取配置文件（可选）与环境变量；返回实际读取的文件路径。
func readFileConfig(cwdAbs, explicit string) (FileConfig, string, error) {
	var fc FileConfig

	path := filepath.Join(cwdAbs, DefaultFileName)
	explicitPath := strings.TrimSpace(explicit) != ""
	if explicitPath {
		path = absCleanFrom(cwdAbs, explicit)
	}

	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		if err := cleanenv.ReadConfig(path, &fc); err != nil {
			return FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
		return fc, path, nil
	} else if explicitPath {
		if err == nil {
			err = fmt.Errorf("是目录")
		} else if !os.IsNotExist(err) {
			return FileConfig{}, "", &Error{Code: ErrCodeInvalid, Path: path, Err: err}
		}
		return FileConfig{}, "", &Error{Code: ErrCodeNotFound, Path: path, Err: err}
	}

	if err := cleanenv.ReadEnv(&fc); err != nil {
		return FileConfig{}, "", &Error{Code: ErrCodeInvalid, Err: err}
	}
	return fc, "", nil
}

var langRE = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]{2,8})?$`)

func merge(cwdAbs string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	input := absCleanFrom(cwdAbs, cli.Input)
	outDir := filepath.Dir(input)
	if strings.TrimSpace(cli.OutputDir) != "" {
		outDir = absCleanFrom(cwdAbs, cli.OutputDir)
	}

	normalizeFileConfig(&fc)
	if err := validateFileConfig(fc); err != nil {
		return EffectiveConfig{}, err
	}

	titleKey := fc.TitleKey
	wikiKey := fc.WikipediaKey
	for _, k := range []string{titleKey, wikiKey} {
		if prune.Denied(k) {
			return EffectiveConfig{}, fmt.Errorf("%q 在固定删除列表中，不能用作 title_key/wikipedia_key", k)
		}
	}
	textFields := normList(fc.TextFields)
	if len(textFields) == 0 {
		textFields = []string{titleKey}
	}

	base := fc.BaseLanguage
	secondary := fc.SecondaryLanguage
	if !langRE.MatchString(base) {
		return EffectiveConfig{}, fmt.Errorf("base_language 无效：%q", fc.BaseLanguage)
	}
	if !langRE.MatchString(secondary) {
		return EffectiveConfig{}, fmt.Errorf("secondary_language 无效：%q", fc.SecondaryLanguage)
	}
	endpoint := fc.Search.Endpoint
	if err := wiki.Endpoint(endpoint).Validate(); err != nil {
		return EffectiveConfig{}, fmt.Errorf("search.endpoint：%w", err)
	}

	proxyURL := fc.HTTP.ProxyURL
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, fmt.Errorf("http.proxy_url 无效：%q", proxyURL)
		}
	}

	cacheDir := ""
	if strings.TrimSpace(fc.Cache.Dir) != "" {
		cacheDir = absCleanFrom(cwdAbs, fc.Cache.Dir)
	}

	level := fc.Log.Level
	if strings.TrimSpace(cli.LogLevel) != "" {
		level = cli.LogLevel
	}
	level = strings.ToLower(strings.TrimSpace(level))
	if _, err := logx.ParseLevel(level); err != nil {
		return EffectiveConfig{}, err
	}
	format := fc.Log.Format
	logFile := ""
	if strings.TrimSpace(fc.Log.File) != "" {
		logFile = absCleanFrom(cwdAbs, fc.Log.File)
	}

	return EffectiveConfig{
		InputPath:  input,
		OutputDir:  outDir,
		OutputPath: OutputPath(input, outDir),

		DryRun: cli.DryRun,
		Enrich: !cli.NoEnrich && !fc.DisableEnrich,

		TitleKey:     titleKey,
		WikipediaKey: wikiKey,
		TextFields:   textFields,

		BaseLanguage:      base,
		SecondaryLanguage: secondary,
		MaxLanguages:      fc.MaxLanguages,

		SearchBackend:  fc.Search.Backend,
		SearchLimit:    fc.Search.Limit,
		SearchEndpoint: endpoint,
		UserAgent:      fc.Search.UserAgent,

		RequestInterval: fc.HTTP.RequestInterval,
		Timeout:         fc.HTTP.Timeout,
		ProxyURL:        proxyURL,

		RetryInitialInterval: fc.Retry.InitialInterval,
		MaxAttempts:          fc.Retry.MaxAttempts,

		CacheDir: cacheDir,

		LogLevel:      level,
		LogFormat:     format,
		LogFile:       logFile,
		LogMaxSizeMB:  fc.Log.MaxSizeMB,
		LogMaxBackups: fc.Log.MaxBackups,
	}, nil
}

// normalizeFileConfig 去掉首尾空白，并把枚举类字段转为小写。
func normalizeFileConfig(fc *FileConfig) {
	fc.TitleKey = strings.TrimSpace(fc.TitleKey)
	fc.WikipediaKey = strings.TrimSpace(fc.WikipediaKey)
	fc.BaseLanguage = strings.ToLower(strings.TrimSpace(fc.BaseLanguage))
	fc.SecondaryLanguage = strings.ToLower(strings.TrimSpace(fc.SecondaryLanguage))
	fc.Search.Backend = strings.ToLower(strings.TrimSpace(fc.Search.Backend))
	fc.Search.Endpoint = strings.TrimSpace(fc.Search.Endpoint)
	fc.Search.UserAgent = strings.TrimSpace(fc.Search.UserAgent)
	fc.HTTP.ProxyURL = strings.TrimSpace(fc.HTTP.ProxyURL)
	fc.Log.Format = strings.ToLower(strings.TrimSpace(fc.Log.Format))
}

var validate = newValidator()

// newValidator 让错误里的字段名使用配置文件里的键（yaml tag），而不是 Go 字段名。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateFileConfig 做字段级的范围/枚举校验；跨字段与语义校验留给 merge。
func validateFileConfig(fc FileConfig) error {
	err := validate.Struct(fc)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "；"))
}

func describeFieldError(fe validator.FieldError) string {
	// Namespace 形如 FileConfig.search.limit，去掉根类型名。
	_, field, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		field = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 不能为空", field)
	case "nefield":
		return fmt.Sprintf("%s 不能与 title_key 相同：%q", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s 只能是 %s 之一，实际是 %q", field, strings.ReplaceAll(fe.Param(), " ", "/"), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s 超出范围（%s=%s）：%v", field, fe.Tag(), fe.Param(), fe.Value())
	case "gt", "gte":
		return fmt.Sprintf("%s 必须满足 %s %s：%v", field, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s 校验失败（%s）：%v", field, fe.Tag(), fe.Value())
	}
}

// OutputPath 返回清洗后数据集的路径：<outDir>/<stem>_cleaned<ext>。
func OutputPath(input, outDir string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(outDir, stem+"_cleaned"+ext)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

func normList(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
