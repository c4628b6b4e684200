package config

// Config 配置主体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Platform PlatformConfig `mapstructure:"platform"`
	Push     PushConfig     `mapstructure:"push"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 本地 API 配置，仅供 UI 层访问
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// PlatformConfig 平台后端 REST 配置
type PlatformConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Token      string `mapstructure:"token"` // Bearer Token，由登录模块下发
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// PushConfig 推送通道配置
type PushConfig struct {
	URL               string `mapstructure:"url"`
	HandshakeSec      int    `mapstructure:"handshake_sec"`
	ReconnectBaseMS   int    `mapstructure:"reconnect_base_ms"`
	ReconnectMaxSec   int    `mapstructure:"reconnect_max_sec"`
	WriteDeadlineSec  int    `mapstructure:"write_deadline_sec"`
	EventBufferLength int    `mapstructure:"event_buffer_length"`
}

// ChatConfig 会话同步配置
type ChatConfig struct {
	TypingTTLSec int    `mapstructure:"typing_ttl_sec"`
	ResyncSpec   string `mapstructure:"resync_spec"` // cron 表达式，空串关闭定时校准
}

// LogConfig 日志配置
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"`
}
