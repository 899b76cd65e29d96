package config

type telegramConfig struct {
	Token      string        `toml:"token" mapstructure:"token"`
	AppID      int           `toml:"app_id" mapstructure:"app_id" json:"app_id"`
	AppHash    string        `toml:"app_hash" mapstructure:"app_hash" json:"app_hash"`
	Timeout    int           `toml:"timeout" mapstructure:"timeout" json:"timeout"`
	Proxy      tgProxyConfig `toml:"proxy" mapstructure:"proxy"`
	FloodRetry int           `toml:"flood_retry" mapstructure:"flood_retry" json:"flood_retry"`
	RpcRetry   int           `toml:"rpc_retry" mapstructure:"rpc_retry" json:"rpc_retry"`
}

type tgProxyConfig struct {
	Enable bool   `toml:"enable" mapstructure:"enable"`
	URL    string `toml:"url" mapstructure:"url"`
}

// ProxyURL returns the proxy to dial Telegram through, or "" for direct connections.
func (t telegramConfig) ProxyURL() string {
	if !t.Proxy.Enable {
		return ""
	}
	return t.Proxy.URL
}
