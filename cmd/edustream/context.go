package main

import (
	"os"
	"strings"
	"sync"

	"edustream/internal/api"
	"edustream/internal/config"
)

type commandContext struct {
	configFlag  *string
	addressFlag *string
	tokenFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, addressFlag, tokenFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		addressFlag: addressFlag,
		tokenFlag:   tokenFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// address resolves the daemon address: flag first, then config.
func (c *commandContext) address() string {
	if c.addressFlag != nil && strings.TrimSpace(*c.addressFlag) != "" {
		return strings.TrimSpace(*c.addressFlag)
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		return cfg.Paths.APIBind
	}
	return "127.0.0.1:7979"
}

// token resolves the API token: flag, then environment, then config.
func (c *commandContext) token() string {
	if c.tokenFlag != nil && strings.TrimSpace(*c.tokenFlag) != "" {
		return strings.TrimSpace(*c.tokenFlag)
	}
	if env := strings.TrimSpace(os.Getenv("EDUSTREAM_API_TOKEN")); env != "" {
		return env
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		return cfg.Paths.APIToken
	}
	return ""
}

func (c *commandContext) client() *api.Client {
	addr := c.address()
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return api.NewClient(addr, c.token())
}
