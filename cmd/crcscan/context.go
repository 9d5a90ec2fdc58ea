package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
)

type commandContext struct {
	addressFlag *string
	configFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(addressFlag, configFlag *string) *commandContext {
	return &commandContext{
		addressFlag: addressFlag,
		configFlag:  configFlag,
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

// baseURL resolves the daemon endpoint: an explicit --address wins, otherwise
// the configured bind address and base path are used.
func (c *commandContext) baseURL() (string, error) {
	if c.addressFlag != nil {
		if addr := strings.TrimSpace(*c.addressFlag); addr != "" {
			if !strings.Contains(addr, "://") {
				addr = "http://" + addr
			}
			return strings.TrimRight(addr, "/"), nil
		}
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return "", fmt.Errorf("no daemon address configured; set paths.api_bind or pass --address")
	}
	base := cfg.Paths.BasePath
	if base == "/" {
		base = ""
	}
	return "http://" + bind + base, nil
}

func (c *commandContext) client() (*apiClient, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}
	token := ""
	if cfg, cfgErr := c.ensureConfig(); cfgErr == nil && cfg != nil {
		token = strings.TrimSpace(cfg.Paths.APIToken)
	}
	return newAPIClient(base, token), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
