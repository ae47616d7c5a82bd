package bytesize

import (
	"github.com/liuran001/KnowItAll-Go/bot/config"
	logpkg "github.com/liuran001/KnowItAll-Go/bot/logger"
	"github.com/liuran001/KnowItAll-Go/bot/provider"
	providerplugins "github.com/liuran001/KnowItAll-Go/bot/provider/plugins"
)

func init() {
	if err := providerplugins.Register("bytes", buildProvider); err != nil {
		panic(err)
	}
}

// buildProvider reads [plugins.bytes] min_bytes.
func buildProvider(conf *config.Config, logger *logpkg.Logger) (provider.Provider, error) {
	minBytes := 0
	if conf != nil {
		minBytes = conf.GetPluginInt("bytes", "min_bytes")
	}
	if logger != nil {
		logger.Debug("bytes provider initialized", "name", Name, "min_bytes", minBytes)
	}
	return New(WithMinBytes(minBytes)), nil
}
