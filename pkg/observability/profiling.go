package observability

import (
	"os"
	"strings"

	"github.com/grafana/pyroscope-go"

	"storefront-service/pkg/logger"
)

var profiler *pyroscope.Profiler

// StartProfiling 按环境变量开启 pyroscope 持续剖析
// PYROSCOPE_ENABLED=true 且 PYROSCOPE_ADDRESS 非空时生效，失败只记录日志
func StartProfiling(appName string) {
	enabled := strings.EqualFold(os.Getenv("PYROSCOPE_ENABLED"), "true")
	StartProfilingWith(appName, enabled, os.Getenv("PYROSCOPE_ADDRESS"))
}

// StartProfilingWith 使用显式配置开启剖析，重复调用无效
func StartProfilingWith(appName string, enabled bool, address string) {
	if !enabled || strings.TrimSpace(address) == "" || profiler != nil {
		return
	}

	p, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   address,
		Tags:            map[string]string{"hostname": hostname()},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		logger.Warnf("Pyroscope start failed address=%s error=%v", address, err)
		return
	}
	profiler = p
	logger.Infof("Pyroscope profiling started app=%s address=%s", appName, address)
}

// StopProfiling 停止剖析
func StopProfiling() {
	if profiler == nil {
		return
	}
	if err := profiler.Stop(); err != nil {
		logger.Warnf("Pyroscope stop failed error=%v", err)
	}
	profiler = nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
