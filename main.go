package main

import (
	"storefront-service/app"
	"storefront-service/pkg/observability"
)

func main() {
	// 环境变量优先开启剖析，配置文件中的开关在 app.Run 内补充
	observability.StartProfiling("storefront-service")
	app.Run()
}
