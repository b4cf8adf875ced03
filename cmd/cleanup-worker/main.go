package main

import "storefront-service/app"

func main() {
	app.RunCleanupWorker()
}
