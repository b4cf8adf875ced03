package worker

import "storefront-service/pkg/manager"

func init() {
	manager.RegisterComponentPlugin(&CleanupWorkerComponentPlugin{})
}
