package component

import "storefront-service/pkg/manager"

func init() {
	manager.RegisterComponentPlugin(&AssetCleanupConsumerPlugin{})
}
