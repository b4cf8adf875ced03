package http

import "storefront-service/pkg/manager"

func init() {
	manager.RegisterRoutePlugin(&StorefrontRoutePlugin{})
}
