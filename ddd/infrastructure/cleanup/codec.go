package cleanup

import (
	"encoding/json"
	"fmt"

	"storefront-service/ddd/domain/gateway"
)

// Marshal 清理消息编码
func Marshal(req gateway.CleanupRequest) ([]byte, error) {
	return json.Marshal(req)
}

// Unmarshal 清理消息解码，桶为空视为非法消息
func Unmarshal(data []byte) (*gateway.CleanupRequest, error) {
	var req gateway.CleanupRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.Bucket == "" {
		return nil, fmt.Errorf("cleanup message without bucket")
	}
	return &req, nil
}
