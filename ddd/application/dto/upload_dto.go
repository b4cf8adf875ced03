package dto

import (
	"storefront-service/ddd/domain/entity"
)

// UploadFailureDto 失败文件
type UploadFailureDto struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// UploadOutcomeDto 批量上传结果
type UploadOutcomeDto struct {
	UploadID  string                `json:"upload_id,omitempty"`
	Total     int                   `json:"total"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Summary   string                `json:"summary"`
	Locations []string              `json:"locations"`
	Successes []entity.UploadResult `json:"successes"`
	Failures  []UploadFailureDto    `json:"failures"`
}

// NewUploadOutcomeDto 从批处理结果转换
func NewUploadOutcomeDto(uploadID string, outcome *entity.BatchOutcome) *UploadOutcomeDto {
	if outcome == nil {
		return nil
	}
	d := &UploadOutcomeDto{
		UploadID:  uploadID,
		Total:     outcome.Total,
		Succeeded: len(outcome.Successes),
		Failed:    len(outcome.Failures),
		Summary:   outcome.Summary(),
		Locations: outcome.Locations(),
		Successes: outcome.Successes,
		Failures:  make([]UploadFailureDto, 0, len(outcome.Failures)),
	}
	if d.Successes == nil {
		d.Successes = []entity.UploadResult{}
	}
	for _, f := range outcome.Failures {
		d.Failures = append(d.Failures, UploadFailureDto{
			Index:   f.Index,
			Name:    f.Name,
			Kind:    f.Kind,
			Message: f.Message(),
		})
	}
	return d
}

// PreviewDto 单个文件的预览，失败时 DataURL 为空
type PreviewDto struct {
	Name    string `json:"name"`
	DataURL string `json:"data_url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ImageURLDto 公开地址
type ImageURLDto struct {
	URL string `json:"url"`
}
