package dto

// Response 统一响应封装，平台后端与本地 API 共用同一信封结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
