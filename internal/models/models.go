package models

import "encoding/json"

// LoginRequest тело запроса POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateLinkMappingsRequest тело запроса на замену блоков ссылок.
// Поле хранится как json.RawMessage, чтобы отличить массив от любого другого значения.
type UpdateLinkMappingsRequest struct {
	LinkMappings json.RawMessage `json:"linkMappings"`
}

// MessageResponse стандартный ответ API с текстовым сообщением
type MessageResponse struct {
	Message string `json:"message"`
}
