package websocket

import "time"

// Envelope — "конверт" для исходящих сообщений. Тип подсказывает фронтенду,
// что делать с payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// AnnouncementPayload — объявление для всей организации (новый праздник,
// смена графика работы и т.п.).
type AnnouncementPayload struct {
	EventID  string                 `json:"eventId"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Audience string                 `json:"audience"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
