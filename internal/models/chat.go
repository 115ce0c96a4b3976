package models

// ChatMessage is a visitor message forwarded to the backend chat
type ChatMessage struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ChatReply is the wire shape of GET /api/chat/check-reply
type ChatReply struct {
	HasReply bool   `json:"hasReply"`
	Message  string `json:"message,omitempty"`
}

// Appointment is a visitor's appointment request. Date is YYYY-MM-DD and Time HH:MM.
type Appointment struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,datetime=15:04"`
	Name      string `json:"name" validate:"required,max=200"`
	RUT       string `json:"rut" validate:"required,max=20"`
	Institute string `json:"institute" validate:"required,max=200"`
	Specialty string `json:"specialty" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email"`
}
