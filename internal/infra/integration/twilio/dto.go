package twilio

// SendSMSInput is one outbound text message.
type SendSMSInput struct {
	To   string // E.164, e.g. "+15551234567"
	Body string
}

// MessageResponse is the subset of the Messages resource we keep.
type MessageResponse struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

// ErrorResponse is returned by the API on non-2xx answers.
type ErrorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}
