package mailer

// SendRequest is the payload posted to the mail relay.
type SendRequest struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendResponse is the relay's reply.
type SendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
