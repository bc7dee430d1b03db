package usecase

type CaptureLeadInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

type CaptureLeadOutput struct {
	Success bool   `json:"success"`
	LeadID  string `json:"lead_id"`
}
