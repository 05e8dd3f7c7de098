package doctor

// Doctor as the backend returns it; the password hash never leaves the
// backend.
type Doctor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Qualifications string `json:"qualifications"`
	Role           string `json:"role"`
	KMCNo          string `json:"kmc_no"`
	Location       string `json:"location"`
	Username       string `json:"username"`
	IsActive       bool   `json:"is_active"`
}

// Profile is a single doctor merged with the shared clinic letterhead info,
// as served by the doctor detail endpoint.
type Profile struct {
	Doctor
	ClinicName        string `json:"clinic_name"`
	Slogan            string `json:"slogan"`
	Address           string `json:"address"`
	Timing            string `json:"timing"`
	PhoneAppointments string `json:"phone_appointments"`
	PhoneHelpline     string `json:"phone_helpline"`
}

// Input carries the admin form fields for create and update.
type Input struct {
	Name           string
	Qualifications string
	Role           string
	KMCNo          string
	Location       string
	Username       string
	Password       string
	IsActive       bool
}

// CreatePayload builds the create request body. Password is always included;
// the handler rejects blank passwords before getting here.
func (in Input) CreatePayload() map[string]interface{} {
	p := in.payload()
	p["password"] = in.Password
	return p
}

// UpdatePayload builds the update request body. A blank password means "keep
// the current one", so the key is omitted entirely rather than sent empty.
func (in Input) UpdatePayload() map[string]interface{} {
	p := in.payload()
	if in.Password != "" {
		p["password"] = in.Password
	}
	return p
}

func (in Input) payload() map[string]interface{} {
	return map[string]interface{}{
		"name":           in.Name,
		"qualifications": in.Qualifications,
		"role":           in.Role,
		"kmc_no":         in.KMCNo,
		"location":       in.Location,
		"username":       in.Username,
		"is_active":      in.IsActive,
	}
}
