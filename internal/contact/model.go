package contact

// SubmissionRequest is the raw contact-form payload as received from the
// website. All fields arrive as strings; nothing here is trusted yet.
type SubmissionRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// ValidationResult reports whether a submission passed validation and, if
// not, every rule it violated.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// SanitizedSubmission is the normalized form of a submission after
// validation. The timestamp is generated server-side; clients cannot forge
// the submission time.
type SanitizedSubmission struct {
	Name      string
	Phone     string
	Email     string
	Service   string
	Message   string
	Timestamp string
}

// SpamAssessment is the outcome of the heuristic spam check. Reasons are
// kept for server-side logging and are never returned to the caller.
type SpamAssessment struct {
	Score   int
	IsSpam  bool
	Reasons []string
}

// Services is the fixed set of treatment categories the form accepts.
var Services = []string{
	"consultation",
	"cleaning",
	"implant",
	"cosmetic",
	"root-canal",
	"orthodontics",
	"emergency",
	"other",
}

func validService(s string) bool {
	for _, svc := range Services {
		if s == svc {
			return true
		}
	}
	return false
}
