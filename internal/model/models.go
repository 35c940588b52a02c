// Package model defines shared data structures for the Findr backend.
package model

import "time"

// ExperienceEntry is one row of a jobseeker's professional experience.
// Only the first entry participates in profile-completion counting.
type ExperienceEntry struct {
	CurrentRole       string `json:"currentRole"`
	Company           string `json:"company"`
	YearsOfExperience int    `json:"yearsOfExperience"`
	Industry          string `json:"industry"`
}

// EducationEntry is one row of a jobseeker's education history.
type EducationEntry struct {
	HighestDegree    string `json:"highestDegree"`
	Institution      string `json:"institution"`
	YearOfGraduation int    `json:"yearOfGraduation"`
	GradeCGPA        string `json:"gradeCgpa"`
}

// JobPreferences holds a jobseeker's stated preferences, including the
// uploaded resume-and-documents URL list (CV + up to 3 docs).
type JobPreferences struct {
	PreferredJobType  []string `json:"preferredJobType"`
	SalaryExpectation string   `json:"salaryExpectation"`
	PreferredLocation string   `json:"preferredLocation"`
	Availability      string   `json:"availability"`
	ResumeAndDocs     []string `json:"resumeAndDocs"`
}

// SocialLinks holds profile links per platform.
type SocialLinks struct {
	LinkedIn  string `json:"linkedIn"`
	Instagram string `json:"instagram"`
	TwitterX  string `json:"twitterX"`
}

// Profile is the typed view of a jobseeker's profile used by the completion
// calculator and the match scorer. It is derived from a users row, never
// persisted on its own.
type Profile struct {
	FullName            string            `json:"fullName"`
	Email               string            `json:"email"`
	PhoneNumber         string            `json:"phoneNumber"`
	Location            string            `json:"location"`
	DateOfBirth         *time.Time        `json:"dateOfBirth"`
	Nationality         string            `json:"nationality"`
	ProfessionalSummary string            `json:"professionalSummary"`
	EmiratesID          string            `json:"emiratesId"`
	PassportNumber      string            `json:"passportNumber"`
	Experience          []ExperienceEntry `json:"professionalExperience"`
	Education           []EducationEntry  `json:"education"`
	Skills              []string          `json:"skills"`
	Certifications      []string          `json:"certifications"`
	Preferences         JobPreferences    `json:"jobPreferences"`
	Social              SocialLinks       `json:"socialLinks"`
	ResumeDocument      string            `json:"resumeDocument"`
}

// RewardBuckets are the named point sources. The running total is always the
// sum of the four buckets; no bucket is ever reconciled from history.
type RewardBuckets struct {
	CompleteProfile  int `json:"completeProfile"`
	ApplyForJobs     int `json:"applyForJobs"`
	RMService        int `json:"rmService"`
	SocialMediaBonus int `json:"socialMediaBonus"`
}

// Total returns the effective point total derived from the buckets.
func (b RewardBuckets) Total() int {
	return b.CompleteProfile + b.ApplyForJobs + b.RMService + b.SocialMediaBonus
}

// AppliedJob is one entry of a jobseeker's application history. The history
// is append-only and survives withdrawal and job deletion.
type AppliedJob struct {
	JobID   string    `json:"jobId"`
	Role    string    `json:"role"`
	Company string    `json:"company"`
	Date    time.Time `json:"date"`
}

// ApplicationCounters are the per-user summary counters.
type ApplicationCounters struct {
	TotalApplications  int `json:"totalApplications"`
	ActiveApplications int `json:"activeApplications"`
	AwaitingFeedback   int `json:"awaitingFeedback"`
}

// User is a jobseeker account row.
type User struct {
	ID                string              `json:"id"`
	Email             string              `json:"email"`
	Role              string              `json:"role"`
	Name              string              `json:"name"`
	LoginStatus       string              `json:"loginStatus"`
	ProfilePicture    string              `json:"profilePicture"`
	Profile           Profile             `json:"profile"`
	EmploymentVisa    string              `json:"employmentVisa"`
	IntroVideo        string              `json:"introVideo"`
	RMServiceActive   bool                `json:"rmServiceActive"`
	FollowedLinkedIn  bool                `json:"followedLinkedIn"`
	FollowedInstagram bool                `json:"followedInstagram"`
	Rewards           RewardBuckets       `json:"rewards"`
	Points            int                 `json:"points"`
	DeductedPoints    int                 `json:"deductedPoints"`
	ProfileCompleted  int                 `json:"profileCompleted"`
	Counters          ApplicationCounters `json:"applications"`
	AppliedJobs       []AppliedJob        `json:"appliedJobs"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// Employer is an employer account row.
type Employer struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	LoginStatus        string    `json:"loginStatus"`
	CompanyName        string    `json:"companyName"`
	CompanyLocation    string    `json:"companyLocation"`
	CompanyDescription string    `json:"companyDescription"`
	Website            string    `json:"website"`
	Industry           string    `json:"industry"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// SalaryRange is an inclusive min/max band in whole currency units.
type SalaryRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Midpoint returns the middle of the band.
func (r SalaryRange) Midpoint() float64 { return float64(r.Min+r.Max) / 2 }

// IsZero reports whether the range carries no information.
func (r SalaryRange) IsZero() bool { return r.Min == 0 && r.Max == 0 }

// Job is a job posting row.
type Job struct {
	ID              string      `json:"id"`
	EmployerID      string      `json:"employerId"`
	Title           string      `json:"title"`
	CompanyName     string      `json:"companyName"`
	Description     string      `json:"description"`
	Requirements    []string    `json:"requirements"`
	Skills          []string    `json:"skills"`
	Location        string      `json:"location"`
	JobType         string      `json:"jobType"`
	ExperienceLevel string      `json:"experienceLevel"`
	Salary          SalaryRange `json:"salary"`
	Status          string      `json:"status"`
	Views           int         `json:"views"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Application is a job application row.
type Application struct {
	ID               string      `json:"id"`
	JobID            string      `json:"jobId"`
	ApplicantID      string      `json:"applicantId"`
	EmployerID       string      `json:"employerId"`
	Status           string      `json:"status"`
	ExpectedSalary   SalaryRange `json:"expectedSalary"`
	Availability     string      `json:"availability"`
	CoverLetter      string      `json:"coverLetter"`
	ResumeURL        string      `json:"resumeUrl"`
	ReferredBy       *string     `json:"referredBy,omitempty"`
	EmployerNotes    string      `json:"employerNotes"`
	ViewedByEmployer bool        `json:"viewedByEmployer"`
	ViewedDate       *time.Time  `json:"viewedDate,omitempty"`
	InterviewDate    *time.Time  `json:"interviewDate,omitempty"`
	InterviewMode    string      `json:"interviewMode"`
	Rating           *int        `json:"rating,omitempty"`
	Feedback         string      `json:"feedback"`
	AppliedDate      time.Time   `json:"appliedDate"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Order is a premium-service purchase record.
type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Service     string    `json:"service"`
	Price       float64   `json:"price"`
	PointsUsed  int       `json:"pointsUsed"`
	CouponCode  string    `json:"couponCode"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	OrderDate   time.Time `json:"orderDate"`
}
