package model

// User is a member of the organization.
type User struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Role    string `json:"role,omitempty" yaml:"role,omitempty"`
	AddedAt int64  `json:"added_at,omitempty" yaml:"added_at,omitempty"`
}

// KeyOwner identifies who owns a project API key.
type KeyOwner struct {
	Type string `json:"type"`
	User *User  `json:"user,omitempty"`
}

// APIKey is a project API key. ProjectID and ProjectName are filled in when
// keys are listed across projects.
type APIKey struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	RedactedValue string   `json:"redacted_value"`
	CreatedAt     int64    `json:"created_at"`
	LastUsedAt    *int64   `json:"last_used_at,omitempty"`
	Owner         KeyOwner `json:"owner"`
	ProjectID     string   `json:"project_id,omitempty"`
	ProjectName   string   `json:"project_name,omitempty"`
}

// KeyRef names one API key of one project, for deletion.
type KeyRef struct {
	ProjectID string `json:"project_id"`
	APIKeyID  string `json:"api_key_id"`
	KeyName   string `json:"key_name,omitempty"`
}

// KeyDeleteFailure records a key that could not be deleted.
type KeyDeleteFailure struct {
	KeyRef
	Error string `json:"error"`
}

// BulkDeleteResult reports the outcome of deleting several keys.
type BulkDeleteResult struct {
	Success []KeyRef           `json:"success"`
	Failed  []KeyDeleteFailure `json:"failed"`
}

// RateLimit is a per-model rate limit of a project.
type RateLimit struct {
	ID                          string `json:"id"`
	Model                       string `json:"model"`
	MaxRequestsPer1Minute       int    `json:"max_requests_per_1_minute"`
	MaxTokensPer1Minute         int    `json:"max_tokens_per_1_minute"`
	MaxImagesPer1Minute         int    `json:"max_images_per_1_minute,omitempty"`
	MaxAudioMegabytesPer1Minute int    `json:"max_audio_megabytes_per_1_minute,omitempty"`
	MaxRequestsPer1Day          int    `json:"max_requests_per_1_day,omitempty"`
	Batch1DayMaxInputTokens     int    `json:"batch_1_day_max_input_tokens,omitempty"`
}

// TemplateLimit is one model entry of a rate-limit template.
type TemplateLimit struct {
	Model                 string `yaml:"model" json:"model"`
	MaxRequestsPer1Minute int    `yaml:"max_requests_per_1_minute" json:"max_requests_per_1_minute"`
}

// RateLimitTemplate is a named, reusable set of per-model request limits.
type RateLimitTemplate struct {
	Name   string          `yaml:"name" json:"name"`
	Limits []TemplateLimit `yaml:"rate_limits" json:"rate_limits"`
}

// TemplateFromLimits captures a project's current request limits as a template.
func TemplateFromLimits(name string, limits []RateLimit) RateLimitTemplate {
	t := RateLimitTemplate{Name: name, Limits: make([]TemplateLimit, 0, len(limits))}
	for _, l := range limits {
		t.Limits = append(t.Limits, TemplateLimit{Model: l.Model, MaxRequestsPer1Minute: l.MaxRequestsPer1Minute})
	}
	return t
}
