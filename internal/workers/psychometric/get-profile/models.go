// internal/workers/psychometric/get-profile/models.go
package getprofile

type Input struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType,omitempty"`
}

type Output struct {
	Found       bool                   `json:"found"`
	ProfileType string                 `json:"profileType,omitempty"`
	Profile     map[string]interface{} `json:"profile,omitempty"`
}
