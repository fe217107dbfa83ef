package domain

// Session identifies the caller of a pipeline run.
type Session struct {
	UserID         string
	OrganizationID string
}
