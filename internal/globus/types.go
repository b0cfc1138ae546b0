package globus

// Outcome describes what a reconcile operation did.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeSkipped   Outcome = "skipped"
)

// Changed reports whether the outcome modified remote state.
func (o Outcome) Changed() bool {
	return o != OutcomeUnchanged && o != OutcomeSkipped
}

// Identity is a Globus Auth identity.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

// Project is a Globus Auth project.
type Project struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	ContactEmail string   `json:"contact_email"`
	AdminIDs     []string `json:"admin_ids,omitempty"`
	AdminGroups  []string `json:"admin_group_ids,omitempty"`
}

// Policy is a Globus Auth authentication policy.
type Policy struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`

	HighAssurance                  bool `json:"high_assurance"`
	AuthenticationAssuranceTimeout int  `json:"authentication_assurance_timeout,omitempty"`

	DomainConstraintsInclude []string `json:"domain_constraints_include,omitempty"`
	DomainConstraintsExclude []string `json:"domain_constraints_exclude,omitempty"`
}

// OAuthClient is a registered OAuth client in a project.
type OAuthClient struct {
	ID        string `json:"id"`
	ProjectID string `json:"project,omitempty"`
	Name      string `json:"name"`

	PublicClient bool     `json:"public_client"`
	ClientType   string   `json:"client_type,omitempty"`
	RedirectURIs []string `json:"redirect_uris,omitempty"`
	Visibility   string   `json:"visibility,omitempty"`

	TermsAndConditions string `json:"terms_and_conditions,omitempty"`
	PrivacyPolicy      string `json:"privacy_policy,omitempty"`
	RequiredIDP        string `json:"required_idp,omitempty"`
	PreselectIDP       string `json:"preselect_idp,omitempty"`
}

// Credential is a client credential. Secret is only populated on the
// create response and cannot be retrieved again.
type Credential struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"client"`
	Secret   string `json:"secret,omitempty"`
}

// Endpoint is a transfer endpoint.
type Endpoint struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description,omitempty"`
	Organization string `json:"organization,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`

	Public         bool   `json:"public"`
	NetworkUse     string `json:"network_use,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`

	IsGlobusConnect bool `json:"is_globus_connect"`
	HostEndpointID  string `json:"host_endpoint_id,omitempty"`
}

// Server is a GridFTP server attached to a transfer endpoint.
type Server struct {
	ID       int    `json:"id,omitempty"`
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
	Scheme   string `json:"scheme"`
}

// Collection is a guest or mapped collection hosted on an endpoint.
type Collection struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	EndpointID   string   `json:"endpoint_id"`
	Path         string   `json:"path,omitempty"`
	Description  string   `json:"description,omitempty"`
	Organization string   `json:"organization,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
	Public       bool     `json:"public"`
	Keywords     []string `json:"keywords,omitempty"`
}

// Group is a Globus group.
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
}

// Member is one membership record in a group.
type Member struct {
	IdentityID string `json:"identity_id"`
	Username   string `json:"username,omitempty"`
	Role       string `json:"role"`
	Status     string `json:"status"`
}

// Flow is a registered flow.
type Flow struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Description string         `json:"description,omitempty"`
	Keywords    []string       `json:"keywords,omitempty"`
	Definition  map[string]any `json:"definition,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`

	FlowViewers        []string `json:"flow_viewers,omitempty"`
	FlowStarters       []string `json:"flow_starters,omitempty"`
	FlowAdministrators []string `json:"flow_administrators,omitempty"`

	// Scope is the per-flow user scope minted at creation.
	Scope string `json:"globus_auth_scope,omitempty"`
}

// Timer is a scheduled job.
type Timer struct {
	ID       string `json:"timer_id"`
	Name     string `json:"name"`
	Inactive bool   `json:"inactive"`

	ScheduleType    string `json:"schedule_type,omitempty"`
	IntervalSeconds int    `json:"interval_seconds,omitempty"`
	Start           string `json:"start,omitempty"`
	StopAfter       string `json:"stop_after,omitempty"`
	StopAfterN      int    `json:"stop_after_n,omitempty"`

	CallbackURL string `json:"callback_url,omitempty"`
}

// ComputeEndpoint is a registered compute endpoint.
type ComputeEndpoint struct {
	ID          string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public"`
	Status      string `json:"status,omitempty"` // online or offline
}

// SearchIndex is a search index. Display name and description are
// immutable after creation.
type SearchIndex struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	IsTrial     bool   `json:"is_trial"`
	Status      string `json:"status,omitempty"` // open, delete_pending
}

// trialIndexLimit is the number of trial search indexes one identity may
// own.
const trialIndexLimit = 3
