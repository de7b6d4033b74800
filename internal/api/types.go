package api

import "encoding/json"

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Fields is a partial payload for create, update and patch calls. Only the
// keys present are sent.
type Fields map[string]any

type Campaign struct {
	ID               int64  `json:"id"`
	CampaignName     string `json:"campaign_name"`
	ContactType      string `json:"contact_type"`
	Language         string `json:"language"`
	LeadsCount       int    `json:"leads_count"`
	Region           string `json:"region"`
	Status           string `json:"status"`
	UserAccount      int64  `json:"user_account"`
	UserAccountEmail string `json:"user_account_email"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// Lead statuses.
const (
	LeadActive           = "active"
	LeadResponded        = "responded"
	LeadMeetingScheduled = "meeting_scheduled"
	LeadClosedNoResponse = "closed_no_response"
	LeadClosedNegative   = "closed_negative"
	LeadClosedNewPOC     = "closed_new_poc"
	LeadNeedsAttention   = "needs_attention"
	LeadPaused           = "paused"
	LeadInvalidEmail     = "invalid_email"
)

// LeadStatuses lists every status the backend accepts, in display order.
var LeadStatuses = []string{
	LeadActive, LeadResponded, LeadMeetingScheduled, LeadClosedNoResponse,
	LeadClosedNegative, LeadClosedNewPOC, LeadNeedsAttention, LeadPaused, LeadInvalidEmail,
}

// Unlock actions for the needs_attention workflow.
const (
	UnlockSendDraft         = "send_draft"
	UnlockApplyInstructions = "apply_instructions"
	UnlockCloseContact      = "close_contact"
)

// UnlockActions lists the valid unlock actions.
var UnlockActions = []string{UnlockSendDraft, UnlockApplyInstructions, UnlockCloseContact}

// Needs-attention states.
const (
	AttentionLocked   = "locked"
	AttentionUnlocked = "unlocked"
	AttentionResolved = "resolved"
)

// NextSteps holds the two suggested follow-ups on an attention record.
type NextSteps struct {
	A string `json:"A,omitempty"`
	B string `json:"B,omitempty"`
}

// LeadCampaignAttention tracks the needs_attention state of a lead within one campaign.
type LeadCampaignAttention struct {
	ID                              int64      `json:"id"`
	Lead                            int64      `json:"lead"`
	Campaign                        int64      `json:"campaign"`
	CampaignName                    string     `json:"campaign_name,omitempty"`
	LeadCompanyName                 string     `json:"lead_company_name,omitempty"`
	LeadContactName                 string     `json:"lead_contact_name,omitempty"`
	LastEmailDraft                  *string    `json:"last_email_draft,omitempty"`
	NextSteps                       *NextSteps `json:"next_steps,omitempty"`
	NeedsAttentionState             *string    `json:"needs_attention_state,omitempty"`
	AwaitingUserInstructionsMessage *string    `json:"awaiting_user_instructions_message_id,omitempty"`
	UnlockEventID                   *string    `json:"unlock_event_id,omitempty"`
	UnlockAction                    *string    `json:"unlock_action,omitempty"`
	LastInstructions                *string    `json:"last_instructions,omitempty"`
	LastInstructionsAt              *string    `json:"last_instructions_at,omitempty"`
	CreatedAt                       string     `json:"created_at"`
	UpdatedAt                       string     `json:"updated_at"`
	ResolvedAt                      *string    `json:"resolved_at,omitempty"`
}

type Lead struct {
	ID              int64  `json:"id,omitempty"`
	User            *int64 `json:"user,omitempty"`
	Campaign        *int64 `json:"campaign,omitempty"`
	CampaignName    string `json:"campaign_name,omitempty"`
	SenderAccountID *int64 `json:"sender_account_id,omitempty"`

	CompanyName          *string  `json:"company_name,omitempty"`
	CompanyWebsite       *string  `json:"company_website,omitempty"`
	CompanyDescription   *string  `json:"company_description,omitempty"`
	CompanyCountry       *string  `json:"company_country,omitempty"`
	CompanyRegion        *string  `json:"company_region,omitempty"`
	CompanyCity          *string  `json:"company_city,omitempty"`
	CompanyEstRevenueM   *float64 `json:"company_est_revenue_musd,omitempty"`
	CompanyFounded       *int     `json:"company_founded,omitempty"`
	CompanyLinkedInURL   *string  `json:"company_linkedin_url,omitempty"`
	CompanyOwnershipType *string  `json:"company_ownership_type,omitempty"`
	CompanyAddresses     *string  `json:"company_addresses,omitempty"`

	ContactFullName   *string `json:"contact_full_name,omitempty"`
	ContactFirstName  *string `json:"contact_first_name,omitempty"`
	ContactLastName   *string `json:"contact_last_name,omitempty"`
	ContactMiddleName *string `json:"contact_middle_name,omitempty"`
	ContactTitle      *string `json:"contact_title,omitempty"`
	ContactEmail      *string `json:"contact_email,omitempty"`
	ContactLinkedIn   *string `json:"contact_linkedin,omitempty"`
	ContactLocation   *string `json:"contact_location,omitempty"`

	Status            string  `json:"status,omitempty"`
	ConversationStage *string `json:"conversation_stage,omitempty"`
	SequencePhase     string  `json:"sequence_phase,omitempty"`
	SequenceStep      int     `json:"sequence_step,omitempty"`
	ResponseClass     *string `json:"response_class,omitempty"`

	FirstContact bool `json:"first_contact,omitempty"`
	Responded    bool `json:"responded,omitempty"`

	Context *string `json:"context,omitempty"`

	CampaignAttentions []LeadCampaignAttention `json:"campaign_attentions,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// UnlockRequest releases a lead that is waiting on user instructions.
type UnlockRequest struct {
	UnlockAction     string `json:"unlock_action"`
	UnlockEventID    string `json:"unlock_event_id"`
	LastInstructions string `json:"last_instructions,omitempty"`
	CampaignID       int64  `json:"campaign_id,omitempty"`
}

// RowError reports one rejected row of a bulk upload.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// UploadResult summarises a bulk upload.
type UploadResult struct {
	Created int        `json:"created"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors"`
}

type Prompt struct {
	ID            int64   `json:"id,omitempty"`
	Campaign      *int64  `json:"campaign,omitempty"`
	CampaignName  string  `json:"campaign_name,omitempty"`
	TemplateName  string  `json:"template_name,omitempty"`
	SequencePhase string  `json:"sequence_phase"`
	SequenceStep  int     `json:"sequence_step"`
	DelayHours    float64 `json:"delay_hours"`
	Purpose       string  `json:"purpose"`
	SystemMessage string  `json:"system_message"`
	UserMessage   string  `json:"user_message"`
	Language      string  `json:"language,omitempty"`
	ContentIdea   string  `json:"content_idea,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

type Credential struct {
	ID        int64  `json:"id"`
	Provider  string `json:"provider"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Conversation struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	IsArchived   bool   `json:"is_archived"`
	MessageCount int    `json:"message_count,omitempty"`
}

// MessageMetadata is attached to stored chat messages.
type MessageMetadata struct {
	Model          string          `json:"model,omitempty"`
	Tokens         int             `json:"tokens,omitempty"`
	FunctionName   string          `json:"function_name,omitempty"`
	FunctionResult json.RawMessage `json:"function_result,omitempty"`
}

// Message is one stored turn of a conversation.
type Message struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversation_id"`
	Role           string           `json:"role"`
	Content        string           `json:"content"`
	CreatedAt      string           `json:"created_at"`
	Metadata       *MessageMetadata `json:"metadata,omitempty"`
}

// Reply is the non-streaming chat response.
type Reply struct {
	ConversationID string  `json:"conversation_id"`
	Message        string  `json:"message"`
	Model          string  `json:"model"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	TokensUsed     int     `json:"tokens_used,omitempty"`
}

type User struct {
	ID                  int64  `json:"id"`
	Email               string `json:"email"`
	Username            string `json:"username,omitempty"`
	FirstName           string `json:"first_name,omitempty"`
	LastName            string `json:"last_name,omitempty"`
	Company             string `json:"company,omitempty"`
	OnboardingCompleted bool   `json:"onboarding_completed,omitempty"`
}

// StepOption is one choice of a select-type onboarding step.
type StepOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type OnboardingStep struct {
	ID          int64        `json:"id"`
	Order       int          `json:"order"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        string       `json:"type"`
	Options     []StepOption `json:"options,omitempty"`
	Required    bool         `json:"required"`
}

// StepResponse answers one onboarding step.
type StepResponse struct {
	StepID int64  `json:"step_id"`
	Value  string `json:"value"`
}

type OnboardingResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to"`
}

// Detail is the generic {"detail": "..."} acknowledgement.
type Detail struct {
	Detail string `json:"detail"`
}
