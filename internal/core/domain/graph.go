package domain

import "strings"

// DefaultGraphBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultGraphBaseURL = "https://graph.microsoft.com/v1.0"

// Endpoints are the Graph resources read by the CLI.
type Endpoints struct {
	Profile string
	Mail    string
}

// NewEndpoints builds the profile and mail endpoints for a Graph base URL.
func NewEndpoints(baseURL string) Endpoints {
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return Endpoints{
		Profile: baseURL + "/me",
		Mail:    baseURL + "/me/messages",
	}
}

// UserInfo is the signed-in user's profile from Microsoft Graph.
type UserInfo struct {
	ID                string   `json:"id"`
	BusinessPhones    []string `json:"businessPhones"`
	DisplayName       string   `json:"displayName"`
	GivenName         string   `json:"givenName"`
	Surname           string   `json:"surname"`
	JobTitle          string   `json:"jobTitle"`
	Mail              string   `json:"mail"`
	MobilePhone       string   `json:"mobilePhone"`
	OfficeLocation    string   `json:"officeLocation"`
	PreferredLanguage string   `json:"preferredLanguage"`
	UserPrincipalName string   `json:"userPrincipalName"`
}

// GetUserEmail returns the user's email address.
// Falls back to userPrincipalName if mail is not set.
func (u *UserInfo) GetUserEmail() string {
	if u.Mail != "" {
		return u.Mail
	}
	return u.UserPrincipalName
}

// EmailAddress represents an email address with optional name.
type EmailAddress struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

// MailItem is a message summary from the mail list endpoint.
type MailItem struct {
	ID               string        `json:"id"`
	Subject          string        `json:"subject"`
	BodyPreview      string        `json:"bodyPreview"`
	From             *EmailAddress `json:"from"`
	ReceivedDateTime string        `json:"receivedDateTime"`
	IsRead           bool          `json:"isRead"`
	WebLink          string        `json:"webLink"`
}

// Sender returns the sender's address, or an empty string.
func (m *MailItem) Sender() string {
	if m.From == nil {
		return ""
	}
	return m.From.EmailAddress.Address
}

// MailInfo is a page of messages.
type MailInfo struct {
	Value    []MailItem `json:"value"`
	NextLink string     `json:"@odata.nextLink,omitempty"`
}
