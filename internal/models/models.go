package models

import (
	"fmt"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the signed-in user as reported by the backend, together with
// the bearer credential that proved it.
type Identity struct {
	ID          ID     `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyID   ID     `json:"company_id"`
	CompanyName string `json:"company_name"`
	Credential  string `json:"-"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type Company struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          ID     `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanyID   ID     `json:"company_id"`
	CompanyName string `json:"company_name"`
}

type ChecklistItem struct {
	ID         ID     `json:"id"`
	Text       string `json:"text"`
	CategoryID ID     `json:"category_id"`
}

type ChecklistCategory struct {
	ID    ID              `json:"id"`
	Name  string          `json:"name"`
	Items []ChecklistItem `json:"items"`
}

// Answer is the value of a checklist response.
type Answer string

const (
	AnswerYes      Answer = "Yes"
	AnswerNo       Answer = "No"
	AnswerNeedHelp Answer = "Need Help"
	AnswerNA       Answer = "N/A"
)

// Answers lists the selectable values in display order.
var Answers = []Answer{AnswerYes, AnswerNo, AnswerNeedHelp, AnswerNA}

func ParseAnswer(s string) (Answer, error) {
	for _, a := range Answers {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown answer %q", s)
}

// FileRef is one evidence file attached to a response.
type FileRef struct {
	StoredFileName string `json:"storedFileName"`
	OriginalName   string `json:"originalName"`
	SecureURL      string `json:"secureUrl,omitempty"`
}

// Response is one user's answer to one checklist item. UserID may be missing
// while the backend is still enriching a freshly created row.
type Response struct {
	ID             ID         `json:"id"`
	ItemID         ID         `json:"item_id"`
	UserID         OptionalID `json:"user_id"`
	Response       Answer     `json:"response"`
	ResponderEmail string     `json:"responder_email"`
	FilePaths      []FileRef  `json:"file_paths"`
}

type Document struct {
	ID             ID     `json:"id"`
	FileName       string `json:"file_name"`
	FilePath       string `json:"file_path,omitempty"`
	StoredFileName string `json:"storedFileName,omitempty"`
}

// DownloadName is the name the download endpoint expects.
func (d Document) DownloadName() string {
	if d.StoredFileName != "" {
		return d.StoredFileName
	}
	return d.FilePath
}

// PortalSession holds the sealed bearer credential of one browser session so
// it survives reloads and portal restarts.
type PortalSession struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Credential []byte    `gorm:"not null" json:"-"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuditLog records an administrative mutation performed through the portal.
type AuditLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    int64     `gorm:"index;not null" json:"actor_id"`
	ActorEmail string    `gorm:"not null" json:"actor_email"`
	Action     string    `gorm:"not null" json:"action"`
	Target     string    `json:"target"`
	Metadata   JSONB     `json:"metadata"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
