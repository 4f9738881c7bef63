package model

const (
	ChatRoleUser  = "user"
	ChatRoleModel = "model"
)

// ChatMessage is one turn of the tutor conversation as the client holds it.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
