package models

// TemplateContext carries the per-announcement values substituted into a template
type TemplateContext struct {
	UserMention string
	UserTag     string
	UserName    string
	UserID      string
	RoleMention string
	RoleName    string
	RoleID      string
}
