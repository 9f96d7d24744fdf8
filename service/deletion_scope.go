package service

// DeletionScope selects what a remove_assignment request deletes
type DeletionScope int

const (
	ScopeInvalid     DeletionScope = iota
	ScopeGuild                     // every assignment in the guild
	ScopeRole                      // every assignment of one role
	ScopeRoleChannel               // one role in one channel
	ScopeMessage                   // a single template of one role in one channel
	ScopeChannel                   // one channel across all roles
)

func (s DeletionScope) String() string {
	switch s {
	case ScopeGuild:
		return "guild"
	case ScopeRole:
		return "role"
	case ScopeRoleChannel:
		return "role_channel"
	case ScopeMessage:
		return "message"
	case ScopeChannel:
		return "channel"
	default:
		return "invalid"
	}
}

// SelectScope maps which of the optional inputs are present to a deletion scope
func SelectScope(hasRole, hasChannel, hasMessage bool) DeletionScope {
	switch {
	case !hasRole && !hasChannel && !hasMessage:
		return ScopeGuild
	case hasRole && !hasChannel && !hasMessage:
		return ScopeRole
	case hasRole && hasChannel && !hasMessage:
		return ScopeRoleChannel
	case hasRole && hasChannel && hasMessage:
		return ScopeMessage
	case !hasRole && hasChannel && !hasMessage:
		return ScopeChannel
	default:
		return ScopeInvalid
	}
}

// DeleteRequest describes one deletion against a guild's assignments
type DeleteRequest struct {
	Scope     DeletionScope
	RoleID    string
	ChannelID string
	Message   string
}

// NewDeleteRequest builds a request whose scope follows from the non-empty inputs
func NewDeleteRequest(roleID, channelID, message string) DeleteRequest {
	return DeleteRequest{
		Scope:     SelectScope(roleID != "", channelID != "", message != ""),
		RoleID:    roleID,
		ChannelID: channelID,
		Message:   message,
	}
}
