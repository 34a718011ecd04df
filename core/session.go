package core

type SessionSource string

const (
	SessionSourceSigned SessionSource = "signed"
	SessionSourceLegacy SessionSource = "legacy"
)

// SessionInfo describes an authenticated session recovered from cookies.
// Fields keeps every raw component; the named fields are lifted from it.
type SessionInfo struct {
	Source      SessionSource
	UserID      string
	UID         string
	AccessToken string
	Expires     string
	Fields      map[string]string
}

func newSessionInfo(source SessionSource, fields map[string]string) SessionInfo {
	fields = cloneStringMap(fields)
	return SessionInfo{
		Source:      source,
		UserID:      fields["user_id"],
		UID:         fields["uid"],
		AccessToken: fields["access_token"],
		Expires:     fields["expires"],
		Fields:      fields,
	}
}

// ID returns the user identifier: user_id from a signed cookie, otherwise
// uid from a legacy cookie.
func (s SessionInfo) ID() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.UID
}

// AccessTokenInfo is a parsed token endpoint response.
type AccessTokenInfo struct {
	AccessToken string
	Expires     string
	TokenType   string
	Fields      map[string]string
}

func newAccessTokenInfo(fields map[string]string) AccessTokenInfo {
	fields = cloneStringMap(fields)
	return AccessTokenInfo{
		AccessToken: fields["access_token"],
		Expires:     fields["expires"],
		TokenType:   fields["token_type"],
		Fields:      fields,
	}
}
