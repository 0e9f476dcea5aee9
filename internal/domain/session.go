package domain

// ViewerRole is the perspective a display surface is rendered for.
type ViewerRole string

const (
	RoleCustomer ViewerRole = "customer"
	RoleStaff    ViewerRole = "staff"
)

func (r ViewerRole) IsValid() bool {
	return r == RoleCustomer || r == RoleStaff
}

// Session is the explicit per-client state: the logged-in flag, who the
// client is, the saved profile and the cart being built. Owner is set the
// first time a client logs in on the session and never changes afterwards.
type Session struct {
	ID          string
	Owner       string
	LoggedIn    bool
	ClientID    string
	DisplayName string
	Role        ViewerRole
	Profile     *Profile
	Cart        *Cart
}

// NewGuestSession starts an anonymous session with an empty cart.
func NewGuestSession(id string) *Session {
	return &Session{
		ID:   id,
		Role: RoleCustomer,
		Cart: NewCart(),
	}
}

// BindClient logs clientID in on this session. A session owned by another
// client is refused with ErrForbidden. A guest session becomes owned by
// clientID; its cart is kept but a profile saved before login is dropped.
func (s *Session) BindClient(clientID, name string, role ViewerRole) error {
	if clientID == "" {
		return ErrUnauthenticated
	}
	if s.Owner != "" && s.Owner != clientID {
		return ErrForbidden
	}
	if s.Owner == "" {
		s.Owner = clientID
		s.Profile = nil
	}
	s.LoggedIn = true
	s.ClientID = clientID
	s.DisplayName = name
	s.Role = role
	return nil
}

// BindGuest treats the session as anonymous. Sessions owned by a client
// cannot be used without that client's credentials.
func (s *Session) BindGuest() error {
	if s.Owner != "" {
		return ErrForbidden
	}
	s.LoggedIn = false
	s.ClientID = ""
	s.DisplayName = ""
	s.Role = RoleCustomer
	return nil
}

// Identity returns the client used for checkout.
func (s *Session) Identity() (ClientIdentity, error) {
	if !s.LoggedIn || s.ClientID == "" {
		return ClientIdentity{}, ErrUnauthenticated
	}

	name := s.DisplayName
	if s.Profile != nil && s.Profile.Name != "" {
		name = s.Profile.Name
	}
	return ClientIdentity{ClientID: s.ClientID, ClientName: name}, nil
}

// SaveProfile validates and stores the profile as this client's identity.
func (s *Session) SaveProfile(p Profile) error {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	s.Profile = &p
	return nil
}

func (s *Session) IsStaff() bool {
	return s.LoggedIn && s.Role == RoleStaff
}
