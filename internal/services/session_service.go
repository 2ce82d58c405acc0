// internal/services/session_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
	"github.com/javajoker/reelshop/internal/utils"
)

type SessionService struct {
	store *store.Store
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string          `json:"username" validate:"required,username"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Role     models.Role     `json:"role" validate:"required,role"`
	Email    string          `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone    string          `json:"phone" validate:"required_without=Email,omitempty,phone"`
	Language models.Language `json:"language" validate:"omitempty,language"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type ResetPasswordRequest struct {
	Identifier  string `json:"identifier" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type UpdateProfileRequest struct {
	Username             *string         `json:"username,omitempty" validate:"omitempty,username"`
	Bio                  *string         `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL            *string         `json:"avatarUrl,omitempty"`
	OriginalAvatarURL    *string         `json:"originalAvatarUrl,omitempty"`
	Email                *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone                *string         `json:"phone,omitempty" validate:"omitempty,phone"`
	Address              *models.Address `json:"address,omitempty"`
	VoiceMessagesEnabled *bool           `json:"voiceMessagesEnabled,omitempty"`
	PaymentProviderID    *string         `json:"paymentProviderId,omitempty"`
}

type AddTeamMemberRequest struct {
	UserID         string  `json:"userId" validate:"required"`
	CommissionRate float64 `json:"commissionRate" validate:"gte=0,lte=100"`
}

// Me is the logged-in user with derived capabilities.
type Me struct {
	User         models.User         `json:"user"`
	Capabilities models.Capabilities `json:"capabilities"`
}

func NewSessionService(s *store.Store) *SessionService {
	return &SessionService{store: s}
}

// matchesIdentifier matches an email case-insensitively when identifier
// contains "@", and a phone number exactly otherwise.
func matchesIdentifier(u *models.User, identifier string) bool {
	if strings.Contains(identifier, "@") {
		return u.Contact.Email != "" && strings.EqualFold(u.Contact.Email, identifier)
	}
	return u.Contact.Phone != "" && u.Contact.Phone == identifier
}

func (s *SessionService) Login(req *LoginRequest) (*Me, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Compare outside the store lock; bcrypt is slow on purpose.
	var candidate models.User
	s.store.View(func(st *store.AppState) {
		for i := range st.Users {
			if matchesIdentifier(&st.Users[i], req.Identifier) {
				candidate = st.Users[i]
				return
			}
		}
	})
	if candidate.ID == "" || candidate.CheckPassword(req.Password) != nil {
		return nil, ErrInvalidCredentials
	}

	var me *Me
	err := s.store.Update("session.login", func(st *store.AppState) error {
		user := st.User(candidate.ID)
		if user == nil {
			return ErrInvalidCredentials
		}
		st.CurrentUserID = user.ID
		st.PublicMode = false
		st.EditingPreOrder = nil
		if user.Language.Valid() {
			st.Language = user.Language
		}
		st.Navigation.ResetToRoot(navigation.ViewFeed, false)
		me = newMe(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return me, nil
}

func (s *SessionService) Register(req *RegisterRequest) (*Me, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user := models.User{
		ID:           newID(),
		Username:     req.Username,
		Contact:      models.Contact{Email: strings.TrimSpace(req.Email), Phone: strings.TrimSpace(req.Phone)},
		Address:      models.DefaultAddress(),
		FollowingIDs: []string{},
		FollowerIDs:  []string{},
		Role:         req.Role,
		Decks:        []models.Deck{},
		Language:     req.Language,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var me *Me
	err := s.store.Update("session.register", func(st *store.AppState) error {
		if err := checkContactFree(st, "", user.Contact.Email, user.Contact.Phone); err != nil {
			return err
		}
		if !user.Language.Valid() {
			user.Language = st.Language
		}

		st.Users = append(st.Users, user)
		st.CurrentUserID = user.ID
		st.PublicMode = false
		if user.Role == models.RoleBrandOwner {
			st.Navigation.Replace(navigation.ViewProfile, navigation.Props{"userId": user.ID})
		} else {
			st.Navigation.Replace(navigation.ViewFeed, nil)
		}
		me = newMe(st.User(user.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return me, nil
}

// checkContactFree rejects an email (any case) or phone already used by a
// user other than exceptID.
func checkContactFree(st *store.AppState, exceptID, email, phone string) error {
	for i := range st.Users {
		u := &st.Users[i]
		if u.ID == exceptID {
			continue
		}
		if email != "" && strings.EqualFold(u.Contact.Email, email) {
			return ErrEmailExists
		}
		if phone != "" && u.Contact.Phone == phone {
			return ErrPhoneExists
		}
	}
	return nil
}

// Logout clears the session and deletes the saved snapshot.
func (s *SessionService) Logout() error {
	err := s.store.Update("session.logout", func(st *store.AppState) error {
		st.ClearSession()
		st.PublicMode = false
		st.Navigation.Replace(navigation.ViewFeed, nil)
		return nil
	})
	if err != nil {
		return err
	}
	s.store.Purge()
	return nil
}

func (s *SessionService) Me() (*Me, error) {
	var me *Me
	var err error
	s.store.View(func(st *store.AppState) {
		user, uerr := currentUser(st)
		if uerr != nil {
			err = uerr
			return
		}
		me = newMe(user)
	})
	return me, err
}

func (s *SessionService) ChangePassword(req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var current models.User
	var err error
	s.store.View(func(st *store.AppState) {
		user, uerr := currentUser(st)
		if uerr != nil {
			err = uerr
			return
		}
		current = *user
	})
	if err != nil {
		return err
	}
	if current.CheckPassword(req.CurrentPassword) != nil {
		return ErrIncorrectPassword
	}
	if err := current.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.store.Update("session.change_password", func(st *store.AppState) error {
		user := st.User(current.ID)
		if user == nil {
			return ErrUserNotFound
		}
		user.PasswordHash = current.PasswordHash
		return nil
	})
}

// ResetPassword overwrites the password of the user with the given email
// (any case) or phone. It returns ErrUserNotFound when nobody matches.
func (s *SessionService) ResetPassword(req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var hashed models.User
	if err := hashed.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.store.Update("session.reset_password", func(st *store.AppState) error {
		for i := range st.Users {
			u := &st.Users[i]
			if (u.Contact.Email != "" && strings.EqualFold(u.Contact.Email, req.Identifier)) ||
				(u.Contact.Phone != "" && u.Contact.Phone == req.Identifier) {
				u.PasswordHash = hashed.PasswordHash
				return nil
			}
		}
		return ErrUserNotFound
	})
}

func (s *SessionService) UpdateProfile(req *UpdateProfileRequest) (*Me, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var me *Me
	err := s.store.Update("session.update_profile", func(st *store.AppState) error {
		user, err := currentUser(st)
		if err != nil {
			return err
		}

		email, phone := "", ""
		if req.Email != nil {
			email = strings.TrimSpace(*req.Email)
		}
		if req.Phone != nil {
			phone = strings.TrimSpace(*req.Phone)
		}
		if err := checkContactFree(st, user.ID, email, phone); err != nil {
			return err
		}

		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.Bio != nil {
			user.Bio = *req.Bio
		}
		if req.AvatarURL != nil {
			user.AvatarURL = *req.AvatarURL
		}
		if req.OriginalAvatarURL != nil {
			user.OriginalAvatarURL = *req.OriginalAvatarURL
		}
		if req.Email != nil {
			user.Contact.Email = email
		}
		if req.Phone != nil {
			user.Contact.Phone = phone
		}
		if req.Address != nil {
			user.Address = *req.Address
		}
		if req.VoiceMessagesEnabled != nil {
			user.VoiceMessagesEnabled = *req.VoiceMessagesEnabled
		}
		if req.PaymentProviderID != nil {
			user.PaymentProviderID = *req.PaymentProviderID
		}
		me = newMe(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return me, nil
}

// SetLanguage changes the interface language, and the logged-in user's
// preference when there is one.
func (s *SessionService) SetLanguage(lang models.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("validation failed: unsupported language %q", lang)
	}
	return s.store.Update("session.language", func(st *store.AppState) error {
		st.Language = lang
		if user := st.CurrentUser(); user != nil {
			user.Language = lang
		}
		return nil
	})
}

func (s *SessionService) Language() models.Language {
	var lang models.Language
	s.store.View(func(st *store.AppState) { lang = st.Language })
	return lang
}

// AddTeamMember attaches a sales rep to the logged-in brand owner.
func (s *SessionService) AddTeamMember(req *AddTeamMemberRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return s.store.Update("team.add", func(st *store.AppState) error {
		owner, err := currentUser(st)
		if err != nil {
			return err
		}
		if !owner.Capabilities().CanManageTeam {
			return ErrForbidden
		}
		rep, err := userRef(st, req.UserID)
		if err != nil {
			return err
		}
		if rep.Role != models.RoleSalesRep || (rep.CompanyID != "" && rep.CompanyID != owner.ID) {
			return ErrInvalidTeamMember
		}

		rep.CompanyID = owner.ID
		rep.CommissionRate = req.CommissionRate
		owner.TeamMemberIDs = models.AppendUnique(owner.TeamMemberIDs, rep.ID)
		return nil
	})
}

func (s *SessionService) RemoveTeamMember(repID string) error {
	return s.store.Update("team.remove", func(st *store.AppState) error {
		owner, err := currentUser(st)
		if err != nil {
			return err
		}
		if !owner.Capabilities().CanManageTeam {
			return ErrForbidden
		}
		rep, err := userRef(st, repID)
		if err != nil {
			return err
		}
		if rep.CompanyID != owner.ID {
			return ErrInvalidTeamMember
		}

		rep.CompanyID = ""
		rep.CommissionRate = 0
		owner.TeamMemberIDs = models.RemoveID(owner.TeamMemberIDs, rep.ID)
		return nil
	})
}

// Team lists the sales reps of the logged-in brand owner.
func (s *SessionService) Team() ([]models.User, error) {
	var team []models.User
	var err error
	s.store.View(func(st *store.AppState) {
		owner, uerr := currentUser(st)
		if uerr != nil {
			err = uerr
			return
		}
		if !owner.Capabilities().CanManageTeam {
			err = ErrForbidden
			return
		}
		team = make([]models.User, 0, len(owner.TeamMemberIDs))
		for _, id := range owner.TeamMemberIDs {
			if rep := st.User(id); rep != nil {
				team = append(team, rep.Public())
			}
		}
	})
	return team, err
}

func newMe(u *models.User) *Me {
	return &Me{User: u.Public(), Capabilities: u.Capabilities()}
}
