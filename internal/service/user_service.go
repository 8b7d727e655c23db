package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"socialhub/internal/cache"
	"socialhub/internal/identity"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/validation"

	"github.com/google/uuid"
)

const (
	minUsernameLen     = 3
	maxUsernameLen     = 30
	usernameSuffixLen  = 6
	usernameCandidates = 5
)

var nonUsernameChars = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

type UserService struct {
	op
	userRepo repository.UserRepository
	cache    *cache.Cache
}

func NewUserService(userRepo repository.UserRepository, c *cache.Cache, timeout time.Duration) *UserService {
	return &UserService{
		op:       newOp("UserService", timeout),
		userRepo: userRepo,
		cache:    c,
	}
}

// EnsureUser returns the account of a verified identity, creating it on
// first sight.
func (s *UserService) EnsureUser(ctx context.Context, id identity.Identity) (_ *models.User, err error) {
	ctx, done := s.start(ctx, "EnsureUser")
	defer done(&err)

	user, err := s.userRepo.GetByID(ctx, id.SubjectID)
	if err == nil {
		return user, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	base := DeriveUsername(id)
	name := strings.TrimSpace(id.DisplayName)
	var avatar *string
	if id.PictureURL != "" {
		avatar = &id.PictureURL
	}

	candidate := base
	for attempt := 0; attempt < usernameCandidates; attempt++ {
		if attempt > 0 {
			candidate = withSuffix(base)
		}
		taken, err := s.userRepo.UsernameTaken(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		user = &models.User{
			ID:        id.SubjectID,
			Email:     id.Email,
			Username:  candidate,
			Name:      name,
			AvatarURL: avatar,
		}
		if user.Name == "" {
			user.Name = candidate
		}
		if r := []rune(user.Name); len(r) > 60 {
			user.Name = string(r[:60])
		}

		err = s.userRepo.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		field, unique := repository.UniqueViolationField(err)
		if !unique {
			return nil, err
		}
		if field != "username" {
			// Another request provisioned the same subject first.
			return s.userRepo.GetByID(ctx, id.SubjectID)
		}
	}
	return nil, models.NewConflictError("username")
}

// DeriveUsername builds a valid username from the identity's email local
// part, falling back to the display name and then "user".
func DeriveUsername(id identity.Identity) string {
	src, _, _ := strings.Cut(id.Email, "@")
	if strings.TrimSpace(src) == "" {
		src = id.DisplayName
	}
	name := strings.Trim(nonUsernameChars.ReplaceAllString(src, "_"), "_")
	if name == "" {
		name = "user"
	}
	if len(name) > maxUsernameLen {
		name = name[:maxUsernameLen]
	}
	for len(name) < minUsernameLen {
		name += "0"
	}
	return name
}

func withSuffix(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:usernameSuffixLen]
	if room := maxUsernameLen - usernameSuffixLen - 1; len(base) > room {
		base = base[:room]
	}
	return base + "_" + suffix
}

// GetMe returns the caller's full profile.
func (s *UserService) GetMe(ctx context.Context, userID string) (_ *models.User, err error) {
	ctx, done := s.start(ctx, "GetMe")
	defer done(&err)

	return s.userRepo.GetByID(ctx, userID)
}

// NullableString tells an absent JSON field apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// UpdateMeInput is the profile edit body. Omitted fields stay unchanged;
// null clears nullable fields.
type UpdateMeInput struct {
	Name      NullableString `json:"name"`
	Username  NullableString `json:"username"`
	Bio       NullableString `json:"bio"`
	AvatarURL NullableString `json:"avatarUrl"`
	CoverURL  NullableString `json:"coverUrl"`
	Location  NullableString `json:"location"`
	Website   NullableString `json:"website"`
}

type profileField struct {
	name     string
	column   string
	value    NullableString
	rule     string
	nullable bool
}

func (in UpdateMeInput) fields() []profileField {
	return []profileField{
		{name: "name", column: "name", value: in.Name, rule: "min=2,max=60"},
		{name: "username", column: "username", value: in.Username, rule: "min=3,max=30,username"},
		{name: "bio", column: "bio", value: in.Bio, rule: "max=160", nullable: true},
		{name: "avatarUrl", column: "avatar_url", value: in.AvatarURL, rule: "url", nullable: true},
		{name: "coverUrl", column: "cover_url", value: in.CoverURL, rule: "url", nullable: true},
		{name: "location", column: "location", value: in.Location, rule: "max=100", nullable: true},
		{name: "website", column: "website", value: in.Website, rule: "url", nullable: true},
	}
}

// UpdateMe validates and applies a partial profile edit.
func (s *UserService) UpdateMe(ctx context.Context, userID string, in UpdateMeInput) (_ *models.User, err error) {
	ctx, done := s.start(ctx, "UpdateMe")
	defer done(&err)

	updates := make(map[string]any)
	var problems validation.Errors

	for _, f := range in.fields() {
		if !f.value.Set {
			continue
		}
		if f.value.Value == nil {
			if !f.nullable {
				problems = append(problems, validation.FieldError{Field: f.name, Rule: "required", Message: "is required"})
				continue
			}
			updates[f.column] = nil
			continue
		}

		v := strings.TrimSpace(*f.value.Value)
		if v == "" && f.nullable {
			updates[f.column] = nil
			continue
		}
		if err := validation.Var(f.name, v, f.rule); err != nil {
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				return nil, err
			}
			problems = append(problems, verrs...)
			continue
		}
		updates[f.column] = v
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return s.userRepo.Update(ctx, userID, updates)
}

// GetProfile returns the public profile with cached relationship counts.
func (s *UserService) GetProfile(ctx context.Context, username string) (_ *models.PublicProfile, err error) {
	ctx, done := s.start(ctx, "GetProfile")
	defer done(&err)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var counts models.ProfileCounts
	err = s.cache.Aside(ctx, cache.ProfileCountsKey(user.ID), &counts, cache.ProfileCountsTTL, func() error {
		var err error
		counts, err = s.userRepo.Counts(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &models.PublicProfile{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
		CoverURL:  user.CoverURL,
		Location:  user.Location,
		Website:   user.Website,
		CreatedAt: user.CreatedAt,
		Counts:    counts,
	}, nil
}
