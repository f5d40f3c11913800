package service

import (
	"context"
	"strings"

	"mingle/internal/model"
	"mingle/internal/repository"
)

// UserService handles profile business logic.
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(repo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
	}
}

// CreateProfile provisions a profile at first sign-in. The uid and email come
// from the validated identity token, never from the request body.
func (s *UserService) CreateProfile(ctx context.Context, req *model.CreateProfileRequest) (*model.User, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, model.ErrDisplayNameRequired
	}
	if len(displayName) > model.MaxDisplayNameLength {
		return nil, model.ErrContentTooLong
	}

	user := &model.User{
		UID:         req.UID,
		Email:       req.Email,
		DisplayName: displayName,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetProfile retrieves a profile together with its follow stats. The counts
// come straight off the user row; they are maintained transactionally with
// the edges, so no edge scan is needed here. The viewer's own follow edge is
// checked separately, and a failed check degrades to is_following=false.
func (s *UserService) GetProfile(ctx context.Context, uid string, viewerID *string) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	stats := model.FollowStats{
		FollowersCount: user.FollowerCount,
		FollowingCount: user.FollowingCount,
	}

	if viewerID != nil && *viewerID != uid {
		isFollowing, err := s.followRepo.Exists(ctx, *viewerID, uid)
		if err == nil {
			stats.IsFollowing = isFollowing
		}
	}

	return &model.ProfileResponse{
		User:  user,
		Stats: stats,
	}, nil
}

// UpdateProfile applies a partial edit to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, req model.UpdateProfileRequest) (*model.User, error) {
	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		if trimmed == "" {
			return nil, model.ErrDisplayNameRequired
		}
		if len(trimmed) > model.MaxDisplayNameLength {
			return nil, model.ErrContentTooLong
		}
		req.DisplayName = &trimmed
	}
	if req.Bio != nil && len(*req.Bio) > model.MaxBioLength {
		return nil, model.ErrContentTooLong
	}

	return s.repo.Update(ctx, uid, req)
}

// Search pages users whose display name starts with the query term,
// ascending by (name, uid). An empty term returns an empty page rather than
// the whole user table. The repository fetches one extra row, so has_more is
// exact and the cursor is the last returned user's uid.
func (s *UserService) Search(ctx context.Context, term string, cursor *string, limit int, viewerID *string) (*model.UserListResponse, error) {
	limit = clampPageSize(limit)

	term = strings.TrimSpace(term)
	if term == "" {
		return &model.UserListResponse{Users: []model.UserSummary{}}, nil
	}

	users, err := s.repo.Search(ctx, term, cursor, limit)
	if err != nil {
		return nil, err
	}

	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}

	if viewerID != nil && len(users) > 0 {
		uids := make([]string, len(users))
		for i, user := range users {
			uids[i] = user.UID
		}

		followMap, err := s.followRepo.CheckFollows(ctx, *viewerID, uids)
		if err == nil {
			for i := range users {
				users[i].IsFollowing = followMap[users[i].UID]
			}
		}
	}

	var nextCursor *string
	if hasMore {
		last := users[len(users)-1].UID
		nextCursor = &last
	}

	return &model.UserListResponse{
		Users:      users,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
