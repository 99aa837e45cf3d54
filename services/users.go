package services

import (
	"context"
	"errors"

	"instaclone/logger"
	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Username string `label:"Username" validate:"required,min=3,max=30"`
	Email    string `label:"Email" validate:"required,email"`
	Password string `label:"Password" validate:"required,min=6"`
}

// FollowResult tells which way a follow toggle went.
type FollowResult int

const (
	Followed FollowResult = iota + 1
	Unfollowed
	FollowSelf
)

// ProfilePage is everything the profile view shows.
type ProfilePage struct {
	User           *models.User
	FollowersCount int
	FollowingCount int
	IsSelf         bool
	IsFollowing    bool
	Posts          models.Paginated[models.PostView]
}

type UserService struct {
	users UserStore
	auth  *AuthService
	feed  *FeedService
}

func NewUserService(users UserStore, auth *AuthService, feed *FeedService) *UserService {
	return &UserService{users: users, auth: auth, feed: feed}
}

const msgUserExists = "Username or email already exists."

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, internal("check existing user", err)
	}
	if exists {
		return nil, newError(KindConflict, msgUserExists)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Following:    []primitive.ObjectID{},
		Followers:    []primitive.ObjectID{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, newError(KindConflict, msgUserExists)
		}
		return nil, internal("create user", err)
	}

	logger.Info("user registered", zap.String("username", u.Username), zap.String("user_id", u.ID.Hex()))
	return u, nil
}

const msgBadLogin = "Invalid username or password."

// Login checks the credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return "", newError(KindInvalidCredentials, msgBadLogin)
	}
	if err != nil {
		return "", internal("load user", err)
	}
	if !VerifyPassword(password, u.PasswordHash) {
		return "", newError(KindInvalidCredentials, msgBadLogin)
	}

	token, err := s.auth.CreateAccessToken(u.ID)
	if err != nil {
		return "", err
	}
	logger.Info("user logged in", zap.String("username", u.Username))
	return token, nil
}

// ToggleFollow follows targetID if actor does not follow them yet and
// unfollows otherwise.
func (s *UserService) ToggleFollow(ctx context.Context, actor *models.User, targetID string) (FollowResult, error) {
	target, err := parseID(targetID, "User to follow/unfollow not found.")
	if err != nil {
		return 0, err
	}
	if target == actor.ID {
		return FollowSelf, nil
	}

	if _, err := s.users.FindByID(ctx, target); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, newError(KindNotFound, "User to follow/unfollow not found.")
		}
		return 0, internal("load follow target", err)
	}

	// Direction comes from the stored actor document.
	current, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return 0, internal("load actor", err)
	}
	follow := !current.IsFollowing(target)

	if err := s.users.SetFollow(ctx, actor.ID, target, follow); err != nil {
		return 0, internal("update follow", err)
	}
	if follow {
		return Followed, nil
	}
	return Unfollowed, nil
}

// SearchUsers matches q case-insensitively anywhere in usernames.
func (s *UserService) SearchUsers(ctx context.Context, q string, page models.Page) (models.Paginated[models.UserSummary], error) {
	users, total, err := s.users.Search(ctx, q, page)
	if err != nil {
		return models.Paginated[models.UserSummary]{}, internal("search users", err)
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return models.NewPaginated(out, page, total), nil
}

func (s *UserService) Profile(ctx context.Context, viewer *models.User, userID string, page models.Page) (*ProfilePage, error) {
	id, err := parseID(userID, "User not found.")
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(KindNotFound, "User not found.")
	}
	if err != nil {
		return nil, internal("load user", err)
	}

	posts, err := s.feed.ProfilePosts(ctx, u.ID, page)
	if err != nil {
		return nil, err
	}
	return &ProfilePage{
		User:           u,
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
		IsSelf:         viewer.ID == u.ID,
		IsFollowing:    viewer.IsFollowing(u.ID),
		Posts:          posts,
	}, nil
}

// parseID maps a malformed id to KindNotFound with msg, the same as an
// id that matches nothing.
func parseID(hex, msg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, newError(KindNotFound, msg)
	}
	return id, nil
}
