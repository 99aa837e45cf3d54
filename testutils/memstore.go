package testutils

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"instaclone/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is an in-memory stand-in for the mongo collections. Its users,
// posts, likes and comments views satisfy the service store interfaces.
type Store struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	posts    map[primitive.ObjectID]*models.Post
	likes    []models.Like
	comments []models.Comment

	// Err, when set, is returned by every call.
	Err error
}

func NewStore() *Store {
	return &Store{
		users: make(map[primitive.ObjectID]*models.User),
		posts: make(map[primitive.ObjectID]*models.Post),
	}
}

func (s *Store) Users() *UserStore       { return &UserStore{s} }
func (s *Store) Posts() *PostStore       { return &PostStore{s} }
func (s *Store) Likes() *LikeStore       { return &LikeStore{s} }
func (s *Store) Comments() *CommentStore { return &CommentStore{s} }

// User returns a copy of the stored user.
func (s *Store) User(id primitive.ObjectID) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.users[id])
}

// DeleteUser removes a user without touching their posts or relations.
func (s *Store) DeleteUser(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func cloneUser(u *models.User) models.User {
	if u == nil {
		return models.User{}
	}
	c := *u
	c.Following = append([]primitive.ObjectID{}, u.Following...)
	c.Followers = append([]primitive.ObjectID{}, u.Followers...)
	return c
}

func window[T any](items []T, page models.Page) []T {
	if page.Skip >= len(items) {
		return []T{}
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}

// newestFirst orders by created_at then id, both descending.
func newestFirst(ai, bi time.Time, aid, bid primitive.ObjectID) bool {
	if !ai.Equal(bi) {
		return ai.After(bi)
	}
	return bytes.Compare(aid[:], bid[:]) > 0
}

type UserStore struct{ s *Store }

func (r *UserStore) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return models.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	c := cloneUser(u)
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (r *UserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Username == username {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *UserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *UserStore) Search(_ context.Context, q string, page models.Page) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	q = strings.ToLower(q)
	var matched []models.User
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.Username), q) {
			matched = append(matched, cloneUser(u))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })
	return window(matched, page), int64(len(matched)), nil
}

func (r *UserStore) SetFollow(_ context.Context, actor, target primitive.ObjectID, follow bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	a, t := r.s.users[actor], r.s.users[target]
	if a == nil || t == nil {
		return nil
	}
	if follow {
		a.Following = addToSet(a.Following, target)
		t.Followers = addToSet(t.Followers, actor)
	} else {
		a.Following = pull(a.Following, target)
		t.Followers = pull(t.Followers, actor)
	}
	return nil
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

type PostStore struct{ s *Store }

func (r *PostStore) Create(_ context.Context, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	c := *p
	r.s.posts[p.ID] = &c
	return nil
}

func (r *PostStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	p, ok := r.s.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *PostStore) List(_ context.Context, f models.PostFilter, page models.Page) ([]models.Post, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var matched []models.Post
	for _, p := range r.s.posts {
		if matches(p, f) {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})
	return window(matched, page), int64(len(matched)), nil
}

func matches(p *models.Post, f models.PostFilter) bool {
	if len(f.UserIDs) > 0 {
		found := false
		for _, id := range f.UserIDs {
			if id == p.UserID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Hashtag != "" {
		found := false
		for _, h := range p.Hashtags {
			if h == f.Hashtag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.From != nil && p.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && p.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

type LikeStore struct{ s *Store }

func (r *LikeStore) Toggle(_ context.Context, userID, postID primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for i, l := range r.s.likes {
		if l.UserID == userID && l.PostID == postID {
			r.s.likes = append(r.s.likes[:i], r.s.likes[i+1:]...)
			return false, nil
		}
	}
	r.s.likes = append(r.s.likes, models.Like{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	})
	return true, nil
}

func (r *LikeStore) CountByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for _, l := range r.s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *LikeStore) ListByPost(_ context.Context, postID primitive.ObjectID, page models.Page) ([]models.Like, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var matched []models.Like
	for _, l := range r.s.likes {
		if l.PostID == postID {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})
	return window(matched, page), int64(len(matched)), nil
}

type CommentStore struct{ s *Store }

func (r *CommentStore) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	r.s.comments = append(r.s.comments, *c)
	return nil
}

func (r *CommentStore) CountByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for _, c := range r.s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *CommentStore) ListByPost(_ context.Context, postID primitive.ObjectID, page models.Page) ([]models.Comment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var matched []models.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[j].CreatedAt, matched[i].ID, matched[j].ID)
	})
	return window(matched, page), int64(len(matched)), nil
}

// Images records saved images in memory.
type Images struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

func NewImages() *Images {
	return &Images{Files: make(map[string][]byte)}
}

func (m *Images) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[name] = b
	return "/static/images/" + name, nil
}

// Denylist is an in-memory token denylist.
type Denylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{revoked: make(map[string]time.Time)}
}

func (d *Denylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = until
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}
