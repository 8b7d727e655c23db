package service

import (
	"context"
	"sync"

	"socialhub/internal/events"
	"socialhub/internal/models"
	"socialhub/internal/pagination"
	"socialhub/internal/storage"
)

// txStub runs the function directly, without a transaction.
type txStub struct {
	calls int
}

func (s *txStub) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, string) (*models.Post, error)
	getWithCommentsFn func(context.Context, string) (*models.Post, error)
	existsFn          func(context.Context, string) (bool, error)
	feedFn            func(context.Context, []string, *pagination.Cursor, int) ([]*models.Post, error)
	clapFn            func(context.Context, string) (int, string, error)
	searchFn          func(context.Context, string, *pagination.Cursor, int) ([]*models.Post, error)
	scanTaggedFn      func(context.Context, string, *pagination.Cursor, int) ([]*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetWithComments(ctx context.Context, id string) (*models.Post, error) {
	return s.getWithCommentsFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id string) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) Feed(ctx context.Context, authorIDs []string, cur *pagination.Cursor, limit int) ([]*models.Post, error) {
	return s.feedFn(ctx, authorIDs, cur, limit)
}
func (s *postRepoStub) Clap(ctx context.Context, id string) (int, string, error) {
	return s.clapFn(ctx, id)
}
func (s *postRepoStub) Search(ctx context.Context, query string, cur *pagination.Cursor, limit int) ([]*models.Post, error) {
	return s.searchFn(ctx, query, cur, limit)
}
func (s *postRepoStub) ScanTagged(ctx context.Context, query string, cur *pagination.Cursor, batch int) ([]*models.Post, error) {
	return s.scanTaggedFn(ctx, query, cur, batch)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:          func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:         func(_ context.Context, id string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getWithCommentsFn: func(_ context.Context, id string) (*models.Post, error) { return &models.Post{ID: id}, nil },
		existsFn:          func(_ context.Context, _ string) (bool, error) { return true, nil },
		feedFn: func(_ context.Context, _ []string, _ *pagination.Cursor, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		clapFn: func(_ context.Context, _ string) (int, string, error) { return 1, "author", nil },
		searchFn: func(_ context.Context, _ string, _ *pagination.Cursor, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		scanTaggedFn: func(_ context.Context, _ string, _ *pagination.Cursor, _ int) ([]*models.Post, error) {
			return nil, nil
		},
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, string) (bool, error)
	usernameTakenFn func(context.Context, string) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, string, map[string]any) (*models.User, error)
	countsFn        func(context.Context, string) (models.ProfileCounts, error)
	searchFn        func(context.Context, string, *pagination.Cursor, int) ([]models.UserSummary, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Exists(ctx context.Context, id string) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.usernameTakenFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, id string, fields map[string]any) (*models.User, error) {
	return s.updateFn(ctx, id, fields)
}
func (s *userRepoStub) Counts(ctx context.Context, id string) (models.ProfileCounts, error) {
	return s.countsFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, query string, cur *pagination.Cursor, limit int) ([]models.UserSummary, error) {
	return s.searchFn(ctx, query, cur, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: "id-" + username, Username: username}, nil
		},
		existsFn:        func(_ context.Context, _ string) (bool, error) { return true, nil },
		usernameTakenFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, id string, _ map[string]any) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		countsFn: func(_ context.Context, _ string) (models.ProfileCounts, error) {
			return models.ProfileCounts{}, nil
		},
		searchFn: func(_ context.Context, _ string, _ *pagination.Cursor, _ int) ([]models.UserSummary, error) {
			return nil, nil
		},
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	toggleFn       func(context.Context, string, string) (bool, bool, error)
	followingIDsFn func(context.Context, string) ([]string, error)
	followersFn    func(context.Context, string) ([]models.FollowEntry, error)
	followingFn    func(context.Context, string) ([]models.FollowEntry, error)
}

func (s *followRepoStub) Toggle(ctx context.Context, followerID, followingID string) (bool, bool, error) {
	return s.toggleFn(ctx, followerID, followingID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID string) ([]models.FollowEntry, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID string) ([]models.FollowEntry, error) {
	return s.followingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		toggleFn:       func(_ context.Context, _, _ string) (bool, bool, error) { return true, true, nil },
		followingIDsFn: func(_ context.Context, _ string) ([]string, error) { return []string{}, nil },
		followersFn: func(_ context.Context, _ string) ([]models.FollowEntry, error) {
			return []models.FollowEntry{}, nil
		},
		followingFn: func(_ context.Context, _ string) ([]models.FollowEntry, error) {
			return []models.FollowEntry{}, nil
		},
	}
}

// notificationRepoStub records created notifications.
type notificationRepoStub struct {
	created       []*models.Notification
	createFn      func(context.Context, *models.Notification) error
	listFn        func(context.Context, string, bool, *pagination.Cursor, int) ([]*models.Notification, error)
	markAllReadFn func(context.Context, string) (int64, error)
	markReadFn    func(context.Context, string, string) (bool, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	if s.createFn != nil {
		if err := s.createFn(ctx, n); err != nil {
			return err
		}
	}
	if n.ID == "" {
		n.ID = models.NewID()
	}
	s.created = append(s.created, n)
	return nil
}
func (s *notificationRepoStub) List(ctx context.Context, userID string, unreadOnly bool, cur *pagination.Cursor, limit int) ([]*models.Notification, error) {
	return s.listFn(ctx, userID, unreadOnly, cur, limit)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.markAllReadFn(ctx, userID)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	return s.markReadFn(ctx, userID, id)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		listFn: func(_ context.Context, _ string, _ bool, _ *pagination.Cursor, _ int) ([]*models.Notification, error) {
			return nil, nil
		},
		markAllReadFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
		markReadFn:    func(_ context.Context, _, _ string) (bool, error) { return true, nil },
	}
}

// publisherStub records published events.
type publisherStub struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *publisherStub) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}
func (p *publisherStub) Backend() string { return "stub" }
func (p *publisherStub) Close() error    { return nil }

func (p *publisherStub) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func newNotifier(repo *notificationRepoStub, pub *publisherStub) *NotificationService {
	return NewNotificationService(repo, pub, 0)
}

// storeStub is an in-memory storage.ObjectStore.
type storeStub struct {
	objects  map[string][]byte
	failAt   int
	removed  []string
	storeErr error
}

func newStoreStub() *storeStub {
	return &storeStub{objects: map[string][]byte{}, failAt: -1}
}

func (s *storeStub) Store(_ context.Context, data []byte, folder string, kind storage.ImageKind) (storage.Object, error) {
	if s.failAt == len(s.objects) {
		return storage.Object{}, s.storeErr
	}
	id := storage.NewObjectID(folder, kind)
	s.objects[id] = data
	return storage.Object{ID: id, URL: "http://cdn.test/" + id}, nil
}

func (s *storeStub) Remove(_ context.Context, objectID string) (bool, error) {
	s.removed = append(s.removed, objectID)
	if _, ok := s.objects[objectID]; !ok {
		return false, nil
	}
	delete(s.objects, objectID)
	return true, nil
}
